package backup

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/errors"
)

var pruneKeep int

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", -1,
		"number of backups to retain (default: backup.retention)")
	Cmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old backups",
	Long: `Remove backups beyond the retention count, oldest first.

By default keeps backup.retention backups (5 unless configured).`,
	Example: `  # Keep the configured number of backups
  smartmcp backup prune

  # Keep only the 3 most recent backups
  smartmcp backup prune --keep 3

  # Remove all backups
  smartmcp backup prune --keep 0

  See Also:
    smartmcp backup list - List available backups`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, _ []string) error {
	mgr, scope, _, err := target(cmd)
	if err != nil {
		return err
	}
	keep := pruneKeep
	if !cmd.Flags().Changed("keep") {
		keep = mgr.RetentionCount()
	}
	return runPruneWithWriter(cmd.OutOrStdout(), mgr, scope, keep)
}

func runPruneWithWriter(w io.Writer, mgr *backup.Manager, scope string, keep int) error {
	if keep < 0 {
		return errors.NewUserError(errors.New("--keep must be non-negative"), "")
	}

	removed, err := mgr.Prune(scope, keep)
	if err != nil {
		return errors.Wrap(err, "pruning backups")
	}

	if removed == 0 {
		fmt.Fprintln(w, "No backups to prune")
		return nil
	}
	fmt.Fprintf(w, "%s Removed %d old backup(s), kept %d\n", success("✓"), removed, keep)
	return nil
}
