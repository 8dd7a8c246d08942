package backup

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/cli/prompt"
	"github.com/thoreinstein/smartmcp/internal/errors"
)

var restoreInteractive bool

func init() {
	restoreCmd.Flags().BoolVarP(&restoreInteractive, "interactive", "i", false,
		"choose the backup from a list")
	Cmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore from a backup",
	Long: `Restore the server configuration file from a backup.

If no backup ID is provided, restores from the most recent backup. Every
file's checksum is verified before anything is written, and the current
file is backed up first so the restore can itself be undone.`,
	Example: `  # Restore from the most recent backup
  smartmcp backup restore

  # Restore from a specific backup
  smartmcp backup restore 20260123T100712-1a2b3c4d

  See Also:
    smartmcp backup list - List available backups`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	mgr, scope, _, err := target(cmd)
	if err != nil {
		return err
	}
	var selector *prompt.Selector
	if restoreInteractive {
		selector = prompt.NewSelectorWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return runRestoreWithWriter(cmd.OutOrStdout(), mgr, scope, args, selector)
}

// runRestoreWithWriter restores args[0], the backup chosen with selector,
// or the most recent backup, in that order of preference.
func runRestoreWithWriter(w io.Writer, mgr *backup.Manager, scope string, args []string, selector *prompt.Selector) error {
	var backupID string
	switch {
	case len(args) > 0:
		backupID = args[0]
	default:
		manifests, err := mgr.List(scope)
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				return errors.NewUserError(err, "Run: smartmcp backup create")
			}
			return errors.Wrap(err, "listing backups")
		}
		if selector != nil {
			chosen, err := selector.SelectBackup(manifests)
			if err != nil {
				return err
			}
			backupID = chosen.ID
		} else {
			backupID = manifests[0].ID
			fmt.Fprintf(w, "Using most recent backup: %s\n", backupID)
		}
	}

	manifest, err := mgr.Get(scope, backupID)
	if err != nil {
		return errors.Wrapf(err, "getting backup %s", backupID)
	}

	fmt.Fprintf(w, "Restoring %d files from backup %s...\n", len(manifest.Files), backupID)

	if err := mgr.Restore(scope, backupID); err != nil {
		return errors.Wrap(err, "restoring backup")
	}

	fmt.Fprintf(w, "%s Restored configuration from backup %s\n", success("✓"), backupID)
	return nil
}
