package backup

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/errors"
)

func init() {
	Cmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backup now",
	Long: `Copy the server configuration file into a new backup immediately,
regardless of whether this session already backed it up.`,
	Example: `  # Create a backup
  smartmcp backup create

  See Also:
    smartmcp backup list - List available backups`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, _ []string) error {
	mgr, scope, path, err := target(cmd)
	if err != nil {
		return err
	}
	return runCreateWithWriter(cmd.OutOrStdout(), mgr, scope, path)
}

func runCreateWithWriter(w io.Writer, mgr *backup.Manager, scope, path string) error {
	manifest, err := mgr.Backup(scope, "manual", []string{path})
	if err != nil {
		if errors.Is(err, backup.ErrNothingToBackUp) {
			return errors.NewUserError(errors.Wrapf(err, "%s does not exist", path), "Check project_root and source_file")
		}
		return errors.Wrap(err, "creating backup")
	}
	fmt.Fprintf(w, "%s Created backup %s\n", success("✓"), manifest.ID)
	return nil
}
