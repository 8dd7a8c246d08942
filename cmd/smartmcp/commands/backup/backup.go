// Package backup provides CLI commands for managing backups of the server
// configuration file.
package backup

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/cli"
)

var success = color.New(color.FgGreen).SprintFunc()

// Cmd is the root backup command.
var Cmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage configuration backups",
	Long: `Manage backups of the server configuration file.

Before smartmcp first modifies the file in a session it copies it into the
backup directory (backup.dir). This command group lists, restores, creates
and prunes those backups.`,
	Example: `  # List backups of the configured file
  smartmcp backup list

  # Restore the most recent backup
  smartmcp backup restore

  # Choose which backup to restore
  smartmcp backup restore --interactive

  # Remove old backups, keeping the 3 most recent
  smartmcp backup prune --keep 3

  See Also:
    smartmcp backup list    - List available backups
    smartmcp backup restore - Restore from a backup
    smartmcp backup create  - Manually create a backup
    smartmcp backup prune   - Remove old backups`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// target resolves the backup manager and the scope of the store file.
func target(cmd *cobra.Command) (*backup.Manager, string, string, error) {
	app, err := flags.OpenApp(cmd, cli.OpenOptions{})
	if err != nil {
		return nil, "", "", err
	}
	return app.Backups, app.BackupScope(), app.Store.Path(), nil
}
