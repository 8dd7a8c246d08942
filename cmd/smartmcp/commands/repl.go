package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/paths"
	"github.com/thoreinstein/smartmcp/internal/repl"
)

var replThread string

func init() {
	replCmd.Flags().StringVar(&replThread, "thread", "",
		"resume a memory thread instead of starting a new one")
	rootCmd.AddCommand(replCmd)
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `Start an interactive session driving the agent's operations.

Commands: discover <query>, add <serverId|#n> <name>, list, history [n],
help and exit. Line history is kept in $XDG_STATE_HOME/smartmcp/repl_history.`,
	Example: `  # Start a session
  smartmcp repl

  # Continue an earlier thread
  smartmcp repl --thread 0d9c5f1e-8f0f-4a53-9d2b-3bb1d0c4b7a2

See Also: smartmcp history, smartmcp serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := flags.OpenApp(cmd, cli.OpenOptions{Thread: replThread})
		if err != nil {
			return err
		}
		history := paths.ReplHistoryFile()
		if err := paths.EnsureDir(filepath.Dir(history), 0); err != nil {
			return errors.Wrap(err, "creating history directory")
		}
		return repl.New(app.Agent, cmd.OutOrStdout(), history).Run(cmd.Context())
	},
}
