package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/watch"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report changes to the configured servers",
	Long: `Watch the server configuration file and print the keys added or
removed whenever it changes, whether by smartmcp or by hand.

An MCP client reads its server list at startup, so each change is followed
by a reminder to restart it.`,
	Example: `  # Watch until interrupted
  smartmcp watch

See Also: smartmcp mcp list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := flags.OpenApp(cmd, cli.OpenOptions{})
		if err != nil {
			return err
		}
		return runWatchWithWriter(cmd.Context(), cmd.OutOrStdout(), app.Store)
	},
}

func runWatchWithWriter(ctx context.Context, w io.Writer, l watch.Lister, opts ...watch.Option) error {
	fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", l.Path())
	return watch.New(l, func(c watch.Change) { printChange(w, c) }, opts...).Run(ctx)
}

func printChange(w io.Writer, c watch.Change) {
	if c.Err != nil {
		fmt.Fprintf(w, "%s %v\n", color.YellowString("!"), c.Err)
		return
	}
	for _, key := range c.Added {
		fmt.Fprintf(w, "%s %s\n", color.GreenString("+"), key)
	}
	for _, key := range c.Removed {
		fmt.Fprintf(w, "%s %s\n", color.RedString("-"), key)
	}
	fmt.Fprintln(w, "Restart the MCP client to pick up the change.")
}
