package mcp

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/cli"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	Cmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured MCP servers",
	Long: `List every MCP server configured in the store file.

Each server is classified as smithery (launched through the Smithery CLI,
with its server ID), filesystem (the filesystem server package) or unknown.`,
	Example: `  # List configured servers
  smartmcp mcp list

  # Output as JSON
  smartmcp mcp list --json

  See Also:
    smartmcp mcp add  - Add a new server`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	app, err := flags.OpenApp(cmd, cli.OpenOptions{})
	if err != nil {
		return err
	}
	return runListWithWriter(cmd.Context(), cmd.OutOrStdout(), app.Agent)
}

// runListWithWriter allows injecting a writer for testing.
func runListWithWriter(ctx context.Context, w io.Writer, a *agent.Agent) error {
	out, err := a.List(ctx)
	if err != nil {
		return err
	}
	if listJSON {
		return writeJSON(w, out)
	}
	cli.RenderListed(w, out.Servers, a.Store().Path())
	return nil
}
