// Package mcp provides the mcp command group for discovering and
// configuring MCP servers.
package mcp

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// Cmd is the mcp command that groups all MCP-related subcommands.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Discover and configure MCP servers",
	Long: `Discover MCP servers in the Smithery registry and manage the servers
configured for the MCP client.

New servers are added as Smithery CLI entries that run over stdio:

    key: {
      command: 'npx',
      args: ['-y', '@smithery/cli@latest', 'run', '<serverId>', '--config', '{}'],
    },`,
	Example: `  # Search the registry
  smartmcp mcp discover "web search" --limit 5

  # Pick a result interactively and add it
  smartmcp mcp discover finance --interactive

  # Add a server directly
  smartmcp mcp add "Open WebSearch" @Aas-ee/open-websearch

  # List configured servers
  smartmcp mcp list

  # Show the tools a configured server exposes
  smartmcp mcp tools geeknews

  See Also:
    smartmcp mcp discover - Search the registry
    smartmcp mcp add      - Add a server
    smartmcp mcp list     - List configured servers
    smartmcp mcp tools    - Probe a server's tools`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encoding output")
}
