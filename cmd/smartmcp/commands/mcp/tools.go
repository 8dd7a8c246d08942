package mcp

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd"
	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
	"github.com/thoreinstein/smartmcp/internal/probe"
	"github.com/thoreinstein/smartmcp/internal/store"
)

var (
	toolsTimeout time.Duration
	toolsJSON    bool
)

func init() {
	toolsCmd.Flags().DurationVar(&toolsTimeout, "timeout", probe.DefaultTimeout,
		"how long to wait for the server to start and answer")
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Output in JSON format")
	Cmd.AddCommand(toolsCmd)
}

var toolsCmd = &cobra.Command{
	Use:   "tools <name>",
	Short: "List the tools a configured server exposes",
	Long: `Start a configured server over stdio, perform the MCP handshake and list
its tools. The server is stopped afterwards.

Smithery entries run through npx, so the first probe of a server may take
a while to download the package.`,
	Example: `  # Probe a configured server
  smartmcp mcp tools geeknews

  # Allow more time for the first download
  smartmcp mcp tools geeknews --timeout 3m

  See Also:
    smartmcp mcp list - List configured servers`,
	Args: cobra.ExactArgs(1),
	RunE: runTools,
}

func runTools(c *cobra.Command, args []string) error {
	app, err := flags.OpenApp(c, cli.OpenOptions{})
	if err != nil {
		return err
	}
	p := probe.New(
		probe.WithTimeout(toolsTimeout),
		probe.WithClientInfo(cmd.Name, cmd.ResolvedVersion()),
	)
	return runToolsWithWriter(c.Context(), c.OutOrStdout(), app.Store, p, args[0])
}

// runToolsWithWriter allows injecting a writer for testing.
func runToolsWithWriter(ctx context.Context, w io.Writer, st store.Store, p *probe.Prober, name string) error {
	entries, err := st.List(ctx)
	if err != nil {
		return err
	}

	key := mcpconfig.DeriveKey(name)
	entry, ok := mcpconfig.FindEntry(entries, key)
	if !ok {
		entry, ok = mcpconfig.FindEntry(entries, name)
	}
	if !ok {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "server %q", name),
			"Run: smartmcp mcp list",
		)
	}

	tools, err := p.Tools(ctx, entry)
	if err != nil {
		return err
	}
	if toolsJSON {
		return writeJSON(w, tools)
	}
	cli.RenderTools(w, entry.Key, tools)
	return nil
}
