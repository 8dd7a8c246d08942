package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/cli/prompt"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

// Package-level flag variables for mcp discover command.
var (
	discoverLimit       int
	discoverJSON        bool
	discoverInteractive bool
)

func init() {
	discoverCmd.Flags().IntVarP(&discoverLimit, "limit", "n", 0,
		"maximum number of results, 1-20 (default: registry.default_limit)")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false,
		"Output in JSON format")
	discoverCmd.Flags().BoolVarP(&discoverInteractive, "interactive", "i", false,
		"pick a result and add it")
	discoverCmd.MarkFlagsMutuallyExclusive("json", "interactive")
	Cmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover <query...>",
	Short: "Search the Smithery registry",
	Long: `Search the Smithery registry for MCP servers.

The API key is read from the environment variable named by
registry.api_key_env (SMITHERY_API_KEY by default). When the registry cannot
be reached the command says so instead of reporting an empty result.

With --interactive the results open in a fuzzy finder; the chosen server is
added under a key derived from its display name.`,
	Example: `  # Search for weather servers
  smartmcp mcp discover weather

  # Limit the number of results
  smartmcp mcp discover "web search" --limit 3

  # Pick one and add it
  smartmcp mcp discover news -i

  See Also:
    smartmcp mcp add - Add a server by ID`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	app, err := flags.OpenApp(cmd, cli.OpenOptions{})
	if err != nil {
		return err
	}

	in := agent.DiscoverInput{Query: strings.Join(args, " ")}
	if cmd.Flags().Changed("limit") {
		in.Limit = &discoverLimit
	}

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	stop := cli.StartSpinner(cmd.ErrOrStderr(), "Searching the registry...")
	out, err := app.Agent.Discover(ctx, in)
	stop()
	if err != nil {
		return err
	}

	if discoverInteractive {
		return runDiscoverInteractive(ctx, w, app.Agent, in.Query, out)
	}
	return writeDiscoverResult(w, out)
}

// writeDiscoverResult prints a discover result. An unavailable registry is
// an error in table mode and part of the document in JSON mode.
func writeDiscoverResult(w io.Writer, out agent.DiscoverOutput) error {
	if discoverJSON {
		return writeJSON(w, out)
	}
	if err := unavailableError(out); err != nil {
		return err
	}
	cli.RenderServers(w, out.Servers)
	return nil
}

func unavailableError(out agent.DiscoverOutput) error {
	if out.Unavailable == nil {
		return nil
	}
	return errors.NewSystemError(
		errors.Newf("registry unavailable: %s", out.Unavailable.Reason),
		"Check network access and the registry API key",
	)
}

// picker chooses one server. It returns nil when the user aborts.
type picker func(query string, servers []registry.Server) (*registry.Server, error)

func runDiscoverInteractive(ctx context.Context, w io.Writer, a *agent.Agent, query string, out agent.DiscoverOutput) error {
	if err := unavailableError(out); err != nil {
		return err
	}
	pick := numberedPicker
	if logging.IsTTY(os.Stdout) {
		pick = fuzzyPicker
	}
	return addPicked(ctx, w, a, query, out.Servers, pick)
}

func addPicked(ctx context.Context, w io.Writer, a *agent.Agent, query string, servers []registry.Server, pick picker) error {
	if len(servers) == 0 {
		fmt.Fprintln(w, "No servers found.")
		return nil
	}

	chosen, err := pick(query, servers)
	if err != nil {
		return err
	}
	if chosen == nil {
		return nil
	}

	return runAddWithWriter(ctx, w, a, agent.AddInput{
		Name:        nameOf(chosen),
		ServerID:    chosen.QualifiedName,
		Description: descriptionOf(chosen),
	})
}

func fuzzyPicker(_ string, servers []registry.Server) (*registry.Server, error) {
	return cli.PickServer(servers)
}

func numberedPicker(query string, servers []registry.Server) (*registry.Server, error) {
	return prompt.NewSelector().SelectServer(query, servers)
}

// nameOf falls back to the last segment of the qualified name when the
// display name yields no key.
func nameOf(s *registry.Server) string {
	if mcpconfig.DeriveKey(s.Name) != "" {
		return s.Name
	}
	return path.Base(s.QualifiedName)
}

func descriptionOf(s *registry.Server) string {
	if s.Description == nil {
		return ""
	}
	return *s.Description
}
