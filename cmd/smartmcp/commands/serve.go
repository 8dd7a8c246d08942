package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd"
	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/server"
)

var (
	serveTransport string
	serveAddr      string
)

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", server.TransportStdio,
		"transport: stdio, streamable-http")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080",
		"listen address for the streamable-http transport")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent's tools over MCP",
	Long: `Run an MCP server exposing discover-servers, add-mcp-server and
list-servers, plus the smart-mcp-agent prompt with the agent instructions.

With the default stdio transport the server speaks on stdin and stdout, so
logs go to stderr only. The streamable-http transport listens on --addr
at /mcp.`,
	Example: `  # Serve over stdio to an MCP host
  smartmcp serve

  # Serve over HTTP
  smartmcp serve --transport streamable-http --addr 127.0.0.1:8080

See Also: smartmcp repl`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(c *cobra.Command, _ []string) error {
	if err := checkTransport(serveTransport); err != nil {
		return err
	}

	app, err := flags.OpenApp(c, cli.OpenOptions{})
	if err != nil {
		return err
	}
	return serve(c.Context(), app.Agent, app.Config.Server.Name, serveTransport, serveAddr, os.Stdin, os.Stdout)
}

func serve(ctx context.Context, a *agent.Agent, name, transport, addr string, in io.Reader, out io.Writer) error {
	logger := logging.FromContext(ctx).With(logging.ComponentKey, "server")
	srv := server.New(a, name, cmd.ResolvedVersion(), logger)
	return errors.Wrap(srv.Serve(ctx, transport, addr, in, out), "serving MCP")
}

func checkTransport(transport string) error {
	switch transport {
	case server.TransportStdio, server.TransportStreamableHTTP:
		return nil
	default:
		return errors.NewUserError(
			errors.Newf("unknown transport %q", transport),
			"Use --transport stdio or --transport streamable-http",
		)
	}
}
