package mcp

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/config"
)

// Package-level flag variables for mcp add command.
var (
	addDescription string
	addForce       bool
)

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "",
		"optional description of the server")
	addCmd.Flags().BoolVarP(&addForce, "force", "f", false,
		"overwrite the arguments of an existing server with the same key")
	Cmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <name> <serverId>",
	Short: "Add a Smithery MCP server",
	Long: `Add a Smithery MCP server to the configuration.

The entry key is derived from name by lowercasing it and dropping every
character that is not a letter or digit: "GeekNews Server" becomes
"geeknewsserver". The serverId is the qualified name from the registry,
for example @the0807/geeknews-mcp-server.

What happens when the key is already configured depends on the
store.duplicates setting (append, reject or overwrite). --force always
overwrites.`,
	Example: `  # Add a server
  smartmcp mcp add GeekNews @the0807/geeknews-mcp-server

  # Add with a description
  smartmcp mcp add finance @hwangwoohyun-nav/yahoo-finance-mcp -d "Stock quotes"

  # Replace the server id of an existing key
  smartmcp mcp add geeknews @other/geeknews --force

  See Also:
    smartmcp mcp discover - Find server IDs
    smartmcp mcp list     - List configured servers`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	var opts cli.OpenOptions
	if addForce {
		opts.Duplicates = config.DuplicatesOverwrite
	}
	app, err := flags.OpenApp(cmd, opts)
	if err != nil {
		return err
	}
	return runAddWithWriter(cmd.Context(), cmd.OutOrStdout(), app.Agent, agent.AddInput{
		Name:        args[0],
		ServerID:    args[1],
		Description: addDescription,
	})
}

// runAddWithWriter allows injecting a writer for testing.
func runAddWithWriter(ctx context.Context, w io.Writer, a *agent.Agent, in agent.AddInput) error {
	out, err := a.Add(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out.Message)
	return nil
}
