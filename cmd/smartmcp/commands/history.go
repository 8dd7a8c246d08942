package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/memory"
)

var (
	historyThread string
	historyLimit  int
	historyJSON   bool
)

func init() {
	historyCmd.Flags().StringVar(&historyThread, "thread", "", "only show this thread")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "show the last N records (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded tool calls",
	Long: `Show the tool calls the agent recorded in its memory file
(memory.file), oldest first.

Every CLI invocation, REPL session and MCP server connection records
under its own thread.`,
	Example: `  # Show the last 20 tool calls
  smartmcp history

  # Show everything from one thread
  smartmcp history --thread 0d9c5f1e-8f0f-4a53-9d2b-3bb1d0c4b7a2 --limit 0

See Also: smartmcp repl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		file := flags.Config().Memory.File
		if file == "" {
			return errors.NewUserError(
				errors.New("memory is disabled"),
				"Run: smartmcp config set memory.file <path>",
			)
		}
		return runHistoryWithWriter(cmd.OutOrStdout(), memory.New(file), historyThread, historyLimit)
	},
}

func runHistoryWithWriter(w io.Writer, m *memory.Store, thread string, limit int) error {
	if limit < 0 {
		return errors.NewUserError(errors.New("--limit must be non-negative"), "")
	}

	records, err := m.List(thread, limit)
	if err != nil {
		return errors.Wrap(err, "reading history")
	}

	if historyJSON {
		if records == nil {
			records = []memory.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(records), "encoding output")
	}

	if len(records) == 0 {
		fmt.Fprintf(w, "No history in %s\n", m.Path())
		return nil
	}
	cli.RenderHistory(w, records)
	return nil
}
