package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/errors"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	Cmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	Long: `List the backups of the configured server file, most recent first.`,
	Example: `  # List backups
  smartmcp backup list

  # Output as JSON
  smartmcp backup list --json

  See Also:
    smartmcp backup restore - Restore from a backup`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// infoOutput represents a single backup in JSON output.
type infoOutput struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Reason      string    `json:"reason,omitempty"`
	FileCount   int       `json:"file_count"`
	ToolVersion string    `json:"tool_version"`
}

func runList(cmd *cobra.Command, _ []string) error {
	mgr, scope, _, err := target(cmd)
	if err != nil {
		return err
	}
	return runListWithWriter(cmd.OutOrStdout(), mgr, scope)
}

func runListWithWriter(w io.Writer, mgr *backup.Manager, scope string) error {
	manifests, err := mgr.List(scope)
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.Wrap(err, "listing backups")
	}

	if listJSON {
		out := make([]infoOutput, len(manifests))
		for i, m := range manifests {
			out[i] = infoOutput{
				ID:          m.ID,
				CreatedAt:   m.CreatedAt,
				Reason:      m.Reason,
				FileCount:   len(m.Files),
				ToolVersion: m.ToolVersion,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(out), "encoding output")
	}

	cli.RenderBackups(w, manifests)
	if len(manifests) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backups are created automatically before smartmcp first changes the file.")
		fmt.Fprintln(w, "You can also create a backup manually with: smartmcp backup create")
	}
	return nil
}
