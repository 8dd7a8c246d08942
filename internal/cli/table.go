package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/memory"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

// descriptionWidth caps free-text columns so rows stay on one line.
const descriptionWidth = 60

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func trimmed(name string) table.ColumnConfig {
	return table.ColumnConfig{
		Name:             name,
		WidthMax:         descriptionWidth,
		WidthMaxEnforcer: text.Trim,
	}
}

// RenderServers writes registry search results as a numbered table.
func RenderServers(w io.Writer, servers []registry.Server) {
	if len(servers) == 0 {
		fmt.Fprintln(w, "No servers found.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "NAME", "SERVER ID", "USES", "REMOTE", "DESCRIPTION"})
	for i, s := range servers {
		t.AppendRow(table.Row{
			i + 1,
			s.Name,
			s.QualifiedName,
			intOrDash(s.UseCount),
			boolOrDash(s.Remote),
			stringOrDash(s.Description),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{trimmed("DESCRIPTION")})
	t.Render()
}

// RenderListed writes the configured servers of file.
func RenderListed(w io.Writer, servers []agent.ListedServer, file string) {
	if len(servers) == 0 {
		fmt.Fprintf(w, "No MCP servers configured in %s\n", file)
		return
	}

	t := newTable(w)
	t.SetTitle(file)
	t.AppendHeader(table.Row{"NAME", "TYPE", "SERVER ID"})
	for _, s := range servers {
		t.AppendRow(table.Row{s.Name, s.Type, s.ServerID})
	}
	t.Render()
}

// RenderTools writes the tools a server exposes.
func RenderTools(w io.Writer, server string, tools []mcp.Tool) {
	if len(tools) == 0 {
		fmt.Fprintf(w, "%s exposes no tools\n", server)
		return
	}

	t := newTable(w)
	t.SetTitle(server)
	t.AppendHeader(table.Row{"TOOL", "DESCRIPTION"})
	for _, tool := range tools {
		t.AppendRow(table.Row{tool.Name, firstLine(tool.Description)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{trimmed("DESCRIPTION")})
	t.Render()
}

// RenderBackups writes backup manifests, newest first.
func RenderBackups(w io.Writer, manifests []backup.Manifest) {
	if len(manifests) == 0 {
		fmt.Fprintln(w, "No backups found.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "CREATED", "REASON", "FILES"})
	for _, m := range manifests {
		t.AppendRow(table.Row{
			m.ID,
			m.CreatedAt.Local().Format(time.DateTime),
			m.Reason,
			len(m.Files),
		})
	}
	t.Render()
}

// RenderHistory writes memory records in the order given.
func RenderHistory(w io.Writer, records []memory.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No history recorded.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"AT", "THREAD", "TOOL", "INPUT", "RESULT"})
	for _, r := range records {
		result := "ok"
		if r.Error != "" {
			result = text.FgRed.Sprint(r.Error)
		}
		t.AppendRow(table.Row{
			r.At.Local().Format(time.DateTime),
			shortThread(r.Thread),
			r.Tool,
			string(r.Input),
			result,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{trimmed("INPUT"), trimmed("RESULT")})
	t.Render()
}

func shortThread(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return firstLine(*s)
}

func intOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}

func boolOrDash(b *bool) string {
	if b == nil {
		return "-"
	}
	if *b {
		return "yes"
	}
	return "no"
}
