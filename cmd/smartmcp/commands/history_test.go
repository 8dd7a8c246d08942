package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/smartmcp/internal/memory"
)

func newTestMemory(t *testing.T) *memory.Store {
	t.Helper()
	m := memory.New(filepath.Join(t.TempDir(), "memory.db"))
	records := []memory.Record{
		{Thread: "thread-a", Tool: "discover-servers", Input: json.RawMessage(`{"query":"news"}`)},
		{Thread: "thread-a", Tool: "add-mcp-server", Error: "server key already configured"},
		{Thread: "thread-b", Tool: "list-servers"},
	}
	for _, r := range records {
		if err := m.Append(r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	return m
}

func TestRunHistory(t *testing.T) {
	m := newTestMemory(t)

	tests := []struct {
		name      string
		thread    string
		limit     int
		wantTools []string
		absent    []string
	}{
		{"all", "", 0, []string{"discover-servers", "add-mcp-server", "list-servers"}, nil},
		{"one thread", "thread-a", 0, []string{"discover-servers", "add-mcp-server"}, []string{"list-servers"}},
		{"limit keeps newest", "", 1, []string{"list-servers"}, []string{"discover-servers"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := runHistoryWithWriter(&buf, m, tt.thread, tt.limit); err != nil {
				t.Fatalf("runHistoryWithWriter() error = %v", err)
			}
			out := buf.String()
			for _, tool := range tt.wantTools {
				if !strings.Contains(out, tool) {
					t.Errorf("output missing %q:\n%s", tool, out)
				}
			}
			for _, tool := range tt.absent {
				if strings.Contains(out, tool) {
					t.Errorf("output should not contain %q:\n%s", tool, out)
				}
			}
		})
	}
}

func TestRunHistory_Empty(t *testing.T) {
	m := memory.New(filepath.Join(t.TempDir(), "memory.db"))

	var buf bytes.Buffer
	if err := runHistoryWithWriter(&buf, m, "", 0); err != nil {
		t.Fatalf("runHistoryWithWriter() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "No history in ") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRunHistory_JSON(t *testing.T) {
	m := newTestMemory(t)
	historyJSON = true
	t.Cleanup(func() { historyJSON = false })

	var buf bytes.Buffer
	if err := runHistoryWithWriter(&buf, m, "thread-a", 0); err != nil {
		t.Fatalf("runHistoryWithWriter() error = %v", err)
	}
	var got []memory.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got) != 2 || got[1].Error == "" {
		t.Errorf("records = %+v", got)
	}
}

func TestRunHistory_NegativeLimit(t *testing.T) {
	m := memory.New(filepath.Join(t.TempDir(), "memory.db"))
	if err := runHistoryWithWriter(&bytes.Buffer{}, m, "", -1); err == nil {
		t.Error("expected error for negative limit")
	}
}
