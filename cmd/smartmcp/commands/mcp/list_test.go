package mcp

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

func TestListCommand_Metadata(t *testing.T) {
	if listCmd.Use != "list" {
		t.Errorf("Use = %q, want %q", listCmd.Use, "list")
	}
	if listCmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if listCmd.Flags().Lookup("json") == nil {
		t.Error("--json flag should be defined")
	}
}

func TestRunList_Tabular(t *testing.T) {
	a, _ := newTestAgent(t, registry.SearchResult{}, "")

	var buf bytes.Buffer
	if err := runListWithWriter(testContext(t), &buf, a); err != nil {
		t.Fatalf("runListWithWriter() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"textEditor", "filesystem", "geeknews", "smithery", "@the0807/geeknews-mcp-server"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRunList_JSON(t *testing.T) {
	listJSON = true
	defer func() { listJSON = false }()

	a, _ := newTestAgent(t, registry.SearchResult{}, "")

	var buf bytes.Buffer
	if err := runListWithWriter(testContext(t), &buf, a); err != nil {
		t.Fatalf("runListWithWriter() error = %v", err)
	}

	var out agent.ListOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(out.Servers) != 2 {
		t.Fatalf("got %d servers, want 2", len(out.Servers))
	}
	if out.Servers[1].ServerID != "@the0807/geeknews-mcp-server" {
		t.Errorf("ServerID = %q", out.Servers[1].ServerID)
	}
	if !strings.HasPrefix(out.Message, "Found 2 MCP servers configured in mcp.ts") {
		t.Errorf("Message = %q", out.Message)
	}
}
