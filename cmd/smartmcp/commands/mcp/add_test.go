package mcp

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/config"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

func TestAddCommand_Metadata(t *testing.T) {
	if addCmd.Flags().Lookup("force") == nil {
		t.Error("--force flag should be defined")
	}
	if addCmd.Flags().Lookup("description") == nil {
		t.Error("--description flag should be defined")
	}
	if err := addCmd.Args(addCmd, []string{"only-name"}); err == nil {
		t.Error("add should require exactly two arguments")
	}
}

func TestRunAdd(t *testing.T) {
	a, path := newTestAgent(t, registry.SearchResult{}, "")

	var buf bytes.Buffer
	err := runAddWithWriter(testContext(t), &buf, a, agent.AddInput{
		Name:     "Open WebSearch",
		ServerID: "@Aas-ee/open-websearch",
	})
	if err != nil {
		t.Fatalf("runAddWithWriter() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Successfully added @Aas-ee/open-websearch to mcp.ts configuration!") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "    openwebsearch: {") {
		t.Errorf("entry not written:\n%s", data)
	}
	if !strings.HasSuffix(string(data), "export const mcp = new MCPClient({ servers });\n") {
		t.Error("text after the block should be preserved")
	}
}

func TestRunAdd_DuplicatePolicies(t *testing.T) {
	tests := []struct {
		name       string
		duplicates string
		wantErr    error
		wantCount  int
		wantText   string
	}{
		{name: "append", duplicates: config.DuplicatesAppend, wantCount: 2},
		{name: "reject", duplicates: config.DuplicatesReject, wantErr: errors.ErrDuplicateKey, wantCount: 1},
		{name: "overwrite", duplicates: config.DuplicatesOverwrite, wantCount: 1, wantText: "'@other/geeknews'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, path := newTestAgent(t, registry.SearchResult{}, tt.duplicates)

			var buf bytes.Buffer
			err := runAddWithWriter(testContext(t), &buf, a, agent.AddInput{Name: "GeekNews", ServerID: "@other/geeknews"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			data, _ := os.ReadFile(path)
			if got := strings.Count(string(data), "geeknews: {"); got != tt.wantCount {
				t.Errorf("geeknews entries = %d, want %d", got, tt.wantCount)
			}
			if tt.wantText != "" && !strings.Contains(string(data), tt.wantText) {
				t.Errorf("file missing %q:\n%s", tt.wantText, data)
			}
		})
	}
}

func TestRunAdd_InvalidInput(t *testing.T) {
	a, _ := newTestAgent(t, registry.SearchResult{}, "")

	var buf bytes.Buffer
	err := runAddWithWriter(testContext(t), &buf, a, agent.AddInput{Name: "!!!", ServerID: "@a/b"})
	if !errors.Is(err, errors.ErrSchema) {
		t.Errorf("error = %v, want ErrSchema", err)
	}
	if got := errors.Classify(err).Code; got != errors.ExitUser {
		t.Errorf("exit code = %d, want %d", got, errors.ExitUser)
	}
}
