package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/registry"
	"github.com/thoreinstein/smartmcp/internal/store"
)

const fixture = `import { MCPClient } from '@mastra/mcp';

const servers: Record<string, any> = {
    textEditor: {
      command: 'npx',
      args: ['-y', '@modelcontextprotocol/server-filesystem', '/work'],
    },
    geeknews: {
      command: 'npx',
      args: ['-y', '@smithery/cli@latest', 'run', '@the0807/geeknews-mcp-server', '--config', '{}'],
    },};

export const mcp = new MCPClient({ servers });
`

type stubSearcher struct {
	result registry.SearchResult
}

func (s *stubSearcher) Search(context.Context, string, int) registry.SearchResult {
	return s.result
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.NewContext(context.Background(), logging.ForTest(t))
}

// newTestStore writes the fixture to a temp dir and opens a source store on it.
func newTestStore(t *testing.T, duplicates string) (store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.ts")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	st, err := store.New(store.Options{Path: path, LockDir: dir, Duplicates: duplicates})
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	return st, path
}

func newTestAgent(t *testing.T, result registry.SearchResult, duplicates string) (*agent.Agent, string) {
	t.Helper()
	st, path := newTestStore(t, duplicates)
	return agent.New(st, &stubSearcher{result: result}), path
}

func ptr[T any](v T) *T { return &v }
