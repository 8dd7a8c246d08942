package repl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/memory"
	"github.com/thoreinstein/smartmcp/internal/registry"
	"github.com/thoreinstein/smartmcp/internal/store"
)

const fixture = `const servers: Record<string, any> = {
    textEditor: {
      command: 'npx',
      args: ['-y', '@modelcontextprotocol/server-filesystem', '/work'],
    },};
`

type stubSearcher struct {
	result registry.SearchResult
}

func (s *stubSearcher) Search(context.Context, string, int) registry.SearchResult {
	return s.result
}

func newTestREPL(t *testing.T, searcher *stubSearcher, withMemory bool) (*REPL, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.ts")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	st, err := store.New(store.Options{Path: path, LockDir: dir})
	require.NoError(t, err)

	var opts []agent.Option
	if withMemory {
		opts = append(opts, agent.WithMemory(memory.New(filepath.Join(dir, "memory.db")), ""))
	}

	var buf bytes.Buffer
	return New(agent.New(st, searcher, opts...), &buf, ""), &buf, path
}

func testContext(t *testing.T) context.Context {
	return logging.NewContext(context.Background(), logging.ForTest(t))
}

func TestExecute_Dispatch(t *testing.T) {
	r, _, _ := newTestREPL(t, &stubSearcher{}, false)
	ctx := testContext(t)

	tests := []struct {
		name    string
		line    string
		wantErr string
		exit    bool
	}{
		{name: "blank line", line: "   "},
		{name: "unknown", line: "frobnicate", wantErr: "unknown command: frobnicate"},
		{name: "discover without query", line: "discover", wantErr: "usage: discover"},
		{name: "add without name", line: "add @a/b", wantErr: "usage: add"},
		{name: "exit", line: "exit", exit: true},
		{name: "quit is case-insensitive", line: "QUIT", exit: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Execute(ctx, tt.line)
			switch {
			case tt.exit:
				assert.True(t, IsExit(err), "expected exit, got %v", err)
			case tt.wantErr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestExecute_Help(t *testing.T) {
	r, buf, _ := newTestREPL(t, &stubSearcher{}, false)
	require.NoError(t, r.Execute(testContext(t), "help"))

	out := buf.String()
	for _, want := range []string{"discover <query...>", "add <serverId|#> <name...>", "list", "history [limit]", "exit"} {
		assert.Contains(t, out, want)
	}
}

func TestExecute_DiscoverThenAddByNumber(t *testing.T) {
	searcher := &stubSearcher{result: registry.SearchResult{Servers: []registry.Server{
		{ID: "1", Name: "GeekNews", QualifiedName: "@the0807/geeknews-mcp-server"},
	}}}
	r, buf, path := newTestREPL(t, searcher, false)
	ctx := testContext(t)

	require.NoError(t, r.Execute(ctx, "discover geek news"))
	assert.Contains(t, buf.String(), "@the0807/geeknews-mcp-server")

	buf.Reset()
	require.NoError(t, r.Execute(ctx, "add #1 GeekNews"))
	assert.Contains(t, buf.String(), "geeknews")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "'@the0807/geeknews-mcp-server'")

	err = r.Execute(ctx, "add #2 other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no discover result #2")
}

func TestExecute_DiscoverUnavailable(t *testing.T) {
	searcher := &stubSearcher{result: registry.SearchResult{
		Servers:     []registry.Server{},
		Unavailable: &registry.Unavailable{Reason: "registry returned status 503"},
	}}
	r, buf, _ := newTestREPL(t, searcher, false)

	require.NoError(t, r.Execute(testContext(t), "discover weather"))
	assert.Contains(t, buf.String(), "Registry unavailable: registry returned status 503")
}

func TestExecute_List(t *testing.T) {
	r, buf, _ := newTestREPL(t, &stubSearcher{}, false)

	require.NoError(t, r.Execute(testContext(t), "list"))
	out := buf.String()
	assert.Contains(t, out, "textEditor")
	assert.Contains(t, out, "filesystem")
}

func TestExecute_History(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		r, buf, _ := newTestREPL(t, &stubSearcher{}, false)
		require.NoError(t, r.Execute(testContext(t), "history"))
		assert.Contains(t, buf.String(), "History is disabled.")
	})

	t.Run("records calls of this thread", func(t *testing.T) {
		r, buf, _ := newTestREPL(t, &stubSearcher{}, true)
		ctx := testContext(t)

		require.NoError(t, r.Execute(ctx, "list"))
		buf.Reset()
		require.NoError(t, r.Execute(ctx, "history 5"))
		assert.True(t, strings.Contains(buf.String(), agent.ToolList), "history should show list-servers:\n%s", buf.String())

		err := r.Execute(ctx, "history zero")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: history")
	})
}
