// Package agent implements the discover, add and list operations of the
// smart MCP assistant.
//
// Inputs are validated before an operation runs and outputs after it
// returns; both failures match errors.ErrSchema. Every call is recorded in
// the optional memory store under the agent's thread.
package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
	"github.com/thoreinstein/smartmcp/internal/memory"
	"github.com/thoreinstein/smartmcp/internal/registry"
	"github.com/thoreinstein/smartmcp/internal/store"
)

// Searcher finds servers in a registry.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) registry.SearchResult
}

// Agent orchestrates the registry and the configuration store.
type Agent struct {
	store        store.Store
	registry     Searcher
	memory       *memory.Store
	thread       string
	defaultLimit int
}

// Option configures an Agent.
type Option func(*Agent)

// WithMemory records every call in m under thread. An empty thread gets a
// fresh identifier.
func WithMemory(m *memory.Store, thread string) Option {
	return func(a *Agent) {
		a.memory = m
		if thread == "" {
			thread = memory.NewThread()
		}
		a.thread = thread
	}
}

// WithDefaultLimit sets the discover limit used when the input has none.
func WithDefaultLimit(n int) Option {
	return func(a *Agent) {
		if n >= 1 && n <= registry.MaxLimit {
			a.defaultLimit = n
		}
	}
}

// New returns an Agent over st and reg.
func New(st store.Store, reg Searcher, opts ...Option) *Agent {
	a := &Agent{
		store:        st,
		registry:     reg,
		defaultLimit: registry.DefaultLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Thread returns the memory thread, or "" without memory.
func (a *Agent) Thread() string {
	return a.thread
}

// Memory returns the memory store, which may be nil.
func (a *Agent) Memory() *memory.Store {
	return a.memory
}

// Store returns the configuration store.
func (a *Agent) Store() store.Store {
	return a.store
}

// Discover searches the registry. Registry failures are reported in
// Unavailable, never as an error.
func (a *Agent) Discover(ctx context.Context, in DiscoverInput) (out DiscoverOutput, err error) {
	defer func() { a.record(ctx, ToolDiscover, in, out, err) }()

	if err := ValidateDiscoverInput(in); err != nil {
		return DiscoverOutput{}, err
	}
	limit := a.defaultLimit
	if in.Limit != nil {
		limit = *in.Limit
	}

	res := a.registry.Search(ctx, in.Query, limit)
	out = DiscoverOutput{Servers: res.Servers, Unavailable: res.Unavailable}
	if out.Servers == nil {
		out.Servers = []registry.Server{}
	}
	if err := ValidateDiscoverOutput(out); err != nil {
		return DiscoverOutput{}, err
	}
	return out, nil
}

// Add registers a Smithery server under the key derived from in.Name.
func (a *Agent) Add(ctx context.Context, in AddInput) (out AddOutput, err error) {
	defer func() { a.record(ctx, ToolAdd, in, out, err) }()

	if err := ValidateAddInput(in); err != nil {
		return AddOutput{}, err
	}

	file := filepath.Base(a.store.Path())
	res, err := a.store.Add(ctx, mcpconfig.NewEntry(in.Name, in.ServerID, in.Description))
	if err != nil {
		return AddOutput{}, errors.Wrapf(err, "failed to add MCP server to %s", file)
	}

	out = AddOutput{
		Status:   StatusOK,
		Name:     in.Name,
		ServerID: in.ServerID,
		Key:      res.Entry.Key,
		Replaced: res.Replaced,
		Message:  addMessage(in, res.Entry.Key, a.store.Path(), res.Replaced),
	}
	if err := ValidateAddOutput(out); err != nil {
		return AddOutput{}, err
	}

	logging.FromContext(ctx).Info("mcp server added",
		slog.String(logging.ServerKey, out.Key),
		slog.String("server_id", out.ServerID),
		slog.String(logging.BackendKey, a.store.Backend()),
	)
	return out, nil
}

// List reports every configured server with its classification.
func (a *Agent) List(ctx context.Context) (out ListOutput, err error) {
	defer func() { a.record(ctx, ToolList, struct{}{}, out, err) }()

	file := filepath.Base(a.store.Path())
	entries, err := a.store.List(ctx)
	if err != nil {
		return ListOutput{}, errors.Wrapf(err, "failed to list servers from %s", file)
	}

	servers := make([]ListedServer, 0, len(entries))
	for _, e := range entries {
		servers = append(servers, ListedServer{
			Name:     e.Key,
			ServerID: e.ServerID,
			Type:     string(e.Type),
		})
	}

	out = ListOutput{Servers: servers, Message: listMessage(servers, file)}
	if err := ValidateListOutput(out); err != nil {
		return ListOutput{}, err
	}
	return out, nil
}

// record appends a call to memory. Recording failures are logged only.
func (a *Agent) record(ctx context.Context, tool string, in, out any, callErr error) {
	if a.memory == nil {
		return
	}
	r := memory.Record{Thread: a.thread, Tool: tool}
	if data, err := json.Marshal(in); err == nil {
		r.Input = data
	}
	if callErr != nil {
		r.Error = callErr.Error()
	} else if data, err := json.Marshal(out); err == nil {
		r.Output = data
	}
	if err := a.memory.Append(r); err != nil {
		logging.FromContext(ctx).Warn("recording agent memory", slog.String("error", err.Error()))
	}
}
