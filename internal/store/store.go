// Package store persists MCP server entries behind a single interface.
//
// The source backend patches the servers block of a TypeScript file in
// place. The yaml and toml backends keep the same entries in a structured
// side-file. Every backend serializes writers with a lock, backs the target
// up once per session and replaces the file atomically.
package store

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/config"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/lock"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
	"github.com/thoreinstein/smartmcp/internal/paths"
)

// Store reads and extends the configured set of MCP servers.
type Store interface {
	// List returns the configured entries in file order.
	List(ctx context.Context) ([]mcpconfig.Entry, error)

	// Add persists e according to the store's duplicate policy.
	Add(ctx context.Context, e mcpconfig.Entry) (AddResult, error)

	// Path returns the file the store operates on.
	Path() string

	// Backend returns the backend name.
	Backend() string
}

// AddResult describes the outcome of Add.
type AddResult struct {
	Entry mcpconfig.Entry

	// Replaced is true when an existing entry with the same key was
	// overwritten instead of a new one appended.
	Replaced bool
}

// Options configures a Store.
type Options struct {
	// Backend is one of config.BackendSource, BackendYAML or BackendTOML.
	Backend string

	// Path is the absolute path of the store file.
	Path string

	// Duplicates is the duplicate key policy. Defaults to append.
	Duplicates string

	// LockDir holds the write lock file. Defaults to paths.LockDir().
	LockDir string

	// Backups snapshots the file before the first write. Nil disables backups.
	Backups *backup.Manager
}

// New returns the Store selected by opts.Backend.
func New(opts Options) (Store, error) {
	if opts.Path == "" {
		return nil, errors.New("store path is required")
	}
	if opts.Duplicates == "" {
		opts.Duplicates = config.DuplicatesAppend
	}
	if opts.LockDir == "" {
		opts.LockDir = paths.LockDir()
	}

	w := &writer{
		path:       opts.Path,
		duplicates: opts.Duplicates,
		locker:     lock.New(opts.LockDir, opts.Path),
		backups:    opts.Backups,
	}

	switch opts.Backend {
	case config.BackendSource, "":
		return &SourceStore{writer: w, text: mcpconfig.NewTextStore(opts.Path)}, nil
	case config.BackendYAML:
		return &StructuredStore{writer: w, codec: yamlCodec}, nil
	case config.BackendTOML:
		return &StructuredStore{writer: w, codec: tomlCodec}, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown store backend %q", opts.Backend)
	}
}

// FromConfig builds the Store described by cfg. A relative store file is
// resolved against the project root; an absolute one is used as is.
func FromConfig(cfg *config.Config, backups *backup.Manager) (Store, error) {
	root, err := cfg.ResolveProjectRoot()
	if err != nil {
		return nil, err
	}
	if !cfg.Backup.Enabled {
		backups = nil
	}
	path := cfg.StoreFile()
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return New(Options{
		Backend:    cfg.Store.Backend,
		Path:       path,
		Duplicates: cfg.Store.Duplicates,
		Backups:    backups,
	})
}

// writer holds the shared write path of every backend.
type writer struct {
	path       string
	duplicates string
	locker     *lock.Locker
	backups    *backup.Manager
}

func (w *writer) Path() string {
	return w.path
}

// mutate runs fn while holding the write lock.
func (w *writer) mutate(ctx context.Context, fn func() error) error {
	release, err := w.locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			logging.FromContext(ctx).Warn("releasing write lock", slog.String("error", err.Error()))
		}
	}()
	return fn()
}

// snapshot takes the session backup of the store file. Backends call it
// once the new content is ready and right before writing it, so a failed
// add leaves the backup directory untouched.
func (w *writer) snapshot() error {
	if w.backups == nil {
		return nil
	}
	return w.backups.EnsureBackedUp(w.path, "add")
}

// resolve applies the duplicate policy. It returns the index of the entry
// to replace, or -1 to append.
func (w *writer) resolve(entries []mcpconfig.Entry, key string) (int, error) {
	idx := -1
	for i, e := range entries {
		if e.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return -1, nil
	}
	switch w.duplicates {
	case config.DuplicatesReject:
		return -1, errors.Wrapf(errors.ErrDuplicateKey, "%q", key)
	case config.DuplicatesOverwrite:
		return idx, nil
	default:
		return -1, nil
	}
}
