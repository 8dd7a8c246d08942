// Package cli wires the configured components together for the smartmcp
// commands and renders their results for a terminal.
package cli

import (
	"context"

	"github.com/thoreinstein/smartmcp/internal/agent"
	"github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/config"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/memory"
	"github.com/thoreinstein/smartmcp/internal/registry"
	"github.com/thoreinstein/smartmcp/internal/store"
)

// App holds the components a command operates on.
type App struct {
	Config   *config.Config
	Store    store.Store
	Registry *registry.Client
	Backups  *backup.Manager
	Memory   *memory.Store
	Agent    *agent.Agent
}

// OpenOptions adjusts how Open builds an App.
type OpenOptions struct {
	// Thread resumes a memory thread. Empty starts a new one.
	Thread string

	// Duplicates overrides the configured duplicate policy when set.
	Duplicates string

	// UserAgent identifies the build to the registry.
	UserAgent string
}

// Open builds an App from cfg.
func Open(ctx context.Context, cfg *config.Config, opts OpenOptions) (*App, error) {
	if cfg == nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, "configuration not loaded")
	}
	if opts.Duplicates != "" {
		c := *cfg
		c.Store.Duplicates = opts.Duplicates
		cfg = &c
	}

	backups := backup.NewManager(
		backup.WithBackupDir(cfg.Backup.Dir),
		backup.WithRetentionCount(cfg.Backup.Retention),
	)

	st, err := store.FromConfig(cfg, backups)
	if err != nil {
		return nil, errors.Wrap(err, "opening server store")
	}

	app := &App{
		Config:   cfg,
		Store:    st,
		Registry: registry.FromConfig(cfg.Registry, registry.WithUserAgent(opts.UserAgent)),
		Backups:  backups,
	}

	agentOpts := []agent.Option{agent.WithDefaultLimit(cfg.Registry.DefaultLimit)}
	if cfg.Memory.File != "" {
		app.Memory = memory.New(cfg.Memory.File)
		agentOpts = append(agentOpts, agent.WithMemory(app.Memory, opts.Thread))
	}
	app.Agent = agent.New(st, app.Registry, agentOpts...)

	logging.FromContext(ctx).Debug("application opened",
		logging.BackendKey, st.Backend(),
		"path", st.Path(),
		"thread", app.Agent.Thread(),
	)
	return app, nil
}

// BackupScope returns the backup scope of the store file.
func (a *App) BackupScope() string {
	return backup.ScopeFor(a.Store.Path())
}
