// Package watch reports servers added to or removed from the configuration
// file while it is being edited, so a host knows when to restart.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
)

// DefaultDebounce coalesces the burst of events produced by one atomic write.
const DefaultDebounce = 200 * time.Millisecond

// Lister returns the configured entries.
type Lister interface {
	List(ctx context.Context) ([]mcpconfig.Entry, error)
	Path() string
}

// Change is the difference between two successive listings.
type Change struct {
	Added   []string
	Removed []string

	// Err is set when the file could not be listed after an event. Added
	// and Removed are empty in that case.
	Err error
}

// Empty reports whether the change carries nothing to act on.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && c.Err == nil
}

// Watcher watches the store file and calls OnChange after it settles.
type Watcher struct {
	lister   Lister
	onChange func(Change)
	debounce time.Duration

	mu    sync.Mutex
	known []string
	timer *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New returns a Watcher over l. onChange is called from the watcher's
// goroutine and only for non-empty changes.
func New(l Lister, onChange func(Change), opts ...Option) *Watcher {
	w := &Watcher{
		lister:   l,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is cancelled. The initial listing is the baseline;
// a missing servers block at start is reported as an empty baseline.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	path := filepath.Clean(w.lister.Path())

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer fsw.Close()

	// Atomic writes rename over the file, so the directory is watched.
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}

	if entries, err := w.lister.List(ctx); err == nil {
		w.known = keys(entries)
	} else {
		logger.Warn("initial listing failed", "path", path, "error", err)
	}
	logger.Info("watching configuration", "path", path, "servers", len(w.known))

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug("configuration event", "op", event.Op.String())
			w.schedule(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.reload(ctx)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reload(ctx context.Context) {
	entries, err := w.lister.List(ctx)
	if err != nil {
		w.emit(Change{Err: err})
		return
	}

	next := keys(entries)
	w.mu.Lock()
	change := Diff(w.known, next)
	w.known = next
	w.mu.Unlock()

	if !change.Empty() {
		w.emit(change)
	}
}

func (w *Watcher) emit(c Change) {
	if w.onChange != nil {
		w.onChange(c)
	}
}

// Diff compares two key lists. Keys are compared as a multiset so a
// duplicate appended under an existing key counts as an addition.
func Diff(prev, next []string) Change {
	counts := make(map[string]int, len(prev))
	for _, k := range prev {
		counts[k]++
	}

	var c Change
	for _, k := range next {
		if counts[k] > 0 {
			counts[k]--
			continue
		}
		c.Added = append(c.Added, k)
	}
	for _, k := range prev {
		if counts[k] > 0 {
			counts[k]--
			c.Removed = append(c.Removed, k)
		}
	}
	return c
}

func keys(entries []mcpconfig.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}
