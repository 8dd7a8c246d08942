// Package lock serializes writers of a configuration file across goroutines
// and processes.
//
// A Locker holds an in-process semaphore and, while locked, an advisory
// file lock (flock on Unix, LockFileEx on Windows). The kernel drops the
// file lock when its holder exits, so a crashed writer never leaves a lock
// behind. The lock file records the holder's PID for error messages only.
package lock

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/paths"
)
// DefaultRetryInterval is how often a held lock file is polled.
const DefaultRetryInterval = 50 * time.Millisecond

// Locker guards writes to a single target file.
type Locker struct {
	path  string
	sem   chan struct{}
	retry time.Duration
}

// Option configures a Locker.
type Option func(*Locker)

// WithRetryInterval sets how often a held lock file is polled.
func WithRetryInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// FilePath returns the lock file used for target inside dir.
func FilePath(dir, target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(abs)))
	return filepath.Join(dir, fmt.Sprintf("write-%s.lock", hash[:12]))
}

// New returns a Locker for target with its lock file in dir.
func New(dir, target string, opts ...Option) *Locker {
	l := &Locker{
		path:  FilePath(dir, target),
		sem:   make(chan struct{}, 1),
		retry: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the lock file path.
func (l *Locker) Path() string {
	return l.path
}

// Lock blocks until the lock is held or ctx is done. When ctx ends while
// another holder has the lock file, the error matches ErrLocked.
// The returned function releases the lock and must be called exactly once.
func (l *Locker) Lock(ctx context.Context) (func() error, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.Wrap(errors.Mark(ctx.Err(), errors.ErrLocked), "waiting for in-process writer")
	}

	fl, err := l.acquireFile(ctx)
	if err != nil {
		<-l.sem
		return nil, err
	}

	return func() error {
		defer func() { <-l.sem }()
		// The file stays in place; removing it would let a waiter lock an
		// unlinked inode while a newcomer locks a fresh one.
		if err := fl.Unlock(); err != nil {
			return errors.Wrap(err, "releasing lock file")
		}
		return nil
	}, nil
}

func (l *Locker) acquireFile(ctx context.Context) (*flock.Flock, error) {
	if err := paths.EnsureDir(filepath.Dir(l.path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating lock directory")
	}

	logger := logging.FromContext(ctx)
	fl := flock.New(l.path)
	locked, err := fl.TryLockContext(ctx, l.retry)
	switch {
	case locked:
	case ctx.Err() != nil:
		holder := "unknown"
		if pid, ok := readPID(l.path); ok {
			holder = strconv.Itoa(pid)
		}
		return nil, errors.Wrapf(errors.Mark(ctx.Err(), errors.ErrLocked), "lock %s held by PID %s", l.path, holder)
	default:
		return nil, errors.Wrapf(err, "locking %s", l.path)
	}

	if err := os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		logger.Debug("recording lock holder", slog.String("path", l.path), slog.String("error", err.Error()))
	}
	return fl, nil
}

// readPID returns the holder recorded in the lock file, if any.
func readPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
