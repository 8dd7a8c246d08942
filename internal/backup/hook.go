package backup

import (
	"os"
	"sync"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// EnsureBackedUp backs up target once per Manager before its first
// modification, then prunes the scope to the retention count.
//
// A missing target is not an error since there is nothing to lose. When the
// backup fails the session state is reset so the next call retries.
func (m *Manager) EnsureBackedUp(target, reason string) error {
	scope := ScopeFor(target)

	m.mu.Lock()
	once, ok := m.once[scope]
	if !ok {
		once = &sync.Once{}
		m.once[scope] = once
	}
	m.mu.Unlock()

	var backupErr error
	once.Do(func() {
		_, backupErr = m.Backup(scope, reason, []string{target})
		if errors.Is(backupErr, ErrNothingToBackUp) {
			backupErr = nil
		}
		if backupErr != nil || !fileExists(target) {
			m.resetScope(scope)
			return
		}
		_, backupErr = m.Prune(scope, m.retentionCount)
	})

	if backupErr != nil {
		return errors.Wrapf(backupErr, "creating backup for %s", target)
	}
	return nil
}

// Reset forgets which targets were backed up in this session.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.once = make(map[string]*sync.Once)
}

func (m *Manager) resetScope(scope string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.once, scope)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
