package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/paths"
	"github.com/thoreinstein/smartmcp/pkg/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

const manifestName = "manifest.json"

// Manager handles backup creation, restoration, and retention.
type Manager struct {
	rootDir        string
	retentionCount int

	mu   sync.Mutex
	once map[string]*sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.rootDir = dir
		}
	}
}

// WithRetentionCount sets the number of backups to retain per scope.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupDir(),
		retentionCount: DefaultRetentionCount,
		once:           make(map[string]*sync.Once),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RetentionCount returns the configured number of backups kept per scope.
func (m *Manager) RetentionCount() int {
	return m.retentionCount
}

// ScopeFor returns the backup scope for a target file: its base name plus a
// short hash of its absolute path.
func ScopeFor(target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	sum := sha256.Sum256([]byte(abs))
	base := strings.ReplaceAll(filepath.Base(abs), ".", "_")
	return fmt.Sprintf("%s-%s", base, hex.EncodeToString(sum[:])[:12])
}

// Backup copies the given files into a new backup under scope.
// Paths that do not exist are skipped; it is an error if none exist.
func (m *Manager) Backup(scope, reason string, files []string) (*Manifest, error) {
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	if len(files) == 0 {
		return nil, errors.New("at least one path is required")
	}

	backupID := time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
	backupPath := m.backupPath(scope, backupID)

	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating backup directory")
	}

	var copied []File
	for _, p := range files {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "stat %s", p)
		}
		if info.IsDir() {
			return nil, errors.Newf("%s is a directory", p)
		}

		bf, err := backupFile(abs, backupPath)
		if err != nil {
			return nil, errors.Wrapf(err, "backing up file %s", p)
		}
		copied = append(copied, *bf)
	}

	if len(copied) == 0 {
		os.RemoveAll(backupPath)
		return nil, ErrNothingToBackUp
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   time.Now().UTC(),
		Scope:       scope,
		Reason:      reason,
		Files:       copied,
		ToolVersion: Version,
		ID:          backupID,
	}

	if err := fileutil.AtomicWriteJSON(filepath.Join(backupPath, manifestName), manifest); err != nil {
		return nil, errors.Wrap(err, "writing manifest")
	}

	return manifest, nil
}

func backupFile(src, backupPath string) (*File, error) {
	relPath := generateRelPath(src)
	dst := filepath.Join(backupPath, relPath)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating parent directory")
	}

	hash, mode, err := copyFile(src, dst)
	if err != nil {
		return nil, err
	}

	return &File{
		OriginalPath: src,
		RelPath:      relPath,
		SHA256Hash:   hash,
		Mode:         mode,
	}, nil
}

// Restore writes the files of a backup back to their original locations.
// Every file is verified against its manifest hash before anything is
// written, and the current files are backed up first.
func (m *Manager) Restore(scope, backupID string) error {
	manifest, err := m.Get(scope, backupID)
	if err != nil {
		return err
	}

	backupPath := m.backupPath(scope, backupID)
	contents := make([][]byte, len(manifest.Files))
	for i, bf := range manifest.Files {
		data, err := os.ReadFile(filepath.Join(backupPath, bf.RelPath))
		if err != nil {
			return errors.Wrapf(err, "reading backup file %s", bf.RelPath)
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != bf.SHA256Hash {
			return errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", bf.RelPath)
		}
		contents[i] = data
	}

	current := make([]string, 0, len(manifest.Files))
	for _, bf := range manifest.Files {
		current = append(current, bf.OriginalPath)
	}
	if _, err := m.Backup(scope, "restore", current); err != nil && !errors.Is(err, ErrNothingToBackUp) {
		return errors.Wrap(err, "backing up current files before restore")
	}

	for i, bf := range manifest.Files {
		if err := os.MkdirAll(filepath.Dir(bf.OriginalPath), 0o755); err != nil {
			return errors.Wrapf(err, "creating directory for %s", bf.OriginalPath)
		}
		if err := fileutil.AtomicWriteFile(bf.OriginalPath, contents[i], bf.Mode.Perm()); err != nil {
			return errors.Wrapf(err, "restoring %s", bf.OriginalPath)
		}
	}

	return nil
}

// List returns all backups for scope, newest first.
func (m *Manager) List(scope string) ([]Manifest, error) {
	if scope == "" {
		return nil, errors.New("scope is required")
	}

	entries, err := os.ReadDir(filepath.Join(m.rootDir, scope))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(scope, entry.Name())
		if err != nil {
			// not a backup directory
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	return manifests, nil
}

// Prune removes backups of scope beyond the newest keep.
// It returns the number of backups removed.
func (m *Manager) Prune(scope string, keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New("keep must be non-negative")
	}

	manifests, err := m.List(scope)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for i := keep; i < len(manifests); i++ {
		if err := os.RemoveAll(m.backupPath(scope, manifests[i].ID)); err != nil {
			return removed, errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
		removed++
	}
	return removed, nil
}

// Get returns the manifest for a specific backup.
func (m *Manager) Get(scope, backupID string) (*Manifest, error) {
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	if backupID == "" {
		return nil, errors.New("backup ID is required")
	}

	data, err := os.ReadFile(filepath.Join(m.backupPath(scope, backupID), manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", backupID)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.ID = backupID
	return &manifest, nil
}

func (m *Manager) backupPath(scope, backupID string) string {
	return filepath.Join(m.rootDir, scope, backupID)
}

// copyFile copies src to dst, returning the SHA-256 hash and mode of src.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = srcInfo.Mode()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(dstFile, h), srcFile); err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}

	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}

	if err := os.Chmod(dst, mode); err != nil {
		return "", 0, errors.Wrap(err, "setting permissions")
	}

	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// generateRelPath maps an absolute path to a relative location inside a
// backup directory. Colons are dropped so Windows drive letters are safe.
func generateRelPath(absPath string) string {
	clean := filepath.Clean(absPath)
	if filepath.IsAbs(clean) && clean[0] == filepath.Separator {
		clean = clean[1:]
	}
	return strings.ReplaceAll(clean, ":", "")
}
