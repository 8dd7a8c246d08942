package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// ManifestVersion is the manifest format version for forward compatibility.
const ManifestVersion = 1

// DefaultRetentionCount is the default number of backups to retain per scope.
const DefaultRetentionCount = 5

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist for the requested scope.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a backup file's SHA-256 hash no longer
	// matches its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrNothingToBackUp indicates none of the requested files exist.
	ErrNothingToBackUp = errors.New("no files to back up")
)

// Manifest describes a backup. It is stored as manifest.json in each
// backup directory.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Scope groups backups of the same target file.
	Scope string `json:"scope"`

	// Reason records what triggered the backup, such as "add" or "restore".
	Reason string `json:"reason,omitempty"`

	Files []File `json:"files"`

	// ToolVersion is the smartmcp version that created the backup.
	ToolVersion string `json:"tool_version"`

	// ID is the backup directory name. Populated on load, not stored.
	ID string `json:"-"`
}

// File is one backed up file.
type File struct {
	// OriginalPath is the absolute path the file was copied from.
	OriginalPath string `json:"original_path"`

	// RelPath is the location inside the backup directory.
	RelPath string `json:"rel_path"`

	// SHA256Hash is the hex-encoded SHA-256 of the file contents.
	SHA256Hash string `json:"sha256_hash"`

	Mode fs.FileMode `json:"mode"`
}
