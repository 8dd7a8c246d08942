package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// AppName is the directory name used under each XDG base directory.
const AppName = "smartmcp"

// DefaultBundledMarker is the path fragment that identifies a bundled build
// output directory two levels below the project root.
const DefaultBundledMarker = ".mastra/output"

// DefaultSourceFile is the configuration source file relative to the project root.
const DefaultSourceFile = "src/mastra/mcp.ts"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
func DataHome() string {
	return xdg.DataHome
}

// StateHome returns the XDG state home directory.
// On Linux: ~/.local/state
func StateHome() string {
	return xdg.StateHome
}

// ConfigDir returns <ConfigHome>/smartmcp.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// BackupDir returns the root directory for configuration backups.
// Returns <DataHome>/smartmcp/backups.
func BackupDir() string {
	return filepath.Join(DataHome(), AppName, "backups")
}

// MemoryFile returns the default path of the agent memory store.
// Returns <DataHome>/smartmcp/memory.db.
func MemoryFile() string {
	return filepath.Join(DataHome(), AppName, "memory.db")
}

// LockDir returns the directory holding write lock files.
// Returns <StateHome>/smartmcp.
func LockDir() string {
	return filepath.Join(StateHome(), AppName)
}

// ReplHistoryFile returns the readline history file of the REPL.
// Returns <StateHome>/smartmcp/repl_history.
func ReplHistoryFile() string {
	return filepath.Join(StateHome(), AppName, "repl_history")
}

// DetectProjectRoot derives the project root from a working directory.
//
// When cwd contains marker (a bundled build output such as .mastra/output),
// the project root is two directories above cwd. Otherwise cwd itself is the
// project root. An empty marker disables detection.
func DetectProjectRoot(cwd, marker string) string {
	if marker != "" && strings.Contains(filepath.ToSlash(cwd), marker) {
		return filepath.Join(cwd, "..", "..")
	}
	return cwd
}

// ResolveProjectRoot returns override when set, otherwise the project root
// detected from the current working directory.
func ResolveProjectRoot(override, marker string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "resolving working directory")
	}
	return DetectProjectRoot(cwd, marker), nil
}
