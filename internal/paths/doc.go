// Package paths resolves the directories and files smartmcp reads and writes.
//
// User-level state follows the XDG Base Directory Specification through
// github.com/adrg/xdg:
//
//	paths.ConfigDir()  // ~/.config/smartmcp
//	paths.BackupDir()  // ~/.local/share/smartmcp/backups
//	paths.MemoryFile() // ~/.local/share/smartmcp/memory.db
//	paths.LockDir()    // ~/.local/state/smartmcp
//
// # Project Root
//
// The servers configuration file lives inside a project checkout. When the
// assistant runs from a bundled build directory (for example
// <root>/.mastra/output), [DetectProjectRoot] walks back up to <root>:
//
//	paths.DetectProjectRoot("/work/app/.mastra/output", paths.DefaultBundledMarker)
//	// /work/app
package paths
