// Package backup snapshots configuration files before smartmcp modifies them.
//
// Each backup is a directory holding copies of the files and a
// manifest.json with their SHA-256 hashes and permissions:
//
//	$XDG_DATA_HOME/smartmcp/backups/
//	└── {scope}/
//	    └── {timestamp}-{id}/
//	        ├── manifest.json
//	        └── {copied files...}
//
// A scope groups the backups of one target file (see [ScopeFor]).
//
// # Session Backups
//
// Stores call [Manager.EnsureBackedUp] before every mutation. Only the first
// call per target in the Manager's lifetime copies the file; later calls are
// no-ops. Old backups beyond the retention count are pruned at that point.
//
// # Restoring Backups
//
//	err := mgr.Restore(backup.ScopeFor(target), "20260123T100712-1a2b3c4d")
//
// Restore verifies every hash before writing anything and returns
// [ErrBackupCorrupted] on mismatch. The files being replaced are backed up
// first.
package backup
