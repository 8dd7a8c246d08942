// Package cmd holds the smartmcp build identity. The variables are set via
// ldflags by release builds:
//
//	-X github.com/thoreinstein/smartmcp/cmd.Version=v0.3.0
package cmd

import (
	"runtime/debug"
	"strings"
)

var (
	// Version is the release tag, or "dev".
	Version = "dev"
	// Commit is the git SHA the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// Name is the program name reported to registries and MCP servers.
const Name = "smartmcp"

// ResolvedVersion returns Version, falling back to the module version
// recorded by `go install` when ldflags were not set.
func ResolvedVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Version
}

// UserAgent is the User-Agent header sent to the Smithery registry.
func UserAgent() string {
	return Name + "/" + strings.TrimPrefix(ResolvedVersion(), "v")
}
