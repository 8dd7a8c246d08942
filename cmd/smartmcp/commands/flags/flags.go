// Package flags provides shared flag and configuration accessors for CLI
// commands. This package exists to avoid import cycles between the root
// command and noun subpackages (mcp, backup).
package flags

import (
	"github.com/spf13/cobra"

	build "github.com/thoreinstein/smartmcp/cmd"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/config"
)

// configFile holds the value of the --config flag.
var configFile string

// loaded holds the configuration loaded by the root command.
var loaded *config.Config

// GetConfigFile returns the current value of the --config flag.
func GetConfigFile() string {
	return configFile
}

// SetConfigFile sets the --config flag value.
func SetConfigFile(path string) {
	configFile = path
}

// ConfigFileVar returns the flag target for --config.
func ConfigFileVar() *string {
	return &configFile
}

// Config returns the loaded configuration, or the defaults when none was
// loaded (for example in tests that call a command's run function directly).
func Config() *config.Config {
	if loaded == nil {
		return config.Default()
	}
	return loaded
}

// SetConfig records the configuration loaded by the root command.
func SetConfig(cfg *config.Config) {
	loaded = cfg
}

// OpenApp builds the application for cmd from the loaded configuration.
func OpenApp(cmd *cobra.Command, opts cli.OpenOptions) (*cli.App, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = build.UserAgent()
	}
	return cli.Open(cmd.Context(), Config(), opts)
}
