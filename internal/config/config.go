// Package config provides configuration management for smartmcp using Viper.
package config

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "SMARTMCP"

// Store backends.
const (
	BackendSource = "source"
	BackendYAML   = "yaml"
	BackendTOML   = "toml"
)

// Duplicate key policies applied by the store on add.
const (
	DuplicatesAppend    = "append"
	DuplicatesReject    = "reject"
	DuplicatesOverwrite = "overwrite"
)

// DefaultRegistryURL is the public Smithery registry.
const DefaultRegistryURL = "https://registry.smithery.ai"

// Config represents the top-level configuration structure.
type Config struct {
	Version       int            `mapstructure:"version" yaml:"version"`
	ProjectRoot   string         `mapstructure:"project_root" yaml:"project_root,omitempty"`
	BundledMarker string         `mapstructure:"bundled_marker" yaml:"bundled_marker"`
	SourceFile    string         `mapstructure:"source_file" yaml:"source_file"`
	Store         StoreConfig    `mapstructure:"store" yaml:"store"`
	Registry      RegistryConfig `mapstructure:"registry" yaml:"registry"`
	Backup        BackupConfig   `mapstructure:"backup" yaml:"backup"`
	Memory        MemoryConfig   `mapstructure:"memory" yaml:"memory"`
	Server        ServerConfig   `mapstructure:"server" yaml:"server"`
}

// StoreConfig selects where server entries are persisted.
type StoreConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"`
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	Duplicates string `mapstructure:"duplicates" yaml:"duplicates"`
}

// RegistryConfig configures the Smithery registry client.
type RegistryConfig struct {
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	APIKeyEnv    string        `mapstructure:"api_key_env" yaml:"api_key_env"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	DefaultLimit int           `mapstructure:"default_limit" yaml:"default_limit"`
}

// BackupConfig configures session backups of the target file.
type BackupConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir       string `mapstructure:"dir" yaml:"dir"`
	Retention int    `mapstructure:"retention" yaml:"retention"`
}

// MemoryConfig configures the agent's conversation memory.
type MemoryConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ServerConfig configures the MCP server surface.
type ServerConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	// SMARTMCP_STORE_BACKEND overrides store.backend
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
	viper.SetDefault("project_root", "")
	viper.SetDefault("bundled_marker", paths.DefaultBundledMarker)
	viper.SetDefault("source_file", paths.DefaultSourceFile)
	viper.SetDefault("store.backend", BackendSource)
	viper.SetDefault("store.file", "")
	viper.SetDefault("store.duplicates", DuplicatesAppend)
	viper.SetDefault("registry.base_url", DefaultRegistryURL)
	viper.SetDefault("registry.api_key_env", "SMITHERY_API_KEY")
	viper.SetDefault("registry.timeout", 30*time.Second)
	viper.SetDefault("registry.default_limit", 10)
	viper.SetDefault("backup.enabled", true)
	viper.SetDefault("backup.dir", paths.BackupDir())
	viper.SetDefault("backup.retention", 5)
	viper.SetDefault("memory.file", paths.MemoryFile())
	viper.SetDefault("server.name", "smartmcp")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file exists.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load without a file uses defaults
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path)
		default:
			if path != "" && isNotExist(err) {
				return nil, errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path)
			}
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Mark(errors.Join(errs...), errors.ErrInvalidConfig), "validating config")
	}

	return &cfg, nil
}

// Default returns the configuration produced by Init's defaults alone.
func Default() *Config {
	return &Config{
		Version:       1,
		BundledMarker: paths.DefaultBundledMarker,
		SourceFile:    paths.DefaultSourceFile,
		Store: StoreConfig{
			Backend:    BackendSource,
			Duplicates: DuplicatesAppend,
		},
		Registry: RegistryConfig{
			BaseURL:      DefaultRegistryURL,
			APIKeyEnv:    "SMITHERY_API_KEY",
			Timeout:      30 * time.Second,
			DefaultLimit: 10,
		},
		Backup: BackupConfig{
			Enabled:   true,
			Dir:       paths.BackupDir(),
			Retention: 5,
		},
		Memory: MemoryConfig{File: paths.MemoryFile()},
		Server: ServerConfig{Name: "smartmcp"},
	}
}

// StoreFile returns the store file relative to the project root.
// The source backend always targets SourceFile. Structured backends use
// Store.File, or .smartmcp/servers.<backend> when it is unset.
func (c *Config) StoreFile() string {
	switch c.Store.Backend {
	case BackendYAML, BackendTOML:
		if c.Store.File != "" {
			return c.Store.File
		}
		return filepath.Join("."+AppName, "servers."+c.Store.Backend)
	default:
		return c.SourceFile
	}
}

// ResolveProjectRoot returns the absolute project root for this configuration.
func (c *Config) ResolveProjectRoot() (string, error) {
	return paths.ResolveProjectRoot(c.ProjectRoot, c.BundledMarker)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
