package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/smartmcp/internal/config"
	"github.com/thoreinstein/smartmcp/internal/editor"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/paths"
	"github.com/thoreinstein/smartmcp/pkg/fileutil"
)

// Output formats accepted by config list.
const (
	formatYAML = "yaml"
	formatTOML = "toml"
	formatJSON = "json"
)

var configListFormat string

func init() {
	configListCmd.Flags().StringVar(&configListFormat, "format", formatYAML,
		"output format: yaml, toml, json")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage smartmcp configuration",
	Long: `Manage smartmcp configuration stored in config.yaml.

The file is read from the current directory or $XDG_CONFIG_HOME/smartmcp.
Every key can be overridden with a SMARTMCP_ environment variable, for
example SMARTMCP_STORE_BACKEND=yaml.

Without a subcommand, lists the effective configuration.`,
	Example: `  # List the effective configuration
  smartmcp config

  # Get a specific value
  smartmcp config get store.backend

  # Set a value
  smartmcp config set store.duplicates reject

See Also: smartmcp mcp list`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigListWithWriter(cmd.OutOrStdout(), formatYAML)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys such as registry.timeout.`,
	Example: `  # Get the store backend
  smartmcp config get store.backend

  # Get the registry timeout
  smartmcp config get registry.timeout

See Also: smartmcp config set, smartmcp config list`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigGetWithWriter(cmd.OutOrStdout(), args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write the configuration file.

The resulting configuration is validated before anything is written.`,
	Example: `  # Reject duplicate server keys
  smartmcp config set store.duplicates reject

  # Keep ten backups
  smartmcp config set backup.retention 10

See Also: smartmcp config get, smartmcp config list`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigSetWithWriter(cmd.OutOrStdout(), configPath(), args[0], args[1])
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List the effective configuration values, including defaults and environment overrides.`,
	Example: `  # List all configuration
  smartmcp config list

  # As TOML
  smartmcp config list --format toml

See Also: smartmcp config get, smartmcp config set`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigListWithWriter(cmd.OutOrStdout(), configListFormat)
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

Uses $EDITOR, then $VISUAL, then nano or vi. If no configuration file
exists, one is written with the current values first.`,
	Example: `  # Open config in default editor
  smartmcp config edit

  # Open with specific editor
  EDITOR=nano smartmcp config edit

See Also: smartmcp config list`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func runConfigGetWithWriter(w io.Writer, key string) error {
	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case map[string]any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "marshaling value")
		}
		fmt.Fprint(w, string(data))
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}
	return nil
}

func runConfigSetWithWriter(w io.Writer, path, key, value string) error {
	if !slices.Contains(viper.AllKeys(), key) {
		known := viper.AllKeys()
		sort.Strings(known)
		return errors.NewUserError(
			errors.Newf("unknown configuration key %q", key),
			"Valid keys: "+strings.Join(known, ", "),
		)
	}

	previous := viper.Get(key)
	viper.Set(key, value)

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		viper.Set(key, previous)
		return errors.NewUserError(errors.Wrapf(err, "setting %s", key), "")
	}
	if errs := config.Validate(&cfg); len(errs) > 0 {
		viper.Set(key, previous)
		return errors.NewConfigError(errors.Wrapf(errors.Join(errs...), "setting %s", key))
	}

	if err := writeConfig(path); err != nil {
		return err
	}
	fmt.Fprintf(w, "Set %s = %s\n", key, value)
	return nil
}

func runConfigListWithWriter(w io.Writer, format string) error {
	settings := viper.AllSettings()

	var (
		data []byte
		err  error
	)
	switch format {
	case formatYAML, "":
		data, err = yaml.Marshal(settings)
	case formatTOML:
		data, err = toml.Marshal(settings)
	case formatJSON:
		data, err = json.MarshalIndent(settings, "", "  ")
		data = append(data, '\n')
	default:
		return errors.NewUserError(
			errors.Newf("unknown format %q", format),
			"Use --format yaml, toml or json",
		)
	}
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Fprint(w, string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := configPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfig(path); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", path)
	return editor.Open(cmd.Context(), path, editor.Streams{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	})
}

// configPath returns the file config set and config edit write: the file
// that was loaded, or config.yaml in the user config directory.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(paths.ConfigDir(), "config.yaml")
}

// writeConfig writes the current viper configuration to path.
func writeConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, viper.AllSettings()); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}
