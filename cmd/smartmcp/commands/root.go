// Package commands implements the CLI commands for smartmcp.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd"
	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/backup"
	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/mcp"
	backuppkg "github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/config"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(flags.ConfigFileVar(), "config", "",
		"config file (default: ./config.yaml or $XDG_CONFIG_HOME/smartmcp/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.ResolvedVersion()
	rootCmd.SetVersionTemplate("smartmcp version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(mcp.Cmd)
	rootCmd.AddCommand(backup.Cmd)

	backuppkg.Version = cmd.ResolvedVersion()
}

func initConfig() {
	config.Init()
	cfg, err := config.Load(flags.GetConfigFile())
	configLoadErr = err
	if err == nil {
		flags.SetConfig(cfg)
	}
}

var rootCmd = &cobra.Command{
	Use:   "smartmcp",
	Short: "Discover and configure MCP servers",
	Long: `smartmcp discovers MCP servers in the Smithery registry and adds them to
an MCP client configuration.

The configuration is either the servers block of a TypeScript source file
(src/mastra/mcp.ts by default) or a structured YAML or TOML side-file.
Every change is serialized with a lock, backed up once per session and
written atomically.

The same operations are exposed to agents as MCP tools by 'smartmcp serve'.`,
	Example: `  # Search the registry
  smartmcp mcp discover weather

  # Add a server under the key "geeknews"
  smartmcp mcp add GeekNews @the0807/geeknews-mcp-server

  # Show what is configured
  smartmcp mcp list

  # Serve the tools to an MCP host over stdio
  smartmcp serve

  See Also: smartmcp repl, smartmcp config`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd, args)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "Pass only one of -q and -v")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("SMARTMCP_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	handlers := []slog.Handler{
		logging.NewSink(logging.Format(logFormat), cmd.ErrOrStderr(), level),
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		handlers = append(handlers, logging.NewSink(logging.FormatJSON, f, level))
	}
	handler := logging.NewFanout(handlers...)

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig reports a configuration load failure for every command that
// needs the configuration.
func checkConfig(cmd *cobra.Command, _ []string) error {
	// Skip validation for help and version commands
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}

	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context so long-running commands shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return errors.Wrap(rootCmd.ExecuteContext(ctx), "executing root command")
}
