package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
)

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"SMARTMCP_DEBUG=1", "1", slog.LevelDebug},
		{"SMARTMCP_DEBUG=true", "true", slog.LevelDebug},
		{"SMARTMCP_DEBUG=2", "2", logging.LevelTrace},
		{"SMARTMCP_DEBUG=0", "0", slog.LevelWarn},
		{"SMARTMCP_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv("SMARTMCP_DEBUG", tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel == slog.LevelDebug && logger.Enabled(t.Context(), logging.LevelTrace) {
				t.Error("expected Trace level to be disabled when SMARTMCP_DEBUG=1")
			}
		})
	}
}

func TestSetupLogging_QuietMutualExclusion(t *testing.T) {
	origVerbosity := verbosity
	origQuiet := quiet
	defer func() {
		verbosity = origVerbosity
		quiet = origQuiet
	}()

	verbosity = 1
	quiet = true

	err := setupLogging(rootCmd)
	if err == nil {
		t.Fatal("expected error when both quiet and verbose are set")
	}
	if got := errors.Classify(err).Code; got != errors.ExitUser {
		t.Errorf("exit code = %d, want %d", got, errors.ExitUser)
	}
}

func TestSetupLogging_LogFile(t *testing.T) {
	origLogFile := logFile
	defer func() { logFile = origLogFile }()

	logFile = filepath.Join(t.TempDir(), "smartmcp.log")
	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}

	slog.Default().Error("written to file", "key", "value")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"written to file"`) {
		t.Errorf("log file should contain JSON record, got: %s", data)
	}
}

func TestCheckConfig(t *testing.T) {
	origErr := configLoadErr
	defer func() { configLoadErr = origErr }()

	configLoadErr = errors.Wrap(errors.ErrInvalidConfig, "validating config")

	if err := checkConfig(versionCmd, nil); err != nil {
		t.Errorf("version should skip config check, got %v", err)
	}

	err := checkConfig(&cobra.Command{Use: "list"}, nil)
	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Suggestion == "" {
		t.Error("config errors should carry a suggestion")
	}
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Error("config error should wrap ErrInvalidConfig")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"mcp", "backup", "serve", "repl", "watch", "history", "config", "doctor", "version"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}
