package logging

import (
	"io"
	"log/slog"
	"os"
	"testing"
)

// Format selects how records are rendered.
type Format string

const (
	// FormatText renders one colorized line per record for terminals.
	FormatText Format = "text"
	// FormatJSON renders one JSON object per record, for --log-file and
	// log collectors.
	FormatJSON Format = "json"
)

// Attribute keys shared by the store, agent and server loggers.
const (
	ComponentKey = "component"
	BackendKey   = "backend"
	ServerKey    = "key"
)

// Config describes a logger sink.
type Config struct {
	// Level is the minimum level written. Nil means Info.
	Level slog.Leveler
	// Format defaults to FormatText for empty or unknown values.
	Format Format
	// Output defaults to os.Stderr.
	Output io.Writer
	// Component, when set, is attached to every record as ComponentKey.
	Component string
}

// New builds a logger from cfg. Credentials are masked in every format.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	logger := slog.New(NewSink(cfg.Format, out, cfg.Level))
	if cfg.Component != "" {
		logger = logger.With(ComponentKey, cfg.Component)
	}
	return logger
}

// NewSink returns the handler for format writing to w. Both formats share
// RedactAttr, so a key masked on the terminal is also masked in the
// --log-file output.
func NewSink(format Format, w io.Writer, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: RedactAttr}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return NewHandler(w, opts)
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ForTest returns a trace-level text logger bound to t's output, so records
// show up next to the failing assertion.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return New(Config{Level: LevelTrace, Output: t.Output()})
}
