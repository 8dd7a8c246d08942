package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("server added", "key", "geeknews")

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if parsed["msg"] != "server added" {
		t.Errorf("msg = %v, want 'server added'", parsed["msg"])
	}
	if parsed["key"] != "geeknews" {
		t.Errorf("key = %v, want 'geeknews'", parsed["key"])
	}
}

func TestNew_UnknownFormatDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: Format("unknown"),
		Output: &buf,
	})

	logger.Info("listing servers", "count", 3)

	output := buf.String()
	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err == nil {
		t.Error("unknown format should default to text, not JSON")
	}
	if !strings.Contains(output, "count=3") {
		t.Errorf("output missing attribute: %s", output)
	}
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	logger.Info("discarded")
	logger.Error("discarded too", "err", "boom")
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		v    int
		want slog.Level
	}{
		{-1, slog.LevelWarn},
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{3, LevelTrace},
		{9, LevelTrace},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.v); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: FormatText, Output: &buf})

	ctx := NewContext(context.Background(), logger)
	FromContext(ctx).Debug("from context")

	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("logger from context did not write to buffer: %q", buf.String())
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Error("FromContext without a logger should return slog.Default()")
	}
}

func TestNew_JSONRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelTrace, Format: FormatJSON, Output: &buf, Component: "registry"})

	logger.Log(t.Context(), LevelTrace, "search", "api_key", "sk-live-12345678", ServerKey, "exa")

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if parsed["api_key"] != "****5678" {
		t.Errorf("api_key = %v, want masked", parsed["api_key"])
	}
	if parsed[ServerKey] != "exa" {
		t.Errorf("key = %v, want exa", parsed[ServerKey])
	}
	if parsed["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", parsed["level"])
	}
	if parsed[ComponentKey] != "registry" {
		t.Errorf("component = %v, want registry", parsed[ComponentKey])
	}
}

func TestForTest(t *testing.T) {
	logger := ForTest(t)
	if !logger.Enabled(t.Context(), LevelTrace) {
		t.Error("test logger should accept trace records")
	}
	logger.Debug("visible with -v")
}

func TestNewFanout_Single(t *testing.T) {
	h := NewHandler(&bytes.Buffer{}, nil)
	if got := NewFanout(h); got != slog.Handler(h) {
		t.Errorf("NewFanout with one handler = %T, want the handler itself", got)
	}
}

func TestFanout(t *testing.T) {
	var textBuf, jsonBuf bytes.Buffer
	h := NewFanout(
		NewSink(FormatText, &textBuf, slog.LevelWarn),
		NewSink(FormatJSON, &jsonBuf, slog.LevelDebug),
	)
	logger := slog.New(h).With(ComponentKey, "store")

	logger.Info("read config")
	logger.Warn("lock is stale")

	if strings.Contains(textBuf.String(), "read config") {
		t.Error("text handler should filter Info at Warn level")
	}
	if !strings.Contains(textBuf.String(), "lock is stale") {
		t.Error("text handler should receive Warn records")
	}
	if got := strings.Count(jsonBuf.String(), "\n"); got != 2 {
		t.Errorf("json handler got %d records, want 2", got)
	}
	if !strings.Contains(jsonBuf.String(), `"component":"store"`) {
		t.Errorf("WithAttrs not propagated: %s", jsonBuf.String())
	}
}
