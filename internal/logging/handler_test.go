package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(NewHandler(buf, &slog.HandlerOptions{Level: level}))
}

func TestHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelDebug)

	now := time.Now()
	logger.Info("entry appended", "key", "geeknews")

	output := buf.String()
	for _, want := range []string{"INFO", "entry appended", "key=geeknews", now.Format(time.Kitchen)} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %q", want, output)
		}
	}
	if strings.Count(output, "\n") != 1 {
		t.Errorf("expected a single line, got: %q", output)
	}
}

func TestHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo).With(BackendKey, "source")

	logger.Info("message", "local", "val")

	output := buf.String()
	if !strings.Contains(output, "backend=source") {
		t.Errorf("expected common attribute in output, got: %q", output)
	}
	if !strings.Contains(output, "local=val") {
		t.Errorf("expected local attribute in output, got: %q", output)
	}
}

func TestHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo).WithGroup("registry")

	logger.Info("search failed", "status", 401, slog.Group("page", "size", 10))

	output := buf.String()
	for _, want := range []string{"registry.status=401", "registry.page.size=10"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %q", want, output)
		}
	}
}

func TestHandler_QuotesValues(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf, slog.LevelInfo).Info("discover", "query", "web search", "empty", "")

	output := buf.String()
	if !strings.Contains(output, `query="web search"`) || !strings.Contains(output, `empty=""`) {
		t.Errorf("expected quoted values, got: %q", output)
	}
}

func TestHandler_Enabled(t *testing.T) {
	h := NewHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	ctx := t.Context()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("expected Info level to be disabled when min level is Warn")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("expected Error level to be enabled")
	}
	if NewHandler(&bytes.Buffer{}, nil).Enabled(ctx, slog.LevelDebug) {
		t.Error("expected Info to be the default minimum")
	}
}

func TestHandler_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf, LevelTrace).Log(t.Context(), LevelTrace, "registry request")

	if !strings.Contains(buf.String(), "TRACE registry request") {
		t.Errorf("expected TRACE label, got: %q", buf.String())
	}
}

func TestHandler_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	logger.Info("registry request",
		"SMITHERY_API_KEY", "secret12345",
		"header", "Bearer tok-98765",
		ServerKey, "geeknews",
		"server_key", "aidaily",
	)

	output := buf.String()
	if strings.Contains(output, "secret12345") {
		t.Error("api key value should be redacted")
	}
	if strings.Contains(output, "tok-98765") {
		t.Error("bearer header value should be redacted")
	}
	for _, want := range []string{
		"SMITHERY_API_KEY=****2345",
		"header=****8765",
		"key=geeknews",
		"server_key=aidaily",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %q", want, output)
		}
	}
}

func TestRedactAttr(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"server key readable", slog.String("key", "geeknews"), "geeknews"},
		{"api key masked", slog.String("api_key", "abcdef123"), "****f123"},
		{"token value masked", slog.String("value", "ghp_abcdefgh"), "****efgh"},
		{"non-string secret masked", slog.Int("token", 123456), "****3456"},
		{"trace level named", slog.Any(slog.LevelKey, LevelTrace), "TRACE"},
		{"info level unchanged", slog.Any(slog.LevelKey, slog.LevelInfo), "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactAttr(nil, tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("RedactAttr(%v) = %q, want %q", tt.attr, got.Value.String(), tt.want)
			}
		})
	}
}
