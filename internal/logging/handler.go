package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/thoreinstein/smartmcp/internal/redact"
)

// Handler writes one line per record for a terminal:
//
//	3:04PM INFO  mcp server added key=geeknews backend=source
//
// Group names prefix attribute keys ("registry.status=401"). Attributes
// pass through opts.ReplaceAttr, which defaults to RedactAttr.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	pal    palette
	groups []string
	pre    []byte
}

// palette holds the colors in use; every field is nil when color is off.
type palette struct {
	time, key          *color.Color
	trace, debug, info *color.Color
	warn, err          *color.Color
}

// newPalette enables each color explicitly, since fatih/color only checks
// whether the process stdout is a terminal.
func newPalette() palette {
	p := palette{
		time:  color.New(color.FgHiBlack),
		key:   color.New(color.FgCyan),
		trace: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.time, p.key, p.trace, p.debug, p.info, p.warn, p.err} {
		c.EnableColor()
	}
	return p
}

func (p palette) level(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

func paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

// NewHandler returns a text handler writing to out. Colors are used when
// SupportsColor(out) holds.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{out: out, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.ReplaceAttr == nil {
		h.opts.ReplaceAttr = RedactAttr
	}
	if SupportsColor(out) {
		h.pal = newPalette()
	}
	return h
}

// Enabled reports whether level meets the configured minimum, Info by default.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r into a single line and writes it with one Write call.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	if !r.Time.IsZero() {
		buf = append(buf, paint(h.pal.time, r.Time.Format(time.Kitchen))...)
		buf = append(buf, ' ')
	}
	buf = append(buf, paint(h.pal.level(r.Level), fmt.Sprintf("%-5s", LevelName(r.Level)))...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)
	buf = append(buf, h.pre...)
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.groups, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

func (h *Handler) appendAttr(buf []byte, groups []string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			groups = append(slices.Clip(groups), a.Key)
		}
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, groups, ga)
		}
		return buf
	}
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}
	if a.Equal(slog.Attr{}) {
		return buf
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	buf = append(buf, ' ')
	buf = append(buf, paint(h.pal.key, key)...)
	buf = append(buf, '=')
	return append(buf, formatValue(a.Value)...)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " =\"\t\n") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		return v.String()
	}
}

// WithAttrs returns a handler that writes attrs on every record. They are
// formatted once, here.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.pre = slices.Clip(h.pre)
	for _, a := range attrs {
		h2.pre = h2.appendAttr(h2.pre, h.groups, a)
	}
	return &h2
}

// WithGroup returns a handler that prefixes later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(slices.Clip(h.groups), name)
	return &h2
}

// LevelName is the label used for l. Levels below Debug print as TRACE.
func LevelName(l slog.Level) string {
	if l < slog.LevelDebug {
		return "TRACE"
	}
	return l.String()
}

// RedactAttr is the slog ReplaceAttr hook shared by every sink. It masks
// values whose key names a credential or whose text looks like a token, and
// labels the trace level.
func RedactAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if l, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(a.Key, LevelName(l))
		}
		return a
	}
	switch {
	case a.Value.Kind() == slog.KindString:
		a.Value = slog.StringValue(redact.Value(a.Key, a.Value.String()))
	case redact.ShouldMask(a.Key):
		a.Value = slog.StringValue(redact.MaskValue(a.Value.String()))
	}
	return a
}
