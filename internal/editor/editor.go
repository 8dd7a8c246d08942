// Package editor launches the user's preferred text editor.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// Streams are the terminal handles passed to the editor process.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Stdio returns the process's own standard streams.
func Stdio() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Open launches the editor on path and waits for it to exit.
// $EDITOR may carry arguments, as in "code --wait".
func Open(ctx context.Context, path string, s Streams) error {
	fields := strings.Fields(Detect())
	args := append(fields[1:], path)

	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = s.In
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", fields[0])
	}
	return nil
}

// Detect returns the editor command. Fallback chain: $EDITOR, $VISUAL,
// nano, vi.
func Detect() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
