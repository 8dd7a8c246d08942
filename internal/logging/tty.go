package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is a terminal. Only writers exposing Fd, such as
// *os.File, can be terminals.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI colors should be written to w.
//
// NO_COLOR (https://no-color.org) always disables color. FORCE_COLOR enables
// it for pipes, which is how `smartmcp serve` logs are kept readable under
// process supervisors. Otherwise TERM=dumb disables color and w must be a
// terminal.
func SupportsColor(w io.Writer) bool {
	return colorEnabled(os.LookupEnv, IsTTY(w))
}

func colorEnabled(lookup func(string) (string, bool), tty bool) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if v, ok := lookup("FORCE_COLOR"); ok && v != "" && v != "0" {
		return true
	}
	if v, _ := lookup("TERM"); v == "dumb" {
		return false
	}
	return tty
}
