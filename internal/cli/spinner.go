package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/thoreinstein/smartmcp/internal/logging"
)

// StartSpinner shows msg with a spinner on w when w is a terminal.
// The returned function stops it and is safe to call on any writer.
func StartSpinner(w io.Writer, msg string) func() {
	if !logging.IsTTY(w) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}
