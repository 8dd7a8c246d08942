// Package doctor diagnoses a smartmcp setup: the configuration, the servers
// file, file modes and registry access.
package doctor

import (
	"slices"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// Severity ranks a check outcome.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = []string{"pass", "info", "warning", "error"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// Problem reports whether s needs the user's attention.
func (s Severity) Problem() bool {
	return s >= SeverityWarning
}

// MarshalText encodes the severity by name, as in `doctor --json`.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText reads a name written by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	i := slices.Index(severityNames, string(text))
	if i < 0 {
		return errors.Newf("unknown severity %q", text)
	}
	*s = Severity(i)
	return nil
}

// CheckResult is what one check found.
type CheckResult struct {
	Name string `json:"name"`

	// Category is config, store, filesystem or registry.
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	Details map[string]any `json:"details,omitempty"`

	// Fixable is set when `smartmcp doctor --fix` can repair the problem.
	Fixable bool   `json:"fixable,omitempty"`
	FixHint string `json:"fix_hint,omitempty"`
}

// Summary counts results per severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Add counts one result.
func (sum *Summary) Add(s Severity) {
	switch s {
	case SeverityPass:
		sum.Passed++
	case SeverityInfo:
		sum.Info++
	case SeverityWarning:
		sum.Warnings++
	case SeverityError:
		sum.Errors++
	}
}
