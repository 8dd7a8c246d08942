// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/thoreinstein/smartmcp/internal/backup"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

// Sentinel errors for interactive selection.
var (
	ErrNoChoices          = errors.New("nothing to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Selector handles numbered selection prompts.
type Selector struct {
	reader io.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return &Selector{
		reader: os.Stdin,
		writer: os.Stdout,
	}
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: r,
		writer: w,
	}
}

// SelectServer prompts the user to choose one of the registry results for query.
//
// Returns:
//   - ErrNoChoices if the list is empty
//   - The server if only one exists (auto-selects without prompting)
//   - The selected server based on user input
//   - ErrInvalidSelection if the selection is out of range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (s *Selector) SelectServer(query string, servers []registry.Server) (*registry.Server, error) {
	labels := make([]string, len(servers))
	for i, srv := range servers {
		labels[i] = fmt.Sprintf("%s (%s)", srv.Name, srv.QualifiedName)
	}
	idx, err := s.choose(fmt.Sprintf("Multiple servers found for %q:", query), labels)
	if err != nil {
		return nil, err
	}
	return &servers[idx], nil
}

// SelectBackup prompts the user to choose a backup to restore. Unlike
// SelectServer it asks even when only one backup exists.
func (s *Selector) SelectBackup(manifests []backup.Manifest) (*backup.Manifest, error) {
	if len(manifests) == 0 {
		return nil, ErrNoChoices
	}
	labels := make([]string, len(manifests))
	for i, m := range manifests {
		labels[i] = backupLabel(m)
	}
	idx, err := s.ask("Available backups:", labels)
	if err != nil {
		return nil, err
	}
	return &manifests[idx], nil
}

func backupLabel(m backup.Manifest) string {
	return fmt.Sprintf("%s  %s  %s", m.ID, m.CreatedAt.Local().Format(time.DateTime), m.Reason)
}

func (s *Selector) choose(title string, labels []string) (int, error) {
	if len(labels) == 0 {
		return 0, ErrNoChoices
	}

	// Auto-select if only one choice
	if len(labels) == 1 {
		return 0, nil
	}
	return s.ask(title, labels)
}

func (s *Selector) ask(title string, labels []string) (int, error) {
	fmt.Fprintln(s.writer, title)
	for i, l := range labels {
		fmt.Fprintf(s.writer, "  [%d] %s\n", i+1, l)
	}
	fmt.Fprintf(s.writer, "Select [1]: ")

	reader := bufio.NewReader(s.reader)
	input, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrSelectionCancelled
		}
		return 0, errors.Wrap(err, "reading selection")
	}

	input = strings.TrimSpace(input)

	// Default to first option if empty
	if input == "" {
		return 0, nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}

	// Validate range (1-indexed)
	if selection < 1 || selection > len(labels) {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(labels))
	}

	return selection - 1, nil
}
