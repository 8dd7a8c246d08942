package cli

import (
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

// PickServer lets the user fuzzy-find one of servers on the terminal.
// It returns nil without error when the user aborts.
func PickServer(servers []registry.Server) (*registry.Server, error) {
	if len(servers) == 0 {
		return nil, nil
	}

	idx, err := fuzzyfinder.Find(
		servers,
		func(i int) string {
			return fmt.Sprintf("%s (%s)", servers[i].Name, servers[i].QualifiedName)
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return ServerPreview(servers[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "interactive selection failed")
	}
	return &servers[idx], nil
}

// ServerPreview describes s for the finder's preview pane.
func ServerPreview(s registry.Server) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", s.Name)
	fmt.Fprintf(&b, "Server ID: %s\n", s.QualifiedName)
	fmt.Fprintf(&b, "Uses: %s\n", intOrDash(s.UseCount))
	fmt.Fprintf(&b, "Remote: %s\n", boolOrDash(s.Remote))
	if s.Homepage != nil && *s.Homepage != "" {
		fmt.Fprintf(&b, "Homepage: %s\n", *s.Homepage)
	}
	fmt.Fprintf(&b, "\nDescription:\n%s", stringOrFallback(s.Description, "(none)"))
	return b.String()
}

func stringOrFallback(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
