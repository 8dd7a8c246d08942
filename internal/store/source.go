package store

import (
	"context"
	"log/slog"

	"github.com/thoreinstein/smartmcp/internal/config"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
)

// SourceStore keeps entries in the servers block of a TypeScript file.
type SourceStore struct {
	*writer
	text *mcpconfig.TextStore
}

// Backend returns "source".
func (s *SourceStore) Backend() string {
	return config.BackendSource
}

// List returns the npx-shaped entries of the servers block.
// It fails with ErrExtraction when the block is missing.
func (s *SourceStore) List(_ context.Context) ([]mcpconfig.Entry, error) {
	doc, err := s.text.Read()
	if err != nil {
		return nil, err
	}
	block, err := mcpconfig.ExtractBlock(doc)
	if err != nil {
		return nil, err
	}
	return block.Entries(), nil
}

// Add appends e to the servers block, or rewrites the arguments of the
// existing entry under the overwrite policy. The description is not stored.
func (s *SourceStore) Add(ctx context.Context, e mcpconfig.Entry) (AddResult, error) {
	var result AddResult
	err := s.mutate(ctx, func() error {
		doc, err := s.text.Read()
		if err != nil {
			return err
		}
		block, err := mcpconfig.ExtractBlock(doc)
		if err != nil {
			return err
		}

		entries := block.Entries()
		idx, err := s.resolve(entries, e.Key)
		if err != nil {
			return err
		}

		var updated string
		if idx >= 0 {
			updated, err = mcpconfig.ReplaceArgs(doc, entries[idx], e.Args)
			result.Replaced = true
		} else {
			var text string
			text, err = mcpconfig.RenderEntry(e)
			if err == nil {
				updated, err = mcpconfig.AppendEntry(doc, text)
			}
		}
		if err != nil {
			return err
		}

		if err := s.snapshot(); err != nil {
			return err
		}
		if err := s.text.Write(updated); err != nil {
			return err
		}
		logging.FromContext(ctx).Debug("server entry written",
			slog.String(logging.ServerKey, e.Key),
			slog.String("path", s.path),
			slog.Bool("replaced", result.Replaced),
		)
		return nil
	})
	if err != nil {
		return AddResult{}, err
	}
	result.Entry = e
	result.Entry.Description = ""
	return result, nil
}
