package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/smartmcp/internal/config"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/logging"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
	"github.com/thoreinstein/smartmcp/internal/paths"
	"github.com/thoreinstein/smartmcp/pkg/fileutil"
)

// DocumentVersion is the schema version of structured store files.
const DocumentVersion = 1

// Document is the on-disk shape of a structured store file. Servers is a
// list so repeated keys stay representable under the append policy.
type Document struct {
	Version int               `yaml:"version" toml:"version"`
	Servers []mcpconfig.Entry `yaml:"servers" toml:"servers"`
}

type codec struct {
	name      string
	unmarshal func([]byte, any) error
	write     func(string, any) error
}

var (
	yamlCodec = codec{name: config.BackendYAML, unmarshal: yaml.Unmarshal, write: fileutil.AtomicWriteYAML}
	tomlCodec = codec{name: config.BackendTOML, unmarshal: toml.Unmarshal, write: fileutil.AtomicWriteTOML}
)

// StructuredStore keeps entries in a YAML or TOML side-file.
type StructuredStore struct {
	*writer
	codec codec
}

// Backend returns "yaml" or "toml".
func (s *StructuredStore) Backend() string {
	return s.codec.name
}

// List returns the stored entries. A missing file holds no entries.
func (s *StructuredStore) List(_ context.Context) ([]mcpconfig.Entry, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Servers, nil
}

// Add appends e, or replaces the existing entry under the overwrite policy.
func (s *StructuredStore) Add(ctx context.Context, e mcpconfig.Entry) (AddResult, error) {
	var result AddResult
	err := s.mutate(ctx, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}

		idx, err := s.resolve(doc.Servers, e.Key)
		if err != nil {
			return err
		}
		if idx >= 0 {
			doc.Servers[idx] = e
			result.Replaced = true
		} else {
			doc.Servers = append(doc.Servers, e)
		}

		if err := s.snapshot(); err != nil {
			return err
		}
		if err := paths.EnsureDir(filepath.Dir(s.path), 0o755); err != nil {
			return errors.Wrapf(errors.Mark(err, errors.ErrIO), "creating %s", filepath.Dir(s.path))
		}
		if err := s.codec.write(s.path, doc); err != nil {
			return errors.Wrapf(errors.Mark(err, errors.ErrIO), "writing %s", s.path)
		}
		logging.FromContext(ctx).Debug("server entry written",
			slog.String(logging.ServerKey, e.Key),
			slog.String("path", s.path),
			slog.String(logging.BackendKey, s.codec.name),
			slog.Bool("replaced", result.Replaced),
		)
		return nil
	})
	if err != nil {
		return AddResult{}, err
	}
	result.Entry = e
	return result, nil
}

func (s *StructuredStore) load() (*Document, error) {
	data, err := fileutil.ReadFileWithLimit(s.path, fileutil.MaxFileSize)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Document{Version: DocumentVersion}, nil
		}
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrIO), "reading %s", s.path)
	}

	var doc Document
	if err := s.codec.unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrExtraction), "parsing %s", s.path)
	}
	if doc.Version == 0 {
		doc.Version = DocumentVersion
	}
	if doc.Version != DocumentVersion {
		return nil, errors.Wrapf(errors.ErrSchema, "%s: unsupported version %d", s.path, doc.Version)
	}

	for i := range doc.Servers {
		e := &doc.Servers[i]
		if e.Key == "" {
			return nil, errors.Wrapf(errors.ErrSchema, "%s: server %d has no name", s.path, i)
		}
		if e.Command == "" {
			e.Command = "npx"
		}
		e.Type, e.ServerID = mcpconfig.Classify(strings.Join(e.Args, " "), e.Args)
	}
	return &doc, nil
}
