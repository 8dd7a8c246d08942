package mcpconfig

import (
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/pkg/fileutil"
)

// TextStore reads and rewrites a configuration file as a whole.
type TextStore struct {
	path string
}

// NewTextStore returns a TextStore for the file at path.
func NewTextStore(path string) *TextStore {
	return &TextStore{path: path}
}

// Path returns the file the store operates on.
func (s *TextStore) Path() string {
	return s.path
}

// Read returns the full file content. Failures match ErrIO.
func (s *TextStore) Read() (string, error) {
	data, err := fileutil.ReadFileWithLimit(s.path, fileutil.MaxFileSize)
	if err != nil {
		return "", errors.Wrapf(errors.Mark(err, errors.ErrIO), "reading %s", s.path)
	}
	return string(data), nil
}

// Write replaces the file content atomically, keeping its permissions.
// Failures match ErrIO and leave the previous content in place.
func (s *TextStore) Write(content string) error {
	if err := fileutil.AtomicReplaceFile(s.path, []byte(content)); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrIO), "writing %s", s.path)
	}
	return nil
}
