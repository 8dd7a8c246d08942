// Package fileutil reads and writes the files smartmcp manages: the servers
// file, structured server documents, backup manifests and config.yaml.
//
// Writers fill a temp file next to the target and rename it into place, so
// a reader of the servers file never sees a half-written block.
package fileutil

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// DefaultFilePerm is the mode of files created by AtomicReplaceFile and
// the encoders.
const DefaultFilePerm os.FileMode = 0o644

// AtomicWriteFile replaces path with data and sets perm. The parent
// directory must exist.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return writeAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// AtomicReplaceFile replaces path with data, keeping the mode of the
// existing file.
func AtomicReplaceFile(path string, data []byte) error {
	return AtomicWriteFile(path, data, currentPerm(path))
}

// AtomicWriteJSON writes v as two-space indented JSON ending in a newline.
func AtomicWriteJSON(path string, v any) error {
	return writeEncoded(path, "JSON", func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// AtomicWriteYAML writes v as YAML.
func AtomicWriteYAML(path string, v any) error {
	return writeEncoded(path, "YAML", func(w io.Writer) (err error) {
		// yaml.v3 panics on values it cannot represent, such as funcs
		defer func() {
			if r := recover(); r != nil {
				err = errors.Newf("%v", r)
			}
		}()
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	})
}

// AtomicWriteTOML writes v as TOML.
func AtomicWriteTOML(path string, v any) error {
	return writeEncoded(path, "TOML", func(w io.Writer) error {
		return toml.NewEncoder(w).Encode(v)
	})
}

func writeEncoded(path, format string, encode func(io.Writer) error) error {
	return writeAtomic(path, currentPerm(path), func(w io.Writer) error {
		return errors.Wrapf(encode(w), "encoding %s", format)
	})
}

func currentPerm(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return DefaultFilePerm
}

// writeAtomic runs fill against a temp file in path's directory, then
// renames it over path. On any failure the temp file is removed and path
// is left as it was.
func writeAtomic(path string, perm os.FileMode, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	steps := []struct {
		what string
		run  func() error
	}{
		{"writing temp file", func() error { return fill(tmp) }},
		{"setting file permissions", func() error { return tmp.Chmod(perm) }},
		{"syncing temp file", tmp.Sync},
		{"closing temp file", tmp.Close},
		{"renaming temp file", func() error { return os.Rename(tmp.Name(), path) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return errors.Wrap(err, s.what)
		}
	}
	committed = true
	return nil
}
