package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not understood.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidValue indicates a field holds a value outside its allowed set.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// MaxDiscoverLimit is the largest page size accepted by the registry search.
const MaxDiscoverLimit = 20

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	if !slices.Contains([]string{BackendSource, BackendYAML, BackendTOML}, cfg.Store.Backend) {
		errs = append(errs, &FieldError{Field: "store.backend", Value: cfg.Store.Backend, Err: ErrInvalidValue})
	}

	if !slices.Contains([]string{DuplicatesAppend, DuplicatesReject, DuplicatesOverwrite}, cfg.Store.Duplicates) {
		errs = append(errs, &FieldError{Field: "store.duplicates", Value: cfg.Store.Duplicates, Err: ErrInvalidValue})
	}

	if err := validatePath(cfg.SourceFile); err != nil || cfg.SourceFile == "" {
		errs = append(errs, &FieldError{Field: "source_file", Value: cfg.SourceFile, Err: ErrInvalidPath})
	}

	if cfg.Store.File != "" {
		if err := validatePath(cfg.Store.File); err != nil {
			errs = append(errs, &FieldError{Field: "store.file", Value: cfg.Store.File, Err: err})
		}
	}

	if u, err := url.Parse(cfg.Registry.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, &FieldError{Field: "registry.base_url", Value: cfg.Registry.BaseURL, Err: ErrInvalidValue})
	}

	if cfg.Registry.Timeout <= 0 {
		errs = append(errs, &FieldError{Field: "registry.timeout", Value: cfg.Registry.Timeout.String(), Err: ErrInvalidValue})
	}

	if cfg.Registry.DefaultLimit < 1 || cfg.Registry.DefaultLimit > MaxDiscoverLimit {
		errs = append(errs, &FieldError{Field: "registry.default_limit", Value: fmt.Sprint(cfg.Registry.DefaultLimit), Err: ErrInvalidValue})
	}

	if cfg.Backup.Retention < 1 {
		errs = append(errs, &FieldError{Field: "backup.retention", Value: fmt.Sprint(cfg.Backup.Retention), Err: ErrInvalidValue})
	}

	if cfg.Server.Name == "" {
		errs = append(errs, &FieldError{Field: "server.name", Err: errors.ErrMissingName})
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError reports an invalid value for a specific configuration key.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
