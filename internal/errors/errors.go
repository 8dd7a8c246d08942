package errors

import (
	stderrors "errors"
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrMissingName indicates a required name field is missing.
	ErrMissingName = crdb.New("name is required")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = crdb.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrExtraction indicates the servers block could not be located in the
	// configuration file.
	ErrExtraction = crdb.New("servers configuration block not found")

	// ErrIO indicates an underlying read or write of the configuration file failed.
	ErrIO = crdb.New("configuration file I/O failed")

	// ErrSchema indicates a tool input or output did not match its declared shape.
	ErrSchema = crdb.New("schema violation")

	// ErrDuplicateKey indicates an entry with the same key is already configured.
	ErrDuplicateKey = crdb.New("server key already configured")

	// ErrLocked indicates another live process holds the configuration write lock.
	ErrLocked = crdb.New("configuration is locked by another process")
)

// New returns an error with the given message and a stack trace.
func New(msg string) error {
	return crdb.NewWithDepth(1, msg)
}

// Newf returns a formatted error with a stack trace.
func Newf(format string, args ...any) error {
	return crdb.NewWithDepthf(1, format, args...)
}

// Wrap annotates err with msg. It returns nil if err is nil.
func Wrap(err error, msg string) error {
	return crdb.WrapWithDepth(1, err, msg)
}

// Wrapf annotates err with a formatted message. It returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return crdb.WrapWithDepthf(1, err, format, args...)
}

// Mark returns err marked so that errors.Is(result, reference) is true.
func Mark(err, reference error) error {
	return crdb.Mark(err, reference)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return crdb.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return crdb.As(err, target)
}

// Join returns an error wrapping all non-nil errs, or nil if there are none.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: smartmcp config list",
	}
}

// Classify maps a domain error onto an ExitError with a suggestion.
// Errors that already carry an exit code are returned unchanged.
func Classify(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr
	}
	switch {
	case Is(err, ErrExtraction):
		return NewUserError(err, "Check that the source file still declares 'const servers: Record<string, any> = { ... };'")
	case Is(err, ErrDuplicateKey):
		return NewUserError(err, "Run: smartmcp mcp list, or pass --force")
	case Is(err, ErrSchema), Is(err, ErrMissingName):
		return NewUserError(err, "")
	case Is(err, ErrLocked):
		return NewSystemError(err, "Wait for the other process to finish or remove the stale lock file")
	case Is(err, ErrIO):
		return NewSystemError(err, "Check file permissions and the configured project_root")
	default:
		return NewExitError(err, ExitSystem)
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
