// Package errors provides error handling conventions for the smartmcp CLI.
//
// It re-exports the constructors of github.com/cockroachdb/errors so every
// package wraps errors the same way, and defines the domain sentinels used
// across the configuration store, the registry client and the agent.
//
// # Sentinel Errors
//
// Callers check for specific conditions with [Is]:
//
//	if errors.Is(err, errors.ErrExtraction) {
//	    // the servers block is missing from the source file
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, network, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. [Classify] maps domain sentinels onto exit codes:
//
//	exitErr := errors.Classify(err)
//	if exitErr.Suggestion != "" {
//	    fmt.Println("Suggestion:", exitErr.Suggestion)
//	}
//	os.Exit(exitErr.Code)
package errors
