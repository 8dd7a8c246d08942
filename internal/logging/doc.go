// Package logging configures slog for the smartmcp CLI and server.
//
// Two sinks exist: a colorized one-line [Handler] for terminals and the
// standard JSON handler for --log-file. Both run attributes through
// [RedactAttr], which masks credentials such as SMITHERY_API_KEY and bearer
// headers while leaving server keys readable.
//
//	logger := logging.New(logging.Config{
//		Level:     slog.LevelInfo,
//		Format:    logging.FormatJSON,
//		Component: "registry",
//	})
//
// Loggers travel in contexts via [NewContext] and [FromContext]. Tests use
// [ForTest]; quiet paths use [NewDiscard].
package logging
