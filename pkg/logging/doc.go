// Package logging provides a resilient multi-backend structured
// logger.
//
// # Overview
//
// A Logger owns an ordered chain of backends, tried per record in
// priority order until one succeeds:
//   - console: colorized, human-oriented (charmbracelet/log)
//   - file: JSON or delimited-text records to a configured file
//   - direct_file: raw append-only JSON lines, minimal dependencies
//   - stderr: plain text to the error stream, always last
//
// A backend that fails once is permanently evicted for the lifetime of
// the Logger. If every backend fails, a best-effort emergency line is
// written to the error stream. A logging call never returns an error
// and never panics.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    LogFile:        "/var/log/poincare/run.log",
//	    ConsoleFormat:  "console",
//	    FileFormat:     "json",
//	    EnableSecurity: true,
//	})
//
//	logger.Info("Auth attempt",
//	    "username", "alice",
//	    "password", "secret123", // redacted before any backend sees it
//	)
//
//	// Scoped context: an immutable child logger, safe to share.
//	reqLogger := logger.With("request_id", "req-123")
//	reqLogger.Info("Processing request")
//
// # Security
//
// When EnableSecurity is set, every record passes through the
// sanitizer before reaching a backend: newline, carriage-return, and
// tab characters are stripped from the message (log-injection
// prevention), oversized messages are truncated, and values of keys
// containing a sensitive substring (password, token, secret, ...) are
// replaced with "***REDACTED***", recursively for nested maps.
package logging
