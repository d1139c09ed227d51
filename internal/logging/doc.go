// Package logging assembles structured slog loggers and formatting helpers used
// across spoolcheck.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so the check engine and the
// print-start adapter tag every line with the session ID and job filename.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
