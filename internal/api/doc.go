// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates print-start results, history rows, and readiness
// checks into transport-friendly DTOs so the CLI and printer macros never
// couple to internal types.
//
// # Key Types
//
// Session: one pre-print session with its decision, ordered messages, and
// per-check results.
//
// DaemonStatus: running state, paths, the last session, and readiness.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Decisions and severities are exposed as
// lowercase strings. Timestamps use RFC3339 with milliseconds.
package api
