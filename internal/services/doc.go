// Package services defines shared utilities consumed by the check engine, the
// print-start adapter, and the external clients.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, job filenames, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failures from
//     Moonraker, Spoolman, and the local store classifiable with errors.Is.
package services
