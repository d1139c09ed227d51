// Package daemon coordinates the long-running spoolcheck process.
//
// It wires configuration, the print-start runner, and session history into a
// single lifecycle with flock-based locking to prevent multiple instances.
// The daemon serves pre-print sessions to the HTTP API and the IPC server,
// keeps the most recent outcome for status output, and prunes history on a
// daily schedule.
//
// Keep orchestration logic here: check evaluation lives in internal/checks
// and printer reactions in internal/prestart.
package daemon
