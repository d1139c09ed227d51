// Package logs tails the daemon log file for `spoolcheck logs`.
//
// Offsets are byte positions so a follower can resume exactly where the
// previous call stopped. A negative offset means "the last N lines".
package logs
