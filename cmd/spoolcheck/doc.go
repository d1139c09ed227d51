// Package main hosts the spoolcheck CLI entrypoint and command graph.
//
// Commands talk to the daemon over its IPC socket. `check`, `history`, and
// `status` fall back to in-process work when no daemon answers so the tool
// stays usable from a shell on the printer host.
package main
