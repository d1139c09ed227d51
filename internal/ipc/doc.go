// Package ipc exposes the daemon over JSON-RPC on a Unix socket and ships the
// matching client used by the CLI.
//
// The server owns the socket file and forwards calls to the daemon. Request
// and response types alias the HTTP API DTOs so both surfaces report
// sessions identically.
package ipc
