// Package moonraker is a client for the Moonraker printer host API.
//
// It covers the calls the print-start flow needs: the active Spoolman spool
// ID, the current print filename, slicer file metadata, gcode script
// execution for console feedback, pausing a print, and server info for
// readiness checks. Every response is unwrapped from Moonraker's
// {"result": ...} envelope.
package moonraker
