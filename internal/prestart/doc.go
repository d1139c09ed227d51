// Package prestart runs the print-start flow around the check engine.
//
// A Runner resolves which file is about to print, gathers the slicer
// metadata for it, runs one checks.Handler session, and reacts on the
// printer: console messages, pausing a blocked print, and recording the
// session in history. Only the check engine decides allow, warn, or block;
// the runner never turns a host-side problem into a block by itself.
package prestart
