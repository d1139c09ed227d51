// Package gcode extracts slicer metadata from gcode comment blocks.
//
// Slicers write their settings as "; key = value" (or "; key : value")
// comments in a header block near the start of the file and a config block at
// the end. Parse reads only those two windows, detects which slicer produced
// the file, and returns the filament requirements the check engine needs.
// Multi-extruder values are kept as lists; Job selects tool 0.
package gcode
