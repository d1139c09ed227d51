// Package config loads, normalizes, and validates spoolcheck's TOML
// configuration.
//
// Load searches the standard locations, applies defaults and environment
// overrides, expands paths, and validates the result. The [checks] table is
// kept as a raw map; the check engine resolves it per session.
package config
