// Package checks evaluates whether the loaded spool can run a print job.
//
// A session resolves the [checks] configuration once, fetches the active
// spool through a session-scoped SpoolCache, runs the weight, material, and
// filament-name checks in that fixed order, and folds the results into a
// single allow/warn/block decision. Every value here lives for one session
// only; nothing is shared between invocations.
//
// The package never talks to Moonraker or Spoolman directly. Callers supply
// an Inventory implementation and already-parsed JobMetadata.
package checks
