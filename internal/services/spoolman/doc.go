// Package spoolman is a small client for the Spoolman filament inventory API.
//
// Only the read paths spoolcheck needs are implemented: fetching a spool by ID
// and the health probe. Transient failures are retried with exponential
// backoff; a missing spool is reported immediately as services.ErrNotFound.
package spoolman
