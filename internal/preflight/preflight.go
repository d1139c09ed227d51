package preflight

import (
	"context"

	"spoolcheck/internal/config"
	"spoolcheck/internal/services/moonraker"
	"spoolcheck/internal/services/spoolman"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Service probes make a single attempt each.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Moonraker.MetadataSource == config.MetadataSourceGcode {
		results = append(results, CheckDirectoryReadable("Gcode directory", cfg.Paths.GcodeDir))
	}

	results = append(results, CheckSettings(cfg.CheckSettings()))

	mr := moonraker.NewClient(cfg.Moonraker.URL,
		moonraker.WithTimeout(cfg.MoonrakerTimeout()),
		moonraker.WithAPIKey(cfg.Moonraker.APIKey),
	)
	results = append(results, CheckMoonraker(ctx, mr))

	sm := spoolman.NewClient(cfg.Spoolman.URL,
		spoolman.WithTimeout(cfg.SpoolmanTimeout()),
		spoolman.WithRetryAttempts(0),
	)
	results = append(results, CheckSpoolman(ctx, sm))

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
