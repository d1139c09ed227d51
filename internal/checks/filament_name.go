package checks

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// EvaluateFilamentName compares the spool's filament name with the slicer
// filament profile name. Names match after trimming and case folding.
func EvaluateFilamentName(spool SpoolRecord, job JobMetadata, cfg CheckConfig) CheckResult {
	result := CheckResult{Check: CheckFilamentName, Severity: cfg.FilamentName.Severity}
	if !cfg.FilamentName.Enabled {
		return skipped(result)
	}
	have := strings.TrimSpace(spool.FilamentName)
	want := strings.TrimSpace(job.RequiredFilamentName)
	if have == "" || want == "" {
		return skipped(result)
	}

	fold := cases.Fold()
	if fold.String(have) == fold.String(want) {
		result.Passed = true
		result.Message = fmt.Sprintf("filament name check passed: %q", have)
		return result
	}
	result.Message = fmt.Sprintf("filament name mismatch: spool has %q, job requires %q", have, want)
	return result
}
