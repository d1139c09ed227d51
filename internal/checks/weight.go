package checks

import (
	"fmt"
	"math"
)

// EvaluateWeight passes when the spool holds at least the job's filament
// weight plus the configured margin. The boundary is inclusive.
func EvaluateWeight(spool SpoolRecord, job JobMetadata, cfg CheckConfig) CheckResult {
	result := CheckResult{Check: CheckWeight, Severity: cfg.Weight.Severity}
	if !cfg.Weight.Enabled || job.RequiredWeight == nil {
		return skipped(result)
	}

	required := *job.RequiredWeight
	if !validGrams(required) {
		return uncomputable(CheckWeight, fmt.Sprintf("weight check failed: job reports an invalid filament weight (%v g)", required))
	}
	if spool.RemainingWeight == nil {
		return uncomputable(CheckWeight, fmt.Sprintf("weight check failed: %s has no remaining weight recorded", spool.Label()))
	}
	remaining := *spool.RemainingWeight
	if !validGrams(remaining) {
		return uncomputable(CheckWeight, fmt.Sprintf("weight check failed: %s reports an invalid remaining weight (%v g)", spool.Label(), remaining))
	}

	needed := required + cfg.WeightMargin
	if remaining >= needed {
		result.Passed = true
		result.Message = fmt.Sprintf("weight check passed: %s has %.1f g, job needs %.1f g + %.1f g margin",
			spool.Label(), remaining, required, cfg.WeightMargin)
		return result
	}
	result.Message = fmt.Sprintf("insufficient filament: %s has %.1f g, job needs %.1f g + %.1f g margin (short by %.1f g)",
		spool.Label(), remaining, required, cfg.WeightMargin, needed-remaining)
	return result
}

func validGrams(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value >= 0
}

func skipped(result CheckResult) CheckResult {
	result.Passed = true
	result.Skipped = true
	result.Message = ""
	return result
}

// uncomputable reports a check that could not be evaluated. It always fails at
// error severity so the session cannot silently pass.
func uncomputable(id CheckID, message string) CheckResult {
	return CheckResult{Check: id, Passed: false, Severity: SeverityError, Message: message}
}
