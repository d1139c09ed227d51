package checks

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeMaterial folds a material label so "PLA", " pla " and "ＰＬＡ" compare
// equal: NFKC, case folding, and collapsed whitespace.
func NormalizeMaterial(value string) string {
	folded := cases.Fold().String(norm.NFKC.String(value))
	return strings.Join(strings.Fields(folded), " ")
}

// EvaluateMaterial compares the spool material with the job's required
// material after normalization.
func EvaluateMaterial(spool SpoolRecord, job JobMetadata, cfg CheckConfig) CheckResult {
	result := CheckResult{Check: CheckMaterial, Severity: cfg.Material.Severity}
	if !cfg.Material.Enabled {
		return skipped(result)
	}
	have := NormalizeMaterial(spool.Material)
	want := NormalizeMaterial(job.RequiredMaterial)
	if have == "" || want == "" {
		return skipped(result)
	}

	if have == want {
		result.Passed = true
		result.Message = fmt.Sprintf("material check passed: %s is %s", spool.Label(), strings.TrimSpace(spool.Material))
		return result
	}
	result.Message = fmt.Sprintf("material mismatch: %s is %s, job requires %s",
		spool.Label(), strings.TrimSpace(spool.Material), strings.TrimSpace(job.RequiredMaterial))
	return result
}
