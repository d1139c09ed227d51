package checks_test

import (
	"math"
	"strings"
	"testing"

	"spoolcheck/internal/checks"
)

func grams(v float64) *float64 { return &v }

func spool(material, name string, remaining *float64) checks.SpoolRecord {
	return checks.SpoolRecord{ID: 7, Material: material, FilamentName: name, RemainingWeight: remaining}
}

func allEnabled() checks.CheckConfig {
	cfg := checks.DefaultConfig()
	cfg.FilamentName.Enabled = true
	return cfg
}

func TestEvaluateWeightBoundaryIsInclusive(t *testing.T) {
	cfg := allEnabled()
	cfg.WeightMargin = 5
	job := checks.JobMetadata{RequiredWeight: grams(120)}

	cases := []struct {
		remaining float64
		passed    bool
	}{
		{125, true},
		{125.0001, true},
		{500, true},
		{124.9, false},
		{0, false},
	}
	for _, tc := range cases {
		result := checks.EvaluateWeight(spool("PLA", "", grams(tc.remaining)), job, cfg)
		if result.Passed != tc.passed {
			t.Fatalf("remaining=%v: expected passed=%v, got %+v", tc.remaining, tc.passed, result)
		}
		if result.Skipped {
			t.Fatalf("remaining=%v: unexpected skip", tc.remaining)
		}
		if result.Severity != checks.SeverityError {
			t.Fatalf("expected configured severity, got %s", result.Severity)
		}
		if result.Message == "" {
			t.Fatalf("remaining=%v: expected message", tc.remaining)
		}
	}
}

func TestEvaluateWeightFailureNamesBothSides(t *testing.T) {
	cfg := allEnabled()
	cfg.WeightMargin = 5
	result := checks.EvaluateWeight(spool("PLA", "Basic", grams(80)), checks.JobMetadata{RequiredWeight: grams(120.5)}, cfg)
	if result.Passed {
		t.Fatal("expected failure")
	}
	for _, fragment := range []string{"80.0 g", "120.5 g", "5.0 g margin", "short by 45.5 g", "spool 7"} {
		if !strings.Contains(result.Message, fragment) {
			t.Fatalf("expected %q in %q", fragment, result.Message)
		}
	}
}

func TestEvaluateWeightSkipsWithoutRequirement(t *testing.T) {
	result := checks.EvaluateWeight(spool("PLA", "", nil), checks.JobMetadata{}, allEnabled())
	if !result.Passed || !result.Skipped || result.Message != "" {
		t.Fatalf("expected silent skip, got %+v", result)
	}
}

func TestEvaluateWeightUncomputableInputsFailAtError(t *testing.T) {
	cfg := allEnabled()
	cfg.Weight.Severity = checks.SeverityInfo

	cases := []struct {
		name      string
		remaining *float64
		required  float64
	}{
		{"unknown spool weight", nil, 10},
		{"nan remaining", grams(math.NaN()), 10},
		{"negative remaining", grams(-3), 10},
		{"negative required", grams(100), -1},
		{"infinite required", grams(100), math.Inf(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := checks.EvaluateWeight(spool("PLA", "", tc.remaining), checks.JobMetadata{RequiredWeight: grams(tc.required)}, cfg)
			if result.Passed || result.Severity != checks.SeverityError || result.Message == "" {
				t.Fatalf("expected error-severity failure, got %+v", result)
			}
		})
	}
}

func TestEvaluateMaterialNormalizes(t *testing.T) {
	cfg := allEnabled()
	for _, pair := range [][2]string{
		{"PLA", "pla"},
		{" PETG ", "PETG"},
		{"PLA  Silk", "pla silk"},
		{"ＰＬＡ", "PLA"},
	} {
		result := checks.EvaluateMaterial(spool(pair[0], "", nil), checks.JobMetadata{RequiredMaterial: pair[1]}, cfg)
		if !result.Passed || result.Skipped {
			t.Fatalf("expected %q to match %q, got %+v", pair[0], pair[1], result)
		}
	}
}

func TestEvaluateMaterialMismatch(t *testing.T) {
	result := checks.EvaluateMaterial(spool("PETG", "", nil), checks.JobMetadata{RequiredMaterial: "PLA"}, allEnabled())
	if result.Passed {
		t.Fatal("expected mismatch")
	}
	if result.Severity != checks.SeverityWarning {
		t.Fatalf("expected default warning severity, got %s", result.Severity)
	}
	if !strings.Contains(result.Message, "PETG") || !strings.Contains(result.Message, "PLA") {
		t.Fatalf("message should name both materials: %q", result.Message)
	}
}

func TestEvaluateMaterialSkipsWhenRequirementAbsent(t *testing.T) {
	for _, severity := range []checks.Severity{checks.SeverityError, checks.SeverityWarning, checks.SeverityInfo} {
		cfg := allEnabled()
		cfg.Material.Severity = severity
		result := checks.EvaluateMaterial(spool("PETG", "", nil), checks.JobMetadata{}, cfg)
		if !result.Passed || !result.Skipped || result.Message != "" {
			t.Fatalf("severity %s: expected silent pass, got %+v", severity, result)
		}
	}
	result := checks.EvaluateMaterial(spool("", "", nil), checks.JobMetadata{RequiredMaterial: "PLA"}, allEnabled())
	if !result.Skipped {
		t.Fatalf("expected skip when spool material unknown, got %+v", result)
	}
}

func TestEvaluateFilamentName(t *testing.T) {
	cfg := allEnabled()
	match := checks.EvaluateFilamentName(spool("PLA", "Prusament Galaxy Black", nil),
		checks.JobMetadata{RequiredFilamentName: " prusament galaxy black"}, cfg)
	if !match.Passed || match.Skipped {
		t.Fatalf("expected case-insensitive match, got %+v", match)
	}

	mismatch := checks.EvaluateFilamentName(spool("PLA", "Generic PLA", nil),
		checks.JobMetadata{RequiredFilamentName: "Prusament PLA"}, cfg)
	if mismatch.Passed || mismatch.Severity != checks.SeverityInfo {
		t.Fatalf("expected info mismatch, got %+v", mismatch)
	}
	if !strings.Contains(mismatch.Message, "Generic PLA") || !strings.Contains(mismatch.Message, "Prusament PLA") {
		t.Fatalf("message should name both filaments: %q", mismatch.Message)
	}

	cfg.FilamentName.Enabled = false
	disabled := checks.EvaluateFilamentName(spool("PLA", "Generic PLA", nil),
		checks.JobMetadata{RequiredFilamentName: "Prusament PLA"}, cfg)
	if !disabled.Skipped {
		t.Fatalf("expected disabled check to skip, got %+v", disabled)
	}
}
