package checks_test

import (
	"errors"
	"math"
	"testing"

	"spoolcheck/internal/checks"
)

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := checks.ResolveConfig(nil)
	if err != nil {
		t.Fatalf("ResolveConfig returned error: %v", err)
	}
	if !cfg.Weight.Enabled || !cfg.Material.Enabled || cfg.FilamentName.Enabled {
		t.Fatalf("unexpected enabled flags: %+v", cfg)
	}
	if cfg.WeightMargin != 0 {
		t.Fatalf("expected zero margin, got %v", cfg.WeightMargin)
	}
	if cfg.Weight.Severity != checks.SeverityError ||
		cfg.Material.Severity != checks.SeverityWarning ||
		cfg.FilamentName.Severity != checks.SeverityInfo {
		t.Fatalf("unexpected default severities: %+v", cfg)
	}
}

func TestResolveConfigAcceptsNativeAndIniValues(t *testing.T) {
	cfg, err := checks.ResolveConfig(map[string]any{
		"enable_weight_check":             "no",
		"Enable_Filament_Name_Check":      true,
		"enable_material_check":           int64(1),
		"weight_margin_grams":             "5.0",
		"material_mismatch_severity":      "ERROR",
		"filament_name_mismatch_severity": " warning ",
		"some_future_option":              []string{"ignored"},
	})
	if err != nil {
		t.Fatalf("ResolveConfig returned error: %v", err)
	}
	if cfg.Weight.Enabled {
		t.Fatal("expected weight check disabled by ini string")
	}
	if !cfg.FilamentName.Enabled || !cfg.Material.Enabled {
		t.Fatalf("expected material and filament name enabled: %+v", cfg)
	}
	if cfg.WeightMargin != 5 {
		t.Fatalf("expected margin 5, got %v", cfg.WeightMargin)
	}
	if cfg.Material.Severity != checks.SeverityError || cfg.FilamentName.Severity != checks.SeverityWarning {
		t.Fatalf("unexpected severities: %+v", cfg)
	}
}

func TestResolveConfigRejectsOutOfDomainValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value any
	}{
		{"invalid severity", "material_mismatch_severity", "fatal"},
		{"ignore severity", "filament_name_mismatch_severity", "ignore"},
		{"numeric severity", "insufficient_weight_severity", int64(2)},
		{"negative margin", "weight_margin_grams", -1.5},
		{"nan margin", "weight_margin_grams", math.NaN()},
		{"infinite margin", "weight_margin_grams", "inf"},
		{"text margin", "weight_margin_grams", "lots"},
		{"bad bool", "enable_weight_check", "maybe"},
		{"bool out of range", "enable_material_check", int64(3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := checks.ResolveConfig(map[string]any{tc.key: tc.value})
			if !errors.Is(err, checks.ErrConfig) {
				t.Fatalf("expected ErrConfig for %s=%v, got %v", tc.key, tc.value, err)
			}
		})
	}
}

func TestResolveConfigDoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"Weight_Margin_Grams": 2.0}
	if _, err := checks.ResolveConfig(raw); err != nil {
		t.Fatalf("ResolveConfig returned error: %v", err)
	}
	if _, ok := raw["weight_margin_grams"]; ok || len(raw) != 1 {
		t.Fatalf("input map was modified: %#v", raw)
	}
}
