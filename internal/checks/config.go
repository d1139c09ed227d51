package checks

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Recognized [checks] keys.
const (
	KeyEnableWeight         = "enable_weight_check"
	KeyEnableMaterial       = "enable_material_check"
	KeyEnableFilamentName   = "enable_filament_name_check"
	KeyWeightMargin         = "weight_margin_grams"
	KeyWeightSeverity       = "insufficient_weight_severity"
	KeyMaterialSeverity     = "material_mismatch_severity"
	KeyFilamentNameSeverity = "filament_name_mismatch_severity"
)

// DefaultConfig is the configuration used for every key left unset.
func DefaultConfig() CheckConfig {
	return CheckConfig{
		Weight:       CheckSettings{Enabled: true, Severity: SeverityError},
		Material:     CheckSettings{Enabled: true, Severity: SeverityWarning},
		FilamentName: CheckSettings{Enabled: false, Severity: SeverityInfo},
		WeightMargin: 0,
	}
}

// ResolveConfig turns the raw [checks] table into a CheckConfig. Values may be
// native TOML types or ini-style strings. Unknown keys are ignored and a value
// outside its domain fails with an error wrapping ErrConfig.
func ResolveConfig(raw map[string]any) (CheckConfig, error) {
	cfg := DefaultConfig()
	if len(raw) == 0 {
		return cfg, nil
	}
	values := make(map[string]any, len(raw))
	for key, value := range raw {
		values[strings.ToLower(strings.TrimSpace(key))] = value
	}

	var err error
	if cfg.Weight.Enabled, err = boolOption(values, KeyEnableWeight, cfg.Weight.Enabled); err != nil {
		return CheckConfig{}, err
	}
	if cfg.Material.Enabled, err = boolOption(values, KeyEnableMaterial, cfg.Material.Enabled); err != nil {
		return CheckConfig{}, err
	}
	if cfg.FilamentName.Enabled, err = boolOption(values, KeyEnableFilamentName, cfg.FilamentName.Enabled); err != nil {
		return CheckConfig{}, err
	}
	if cfg.WeightMargin, err = marginOption(values, KeyWeightMargin, cfg.WeightMargin); err != nil {
		return CheckConfig{}, err
	}
	if cfg.Weight.Severity, err = severityOption(values, KeyWeightSeverity, cfg.Weight.Severity); err != nil {
		return CheckConfig{}, err
	}
	if cfg.Material.Severity, err = severityOption(values, KeyMaterialSeverity, cfg.Material.Severity); err != nil {
		return CheckConfig{}, err
	}
	if cfg.FilamentName.Severity, err = severityOption(values, KeyFilamentNameSeverity, cfg.FilamentName.Severity); err != nil {
		return CheckConfig{}, err
	}
	return cfg, nil
}

func boolOption(values map[string]any, key string, fallback bool) (bool, error) {
	raw, ok := values[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case int:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: %s must be a boolean, got %v", ErrConfig, key, raw)
}

func marginOption(values map[string]any, key string, fallback float64) (float64, error) {
	raw, ok := values[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	var margin float64
	switch v := raw.(type) {
	case float64:
		margin = v
	case float32:
		margin = float64(v)
	case int64:
		margin = float64(v)
	case int:
		margin = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a number, got %q", ErrConfig, key, v)
		}
		margin = parsed
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %v", ErrConfig, key, raw)
	}
	if math.IsNaN(margin) || math.IsInf(margin, 0) {
		return 0, fmt.Errorf("%w: %s must be finite, got %v", ErrConfig, key, raw)
	}
	if margin < 0 {
		return 0, fmt.Errorf("%w: %s must be >= 0, got %v", ErrConfig, key, margin)
	}
	return margin, nil
}

func severityOption(values map[string]any, key string, fallback Severity) (Severity, error) {
	raw, ok := values[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	text, isString := raw.(string)
	if isString {
		if severity, ok := ParseSeverity(text); ok {
			return severity, nil
		}
	}
	return "", fmt.Errorf("%w: %s must be one of error, warning, info, got %v", ErrConfig, key, raw)
}
