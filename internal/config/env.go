package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides are secrets and endpoints commonly injected by systemd units
// or containers. Non-empty values replace the file values.
type envOverrides struct {
	MoonrakerURL    string `env:"SPOOLCHECK_MOONRAKER_URL"`
	MoonrakerAPIKey string `env:"SPOOLCHECK_MOONRAKER_API_KEY"`
	SpoolmanURL     string `env:"SPOOLCHECK_SPOOLMAN_URL"`
	APIToken        string `env:"SPOOLCHECK_API_TOKEN"`
	OTLPEndpoint    string `env:"SPOOLCHECK_OTLP_ENDPOINT"`
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	override(&c.Moonraker.URL, overrides.MoonrakerURL)
	override(&c.Moonraker.APIKey, overrides.MoonrakerAPIKey)
	override(&c.Spoolman.URL, overrides.SpoolmanURL)
	override(&c.Paths.APIToken, overrides.APIToken)
	override(&c.Telemetry.OTLPEndpoint, overrides.OTLPEndpoint)
	return nil
}

func override(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}
