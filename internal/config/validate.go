package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. The [checks] table is not
// inspected here; callers resolve it with the check engine.
func (c *Config) Validate() error {
	if err := c.validateMoonraker(); err != nil {
		return err
	}
	if err := c.validateSpoolman(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must be >= 0")
	}
	if endpoint := c.Telemetry.OTLPEndpoint; endpoint != "" {
		if err := validateHTTPURL("telemetry.otlp_endpoint", endpoint); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateMoonraker() error {
	if err := validateHTTPURL("moonraker.url", c.Moonraker.URL); err != nil {
		return err
	}
	switch c.Moonraker.MetadataSource {
	case MetadataSourceMoonraker:
	case MetadataSourceGcode:
		if strings.TrimSpace(c.Paths.GcodeDir) == "" {
			return errors.New("paths.gcode_dir must be set when moonraker.metadata_source is \"gcode\"")
		}
	default:
		return fmt.Errorf("moonraker.metadata_source must be %q or %q, got %q", MetadataSourceMoonraker, MetadataSourceGcode, c.Moonraker.MetadataSource)
	}
	return nil
}

func (c *Config) validateSpoolman() error {
	if c.Spoolman.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/spoolcheck/config.toml"
		}
		return fmt.Errorf("spoolman.url is required. Set SPOOLCHECK_SPOOLMAN_URL or edit %s (create with 'spoolcheck config init')", defaultPath)
	}
	return validateHTTPURL("spoolman.url", c.Spoolman.URL)
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", field, value)
	}
	return nil
}
