package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMoonraker()
	c.normalizeSpoolman()
	c.normalizeChecks()
	c.normalizeLogging()
	c.Telemetry.OTLPEndpoint = strings.TrimSpace(c.Telemetry.OTLPEndpoint)
	if strings.TrimSpace(c.Telemetry.ServiceName) == "" {
		c.Telemetry.ServiceName = defaultTelemetryServiceName
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.GcodeDir, err = expandPath(strings.TrimSpace(c.Paths.GcodeDir)); err != nil {
		return fmt.Errorf("paths.gcode_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeMoonraker() {
	c.Moonraker.URL = strings.TrimRight(strings.TrimSpace(c.Moonraker.URL), "/")
	if c.Moonraker.URL == "" {
		c.Moonraker.URL = defaultMoonrakerURL
	}
	c.Moonraker.APIKey = strings.TrimSpace(c.Moonraker.APIKey)
	if c.Moonraker.TimeoutSeconds <= 0 {
		c.Moonraker.TimeoutSeconds = defaultMoonrakerTimeout
	}
	c.Moonraker.MetadataSource = strings.ToLower(strings.TrimSpace(c.Moonraker.MetadataSource))
	if c.Moonraker.MetadataSource == "" {
		c.Moonraker.MetadataSource = MetadataSourceMoonraker
	}
}

func (c *Config) normalizeSpoolman() {
	c.Spoolman.URL = strings.TrimRight(strings.TrimSpace(c.Spoolman.URL), "/")
	if c.Spoolman.TimeoutSeconds <= 0 {
		c.Spoolman.TimeoutSeconds = defaultSpoolmanTimeout
	}
	if c.Spoolman.RetryAttempts < 0 {
		c.Spoolman.RetryAttempts = 0
	}
}

// normalizeChecks lowercases keys so the engine sees the same names the
// Moonraker ini section would have produced.
func (c *Config) normalizeChecks() {
	if len(c.Checks) == 0 {
		c.Checks = map[string]any{}
		return
	}
	normalized := make(map[string]any, len(c.Checks))
	for key, value := range c.Checks {
		normalized[strings.ToLower(strings.TrimSpace(key))] = value
	}
	c.Checks = normalized
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
