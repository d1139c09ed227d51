package testsupport

import (
	"path/filepath"
	"testing"

	"spoolcheck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Console notifications and history are off unless an option enables them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.GcodeDir = filepath.Join(base, "gcodes")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Moonraker.ConsoleNotify = false
	cfgVal.Moonraker.PauseOnBlock = false
	cfgVal.Spoolman.RetryAttempts = 0
	cfgVal.History.Enabled = false
	cfgVal.Checks = map[string]any{}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPrinter points both the Moonraker and Spoolman URLs at one server, as
// served by FakePrinter.
func WithPrinter(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Moonraker.URL = url
		b.cfg.Spoolman.URL = url
	}
}

// WithChecks replaces the raw [checks] table.
func WithChecks(settings map[string]any) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Checks = settings
	}
}

// WithConsole enables console notifications and pausing on block.
func WithConsole() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Moonraker.ConsoleNotify = true
		b.cfg.Moonraker.PauseOnBlock = true
	}
}

// WithHistory enables the session history database.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithGcodeMetadata switches the metadata source to local gcode parsing.
func WithGcodeMetadata() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Moonraker.MetadataSource = config.MetadataSourceGcode
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
