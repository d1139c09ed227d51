package config

const (
	defaultStateDir              = "~/.local/share/spoolcheck"
	defaultLogDir                = "~/.local/share/spoolcheck/logs"
	defaultGcodeDir              = "~/printer_data/gcodes"
	defaultAPIBind               = "127.0.0.1:7130"
	defaultMoonrakerURL          = "http://127.0.0.1:7125"
	defaultMoonrakerTimeout      = 5
	defaultSpoolmanURL           = "http://127.0.0.1:7912"
	defaultSpoolmanTimeout       = 5
	defaultSpoolmanRetryAttempts = 3
	defaultHistoryRetentionDays  = 90
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
	defaultTelemetryServiceName  = "spoolcheck"

	// MetadataSourceMoonraker reads slicer fields from Moonraker's file metadata API.
	MetadataSourceMoonraker = "moonraker"
	// MetadataSourceGcode parses the gcode file under paths.gcode_dir directly.
	MetadataSourceGcode = "gcode"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			GcodeDir: defaultGcodeDir,
			APIBind:  defaultAPIBind,
		},
		Moonraker: Moonraker{
			URL:            defaultMoonrakerURL,
			TimeoutSeconds: defaultMoonrakerTimeout,
			PauseOnBlock:   true,
			ConsoleNotify:  true,
			MetadataSource: MetadataSourceMoonraker,
		},
		Spoolman: Spoolman{
			URL:            defaultSpoolmanURL,
			TimeoutSeconds: defaultSpoolmanTimeout,
			RetryAttempts:  defaultSpoolmanRetryAttempts,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetentionDays,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Telemetry: Telemetry{
			ServiceName: defaultTelemetryServiceName,
		},
	}
}
