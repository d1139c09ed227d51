package prestart

import (
	"log/slog"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/config"
	"spoolcheck/internal/inventory"
	"spoolcheck/internal/notifications"
	"spoolcheck/internal/services/moonraker"
	"spoolcheck/internal/services/spoolman"
)

// Clients holds the service clients built from configuration.
type Clients struct {
	Moonraker *moonraker.Client
	Spoolman  *spoolman.Client
}

// NewClients builds the Moonraker and Spoolman clients for cfg.
func NewClients(cfg *config.Config) Clients {
	return Clients{
		Moonraker: moonraker.NewClient(cfg.Moonraker.URL,
			moonraker.WithTimeout(cfg.MoonrakerTimeout()),
			moonraker.WithAPIKey(cfg.Moonraker.APIKey),
		),
		Spoolman: spoolman.NewClient(cfg.Spoolman.URL,
			spoolman.WithTimeout(cfg.SpoolmanTimeout()),
			spoolman.WithRetryAttempts(cfg.Spoolman.RetryAttempts),
		),
	}
}

// NewFromConfig wires a Runner against live clients. recorder may be nil when
// history is disabled.
func NewFromConfig(cfg *config.Config, clients Clients, recorder Recorder, logger *slog.Logger) *Runner {
	inv := inventory.NewService(clients.Moonraker, clients.Spoolman)
	deps := Deps{
		Checks:   checks.NewHandler(inv, logger),
		Metadata: NewMetadataSource(cfg, clients.Moonraker),
		Printer:  clients.Moonraker,
		Notifier: notifications.NewService(cfg, clients.Moonraker),
		History:  recorder,
		Logger:   logger,
	}
	return NewRunner(cfg, deps)
}
