package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/services"
	"spoolcheck/internal/services/moonraker"
)

const probeTimeout = 5 * time.Second

// ServerInfoClient is satisfied by *moonraker.Client.
type ServerInfoClient interface {
	ServerInfo(ctx context.Context) (moonraker.ServerInfo, error)
}

// HealthClient is satisfied by *spoolman.Client.
type HealthClient interface {
	Health(ctx context.Context) error
}

// CheckDirectoryAccess verifies that a directory exists and is readable,
// writable, and searchable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that a directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckSettings resolves the [checks] table the way a session would.
func CheckSettings(raw map[string]any) Result {
	const name = "Check settings"

	cfg, err := checks.ResolveConfig(raw)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	enabled := make([]string, 0, len(checks.Order))
	for _, id := range checks.Order {
		if settings := cfg.Settings(id); settings.Enabled {
			enabled = append(enabled, fmt.Sprintf("%s=%s", id, settings.Severity))
		}
	}
	if len(enabled) == 0 {
		return Result{Name: name, Passed: true, Detail: "all checks disabled"}
	}
	return Result{Name: name, Passed: true, Detail: strings.Join(enabled, ", ")}
}

// CheckMoonraker verifies Moonraker is reachable, Klippy is ready, and the
// spoolman component is loaded.
func CheckMoonraker(ctx context.Context, client ServerInfoClient) Result {
	const name = "Moonraker"

	checkCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	info, err := client.ServerInfo(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	if !info.HasComponent("spoolman") {
		return Result{Name: name, Detail: "spoolman component not loaded (add [spoolman] to moonraker.conf)"}
	}
	if !info.KlippyConnected || info.KlippyState != "ready" {
		state := info.KlippyState
		if state == "" {
			state = "disconnected"
		}
		return Result{Name: name, Detail: fmt.Sprintf("klippy %s", state)}
	}
	detail := "Reachable, klippy ready"
	if info.MoonrakerVersion != "" {
		detail = fmt.Sprintf("%s (%s)", detail, info.MoonrakerVersion)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSpoolman verifies the Spoolman health endpoint.
func CheckSpoolman(ctx context.Context, client HealthClient) Result {
	const name = "Spoolman"

	checkCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := client.Health(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Healthy"}
}

func summarizeError(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return fmt.Sprintf("misconfigured (%v)", err)
	case errors.Is(err, services.ErrTimeout):
		return "timed out"
	default:
		return fmt.Sprintf("unreachable (%v)", err)
	}
}
