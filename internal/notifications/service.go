package notifications

import (
	"context"
	"fmt"
	"strings"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/config"
)

const messagePrefix = "spoolcheck: "

// GcodeRunner executes a gcode script on the printer.
type GcodeRunner interface {
	RunGcode(ctx context.Context, script string) error
}

// Service defines the console surface used by the print-start flow.
type Service interface {
	NotifySessionStarted(ctx context.Context, filename string) error
	NotifySkipped(ctx context.Context, reason string) error
	NotifyOutcome(ctx context.Context, outcome checks.SessionOutcome) error
}

// NewService builds a console notifier. A nil runner or a disabled
// console_notify setting yields a no-op service.
func NewService(cfg *config.Config, runner GcodeRunner) Service {
	if cfg == nil || !cfg.Moonraker.ConsoleNotify || runner == nil {
		return noopService{}
	}
	return &consoleService{runner: runner}
}

type level int

const (
	levelInfo level = iota
	levelWarn
	levelError
)

type line struct {
	level   level
	message string
}

type consoleService struct {
	runner GcodeRunner
}

func (c *consoleService) NotifySessionStarted(ctx context.Context, filename string) error {
	filename = strings.TrimSpace(filename)
	return c.send(ctx, line{level: levelInfo, message: "Running single-spool checks for: " + filename})
}

func (c *consoleService) NotifySkipped(ctx context.Context, reason string) error {
	return c.send(ctx, line{level: levelInfo, message: "Pre-print checks skipped: " + strings.TrimSpace(reason)})
}

func (c *consoleService) NotifyOutcome(ctx context.Context, outcome checks.SessionOutcome) error {
	for _, item := range outcomeLines(outcome) {
		if err := c.send(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// outcomeLines renders one line per message followed by a summary. Blocking
// reasons are repeated in the error summary so a single dialog explains the
// pause.
func outcomeLines(outcome checks.SessionOutcome) []line {
	if outcome.Diagnostic != "" {
		return []line{{level: levelError, message: "Pre-print check failed: " + outcome.Diagnostic}}
	}

	lines := make([]line, 0, len(outcome.Results)+1)
	var blocking []string
	for _, result := range outcome.Results {
		if result.Message == "" {
			continue
		}
		switch checks.ContributionOf(result) {
		case checks.ContributionBlock:
			blocking = append(blocking, result.Message)
			lines = append(lines, line{level: levelWarn, message: "FAILED: " + result.Message})
		case checks.ContributionWarn:
			lines = append(lines, line{level: levelWarn, message: "WARNING: " + result.Message})
		case checks.ContributionLog:
			lines = append(lines, line{level: levelInfo, message: "NOTE: " + result.Message})
		default:
			lines = append(lines, line{level: levelInfo, message: "OK: " + result.Message})
		}
	}

	switch outcome.Action {
	case checks.ActionBlock:
		lines = append(lines, line{level: levelError, message: "Pre-print checks FAILED: " + strings.Join(blocking, " | ")})
	case checks.ActionWarn:
		lines = append(lines, line{level: levelWarn, message: "Pre-print checks passed with warnings"})
	default:
		lines = append(lines, line{level: levelInfo, message: "✓ All pre-print checks PASSED"})
	}
	return lines
}

func (c *consoleService) send(ctx context.Context, item line) error {
	if c == nil || c.runner == nil {
		return nil
	}
	if err := c.runner.RunGcode(ctx, script(item)); err != nil {
		return fmt.Errorf("send console message: %w", err)
	}
	return nil
}

func script(item line) string {
	message := sanitize(item.message)
	if item.level == levelError {
		return `RESPOND TYPE=error MSG="` + messagePrefix + strings.ReplaceAll(message, `"`, `'`) + `"`
	}
	return "M118 " + messagePrefix + message
}

// sanitize keeps a message on one gcode line. Klipper treats ';' and '#' as
// comment starts outside of quoted parameters.
func sanitize(message string) string {
	replacer := strings.NewReplacer("\r", " ", "\n", " ", ";", ",", "#", "No.")
	return strings.TrimSpace(replacer.Replace(message))
}

type noopService struct{}

func (noopService) NotifySessionStarted(context.Context, string) error         { return nil }
func (noopService) NotifySkipped(context.Context, string) error                { return nil }
func (noopService) NotifyOutcome(context.Context, checks.SessionOutcome) error { return nil }
