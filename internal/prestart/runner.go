package prestart

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/config"
	"spoolcheck/internal/logging"
	"spoolcheck/internal/notifications"
	"spoolcheck/internal/services"
)

const (
	skipNoFilename = "No filename available"
	skipNoMetadata = "No slicer metadata for "
)

// Printer is the printer control surface the runner uses.
type Printer interface {
	CurrentFilename(ctx context.Context) (string, error)
	PausePrint(ctx context.Context) error
}

// Recorder persists finished sessions.
type Recorder interface {
	Record(ctx context.Context, filename string, outcome checks.SessionOutcome) error
}

// Deps wires a Runner. Printer, Notifier, and History may be nil.
type Deps struct {
	Checks   *checks.Handler
	Metadata MetadataSource
	Printer  Printer
	Notifier notifications.Service
	History  Recorder
	Logger   *slog.Logger
}

// Request starts one print-start session. An empty Filename is taken from
// the printer's print_stats.
type Request struct {
	Filename  string `json:"filename,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Result is what the host macro and the CLI receive.
type Result struct {
	SessionID string                `json:"session_id"`
	Filename  string                `json:"filename,omitempty"`
	Action    checks.Action         `json:"action"`
	Messages  []string              `json:"messages"`
	Skipped   bool                  `json:"skipped,omitempty"`
	Paused    bool                  `json:"paused,omitempty"`
	Outcome   checks.SessionOutcome `json:"outcome"`
}

// Runner executes print-start sessions. It holds no per-session state.
type Runner struct {
	cfg          *config.Config
	checks       *checks.Handler
	metadata     MetadataSource
	printer      Printer
	notifier     notifications.Service
	history      Recorder
	pauseOnBlock bool
	logger       *slog.Logger
	now          func() time.Time
}

// NewRunner constructs a Runner from cfg and deps.
func NewRunner(cfg *config.Config, deps Deps) *Runner {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(nil, nil)
	}
	return &Runner{
		cfg:          cfg,
		checks:       deps.Checks,
		metadata:     deps.Metadata,
		printer:      deps.Printer,
		notifier:     notifier,
		history:      deps.History,
		pauseOnBlock: cfg != nil && cfg.Moonraker.PauseOnBlock,
		logger:       logging.NewComponentLogger(deps.Logger, "prestart"),
		now:          time.Now,
	}
}

// Run executes the print-start flow for req.
func (r *Runner) Run(ctx context.Context, req Request) Result {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx = services.WithSessionID(ctx, sessionID)
	logger := logging.WithContext(ctx, r.logger)

	filename := r.resolveFilename(ctx, logger, req.Filename)
	if filename == "" {
		return r.skip(ctx, logger, sessionID, "", skipNoFilename)
	}
	ctx = services.WithFilename(ctx, filename)
	logger = logging.WithContext(ctx, r.logger)

	r.notify(logger, "session started", func() error {
		return r.notifier.NotifySessionStarted(ctx, filename)
	})

	started := r.now()
	job, err := r.metadata.Job(ctx, filename)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			logging.WarnWithContext(logger, "slicer metadata missing", "metadata_missing",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-upload the file or check moonraker.metadata_source"),
				logging.String(logging.FieldImpact, "checks skipped, print continues"),
			)
			return r.skip(ctx, logger, sessionID, filename, skipNoMetadata+filename)
		}
		logging.ErrorWithContext(logger, "slicer metadata unavailable", "metadata_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that Moonraker is reachable and moonraker.api_key is valid"),
			logging.String(logging.FieldImpact, "print blocked"),
		)
		return r.finish(ctx, logger, sessionID, filename, checks.SessionOutcome{
			SessionID:  sessionID,
			Action:     checks.ActionBlock,
			Results:    []checks.CheckResult{},
			Failure:    checks.FailureMetadataUnavailable,
			Diagnostic: "metadata unavailable: " + err.Error(),
			StartedAt:  started,
			FinishedAt: r.now(),
		})
	}

	var settings map[string]any
	if r.cfg != nil {
		settings = r.cfg.CheckSettings()
	}
	outcome, err := r.checks.Run(ctx, checks.Request{SessionID: sessionID, Settings: settings, Job: job})
	if err != nil {
		logger.Debug("session failed closed", logging.Error(err))
	}
	return r.finish(ctx, logger, sessionID, filename, outcome)
}

// finish reports outcome on the console, pauses on block when configured,
// and records history.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, sessionID, filename string, outcome checks.SessionOutcome) Result {
	r.notify(logger, "outcome", func() error {
		return r.notifier.NotifyOutcome(ctx, outcome)
	})

	paused := false
	if outcome.Action == checks.ActionBlock && r.pauseOnBlock && r.printer != nil {
		if err := r.printer.PausePrint(ctx); err != nil {
			logging.ErrorWithContext(logger, "pause print failed", "pause_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "pause the print manually"),
				logging.String(logging.FieldImpact, "blocked print may continue"),
			)
		} else {
			paused = true
			logger.Info("print paused", logging.String("action", string(outcome.Action)))
		}
	}

	r.record(ctx, logger, filename, outcome)
	return Result{
		SessionID: sessionID,
		Filename:  filename,
		Action:    outcome.Action,
		Messages:  nonNil(outcome.Messages()),
		Paused:    paused,
		Outcome:   outcome,
	}
}

func (r *Runner) resolveFilename(ctx context.Context, logger *slog.Logger, requested string) string {
	if filename := strings.TrimSpace(requested); filename != "" {
		return filename
	}
	if r.printer == nil {
		return ""
	}
	filename, err := r.printer.CurrentFilename(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "could not read current print filename", "filename_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "pass FILENAME to the macro or check Moonraker"),
		)
		return ""
	}
	return filename
}

// skip ends the session without consulting the check engine. The outcome is
// allow and carries the skip reason as its only message.
func (r *Runner) skip(ctx context.Context, logger *slog.Logger, sessionID, filename, reason string) Result {
	now := r.now()
	outcome := checks.SessionOutcome{
		SessionID:  sessionID,
		Action:     checks.ActionAllow,
		Results:    []checks.CheckResult{},
		Diagnostic: "Pre-print checks skipped: " + reason,
		StartedAt:  now,
		FinishedAt: now,
	}
	logger.Info("pre-print checks skipped", logging.Args(logging.DecisionAttrs("pre_print_checks", "skip", reason)...)...)
	r.notify(logger, "skip", func() error {
		return r.notifier.NotifySkipped(ctx, reason)
	})
	r.record(ctx, logger, filename, outcome)
	return Result{
		SessionID: sessionID,
		Filename:  filename,
		Action:    outcome.Action,
		Messages:  outcome.Messages(),
		Skipped:   true,
		Outcome:   outcome,
	}
}

func (r *Runner) notify(logger *slog.Logger, what string, send func() error) {
	if err := send(); err != nil {
		logging.WarnWithContext(logger, "console notification failed", "console_notify_failed",
			logging.String("notification", what),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check Klipper is ready and Moonraker is reachable"),
			logging.String(logging.FieldImpact, "decision unaffected"),
		)
	}
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, filename string, outcome checks.SessionOutcome) {
	if r.history == nil {
		return
	}
	if err := r.history.Record(ctx, filename, outcome); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "session missing from history"),
		)
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
