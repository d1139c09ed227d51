package checks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"spoolcheck/internal/logging"
	"spoolcheck/internal/services"
)

// Request is one pre_print_checks invocation.
type Request struct {
	// SessionID is generated when empty.
	SessionID string
	// Settings is the raw [checks] table, resolved at the start of the session.
	Settings map[string]any
	Job      JobMetadata
}

// Handler runs check sessions against an inventory. A Handler holds no
// per-session state, so one value may serve overlapping requests.
type Handler struct {
	inventory Inventory
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler constructs a Handler. A nil logger discards output.
func NewHandler(inv Inventory, logger *slog.Logger) *Handler {
	return &Handler{
		inventory: inv,
		logger:    logging.NewComponentLogger(logger, "checks"),
		now:       time.Now,
	}
}

// Run executes one session. It always returns a well-formed outcome. When the
// configuration cannot be resolved or the active spool cannot be read the
// session fails closed: the outcome blocks with a single diagnostic and the
// underlying error is returned alongside it.
func (h *Handler) Run(ctx context.Context, req Request) (SessionOutcome, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx = services.WithSessionID(ctx, sessionID)
	ctx = services.WithFilename(ctx, req.Job.Filename)
	ctx, span := tracer.Start(ctx, "checks.session", trace.WithAttributes(
		attribute.String("spoolcheck.session_id", sessionID),
		attribute.String("spoolcheck.filename", req.Job.Filename),
	))
	defer span.End()
	logger := logging.WithContext(ctx, h.logger)

	started := h.now()
	cfg, err := ResolveConfig(req.Settings)
	if err != nil {
		outcome := h.failClosed(sessionID, started, FailureConfig, "configuration error: "+err.Error())
		h.report(logger, span, outcome, err)
		return outcome, err
	}

	cache := NewSpoolCache(h.inventory)
	spool, err := cache.ActiveSpool(ctx)
	if err != nil {
		kind, diagnostic := inventoryDiagnostic(err)
		outcome := h.failClosed(sessionID, started, kind, diagnostic)
		h.report(logger, span, outcome, err)
		return outcome, err
	}
	logger.Debug("active spool loaded",
		logging.Int64(logging.FieldSpoolID, spool.ID),
		logging.String("material", spool.Material),
		logging.String("filament_name", spool.FilamentName),
	)

	outcome := Aggregate(RunChecks(ctx, cache, req.Job, cfg))
	outcome.SessionID = sessionID
	outcome.StartedAt = started
	outcome.FinishedAt = h.now()
	h.report(logger, span, outcome, nil)
	return outcome, nil
}

func (h *Handler) failClosed(sessionID string, started time.Time, kind, diagnostic string) SessionOutcome {
	return SessionOutcome{
		SessionID:  sessionID,
		Action:     ActionBlock,
		Results:    []CheckResult{},
		Failure:    kind,
		Diagnostic: diagnostic,
		StartedAt:  started,
		FinishedAt: h.now(),
	}
}

func inventoryDiagnostic(err error) (string, string) {
	if errors.Is(err, ErrNoActiveSpool) {
		return FailureNoActiveSpool, "no active spool: select the loaded spool in Spoolman before printing"
	}
	detail := strings.TrimPrefix(err.Error(), ErrInventoryUnavailable.Error()+": ")
	return FailureInventoryUnavailable, "inventory unavailable: " + detail
}

func (h *Handler) report(logger *slog.Logger, span trace.Span, outcome SessionOutcome, err error) {
	span.SetAttributes(attribute.String("spoolcheck.action", string(outcome.Action)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome.Diagnostic)
		logging.WarnWithContext(logger, "pre-print checks failed closed", "checks_failed_closed",
			logging.String("failure", outcome.Failure),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, failureHint(outcome.Failure)),
			logging.String(logging.FieldImpact, "print start blocked"),
		)
		return
	}

	for _, result := range outcome.Results {
		attrs := []logging.Attr{
			logging.String(logging.FieldCheck, string(result.Check)),
			logging.Bool("passed", result.Passed),
			logging.Bool("skipped", result.Skipped),
			logging.String("severity", string(result.Severity)),
		}
		if result.Message != "" {
			attrs = append(attrs, logging.String("detail", result.Message))
		}
		switch ContributionOf(result) {
		case ContributionBlock, ContributionWarn:
			logging.WarnWithContext(logger, "check failed", "check_failed", append(attrs,
				logging.String(logging.FieldImpact, "contributes "+ContributionOf(result).String()+" to the session"),
				logging.String(logging.FieldErrorHint, "load a matching spool or adjust [checks] severities"),
			)...)
		default:
			logger.Info("check evaluated", logging.Args(attrs...)...)
		}
	}

	if outcome.Action == ActionBlock {
		span.SetStatus(codes.Error, "blocked")
	}
	attrs := logging.DecisionAttrs("pre_print_checks", string(outcome.Action), decisionReason(outcome))
	attrs = append(attrs, logging.Duration("elapsed", outcome.FinishedAt.Sub(outcome.StartedAt)))
	logger.Info("pre-print checks finished", logging.Args(attrs...)...)
}

func failureHint(kind string) string {
	switch kind {
	case FailureConfig:
		return "fix the [checks] section and run 'spoolcheck config validate'"
	case FailureNoActiveSpool:
		return "set the active spool in Spoolman or the Mainsail/Fluidd spool panel"
	default:
		return "verify Moonraker and Spoolman are reachable with 'spoolcheck status'"
	}
}

func decisionReason(outcome SessionOutcome) string {
	failed := make([]string, 0, len(outcome.Results))
	for _, result := range outcome.Results {
		if !result.Passed {
			failed = append(failed, string(result.Check)+"="+string(result.Severity))
		}
	}
	if len(failed) == 0 {
		return "all enabled checks passed or not applicable"
	}
	return "failed: " + strings.Join(failed, ",")
}
