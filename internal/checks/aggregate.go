package checks

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("spoolcheck/internal/checks")

// Evaluator is the signature shared by the check units.
type Evaluator func(SpoolRecord, JobMetadata, CheckConfig) CheckResult

var evaluators = map[CheckID]Evaluator{
	CheckWeight:       EvaluateWeight,
	CheckMaterial:     EvaluateMaterial,
	CheckFilamentName: EvaluateFilamentName,
}

// RunChecks evaluates every enabled check in Order. Each check reads the spool
// through cache, so the inventory is queried at most once. Disabled checks
// produce no result.
func RunChecks(ctx context.Context, cache *SpoolCache, job JobMetadata, cfg CheckConfig) []CheckResult {
	results := make([]CheckResult, 0, len(Order))
	for _, id := range Order {
		if !cfg.Settings(id).Enabled {
			continue
		}
		results = append(results, runCheck(ctx, id, evaluators[id], cache, job, cfg))
	}
	return results
}

func runCheck(ctx context.Context, id CheckID, eval Evaluator, cache *SpoolCache, job JobMetadata, cfg CheckConfig) (result CheckResult) {
	ctx, span := tracer.Start(ctx, "checks."+string(id))
	defer func() {
		if r := recover(); r != nil {
			result = uncomputable(id, fmt.Sprintf("%s check failed to evaluate: %v", id, r))
		}
		span.SetAttributes(
			attribute.Bool("spoolcheck.check.passed", result.Passed),
			attribute.Bool("spoolcheck.check.skipped", result.Skipped),
			attribute.String("spoolcheck.check.severity", string(result.Severity)),
		)
		if !result.Passed {
			span.SetStatus(codes.Error, result.Message)
		}
		span.End()
	}()

	spool, err := cache.ActiveSpool(ctx)
	if err != nil {
		return uncomputable(id, fmt.Sprintf("%s check could not read the active spool: %v", id, err))
	}
	return eval(spool, job, cfg)
}

// Decide folds results into an action: block when an error-severity check
// failed, warn when a warning-severity check failed, allow otherwise.
func Decide(results []CheckResult) Action {
	action := ActionAllow
	for _, result := range results {
		switch ContributionOf(result) {
		case ContributionBlock:
			return ActionBlock
		case ContributionWarn:
			action = ActionWarn
		}
	}
	return action
}

// Aggregate builds the session outcome for an ordered result list.
func Aggregate(results []CheckResult) SessionOutcome {
	ordered := make([]CheckResult, len(results))
	copy(ordered, results)
	return SessionOutcome{
		Action:  Decide(ordered),
		Results: ordered,
	}
}
