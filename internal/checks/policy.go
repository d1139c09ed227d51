package checks

// Contribution is what a single result adds to the session decision.
type Contribution int

const (
	ContributionNone Contribution = iota
	// ContributionLog is reported but never changes the action.
	ContributionLog
	ContributionWarn
	ContributionBlock
)

func (c Contribution) String() string {
	switch c {
	case ContributionLog:
		return "log"
	case ContributionWarn:
		return "warn"
	case ContributionBlock:
		return "block"
	default:
		return "none"
	}
}

// ContributionOf maps a result to its effect on the session. Passed and skipped
// results never contribute regardless of severity.
func ContributionOf(result CheckResult) Contribution {
	if result.Passed {
		return ContributionNone
	}
	switch result.Severity {
	case SeverityError:
		return ContributionBlock
	case SeverityWarning:
		return ContributionWarn
	case SeverityInfo:
		return ContributionLog
	default:
		// an unknown severity on a failure must not let the print through
		return ContributionBlock
	}
}
