package api

import (
	"time"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/history"
	"spoolcheck/internal/preflight"
	"spoolcheck/internal/prestart"
)

// FromResult converts a print-start result to its API representation.
func FromResult(result prestart.Result) Session {
	session := fromOutcome(result.Outcome)
	session.SessionID = result.SessionID
	session.Filename = result.Filename
	session.Action = string(result.Action)
	session.Messages = nonNil(result.Messages)
	session.Skipped = result.Skipped
	session.Paused = result.Paused
	return session
}

// FromHistoryEntry converts a stored session to its API representation.
func FromHistoryEntry(entry history.Entry) Session {
	return Session{
		SessionID:  entry.SessionID,
		Filename:   entry.Filename,
		Action:     string(entry.Action),
		Messages:   nonNil(entry.Messages),
		Results:    FromCheckResults(entry.Results),
		Failure:    entry.Failure,
		StartedAt:  formatTime(entry.StartedAt),
		FinishedAt: formatTime(entry.FinishedAt),
		DurationMs: entry.Duration().Milliseconds(),
	}
}

// FromHistoryEntries converts a slice of stored sessions.
func FromHistoryEntries(entries []history.Entry) HistoryResponse {
	sessions := make([]Session, 0, len(entries))
	for _, entry := range entries {
		sessions = append(sessions, FromHistoryEntry(entry))
	}
	return HistoryResponse{Sessions: sessions}
}

// FromCheckResults converts engine results, preserving order.
func FromCheckResults(results []checks.CheckResult) []CheckResult {
	out := make([]CheckResult, 0, len(results))
	for _, result := range results {
		out = append(out, CheckResult{
			Check:    string(result.Check),
			Passed:   result.Passed,
			Skipped:  result.Skipped,
			Severity: string(result.Severity),
			Message:  result.Message,
		})
	}
	return out
}

// FromPreflight converts readiness checks.
func FromPreflight(results []preflight.Result) []Readiness {
	out := make([]Readiness, 0, len(results))
	for _, result := range results {
		out = append(out, Readiness{Name: result.Name, Ready: result.Passed, Detail: result.Detail})
	}
	return out
}

func fromOutcome(outcome checks.SessionOutcome) Session {
	duration := outcome.FinishedAt.Sub(outcome.StartedAt)
	if duration < 0 {
		duration = 0
	}
	return Session{
		SessionID:  outcome.SessionID,
		Action:     string(outcome.Action),
		Messages:   nonNil(outcome.Messages()),
		Results:    FromCheckResults(outcome.Results),
		Failure:    outcome.Failure,
		StartedAt:  formatTime(outcome.StartedAt),
		FinishedAt: formatTime(outcome.FinishedAt),
		DurationMs: duration.Milliseconds(),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
