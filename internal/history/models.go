package history

import (
	"time"

	"spoolcheck/internal/checks"
)

// Entry is one recorded session.
type Entry struct {
	ID         int64                `json:"id"`
	SessionID  string               `json:"session_id"`
	Filename   string               `json:"filename,omitempty"`
	Action     checks.Action        `json:"action"`
	Failure    string               `json:"failure,omitempty"`
	Messages   []string             `json:"messages"`
	Results    []checks.CheckResult `json:"results"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

// Duration is how long the session took.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt.Before(e.StartedAt) {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
