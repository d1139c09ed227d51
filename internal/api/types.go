package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// PrePrintRequest is the body of POST /api/pre_print_checks.
type PrePrintRequest struct {
	Filename string `json:"filename,omitempty"`
}

// CheckResult is the outcome of one check unit.
type CheckResult struct {
	Check    string `json:"check"`
	Passed   bool   `json:"passed"`
	Skipped  bool   `json:"skipped,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message,omitempty"`
}

// Session describes one pre-print session.
type Session struct {
	SessionID  string        `json:"sessionId"`
	Filename   string        `json:"filename,omitempty"`
	Action     string        `json:"action"`
	Messages   []string      `json:"messages"`
	Results    []CheckResult `json:"results"`
	Failure    string        `json:"failure,omitempty"`
	Skipped    bool          `json:"skipped,omitempty"`
	Paused     bool          `json:"paused,omitempty"`
	StartedAt  string        `json:"startedAt,omitempty"`
	FinishedAt string        `json:"finishedAt,omitempty"`
	DurationMs int64         `json:"durationMs"`
}

// HistoryResponse lists recent sessions, newest first.
type HistoryResponse struct {
	Sessions []Session `json:"sessions"`
}

// Readiness mirrors a preflight check.
type Readiness struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus captures runtime information about the daemon.
type DaemonStatus struct {
	Running       bool        `json:"running"`
	PID           int         `json:"pid"`
	StartedAt     string      `json:"startedAt,omitempty"`
	LockFilePath  string      `json:"lockFilePath"`
	SocketPath    string      `json:"socketPath"`
	HistoryDBPath string      `json:"historyDbPath,omitempty"`
	LogPath       string      `json:"logPath,omitempty"`
	SessionsRun   int64       `json:"sessionsRun"`
	LastSession   *Session    `json:"lastSession,omitempty"`
	Readiness     []Readiness `json:"readiness"`
}
