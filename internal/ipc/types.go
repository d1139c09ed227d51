package ipc

import "spoolcheck/internal/api"

// Session mirrors the HTTP API session DTO for IPC callers.
type Session = api.Session

// CheckResult mirrors the HTTP API check result DTO.
type CheckResult = api.CheckResult

// Readiness mirrors the HTTP API readiness DTO.
type Readiness = api.Readiness

// PrePrintChecksRequest runs one print-start session. An empty filename
// means the file Klipper currently has loaded.
type PrePrintChecksRequest struct {
	Filename string `json:"filename"`
}

// PrePrintChecksResponse carries the finished session.
type PrePrintChecksResponse struct {
	Session Session `json:"session"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse is the daemon's runtime status.
type StatusResponse = api.DaemonStatus

// HistoryRequest lists recent sessions.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse lists sessions newest first.
type HistoryResponse = api.HistoryResponse

// StopRequest asks the daemon process to exit.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// LogTailRequest reads daemon log lines. A negative offset returns the last
// Limit lines.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns lines and the offset to resume from.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
