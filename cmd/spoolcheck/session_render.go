package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"spoolcheck/internal/api"
)

func renderSession(w io.Writer, session api.Session, colorize bool) {
	fmt.Fprintln(w, renderStatusLine("Decision", actionKind(session.Action), strings.ToUpper(session.Action), colorize))
	if session.Filename != "" {
		fmt.Fprintln(w, renderStatusLine("File", statusInfo, session.Filename, colorize))
	}
	fmt.Fprintln(w, renderStatusLine("Session", statusInfo, session.SessionID, colorize))
	if session.Failure != "" {
		fmt.Fprintln(w, renderStatusLine("Failure", statusError, session.Failure, colorize))
	}
	if session.Paused {
		fmt.Fprintln(w, renderStatusLine("Printer", statusWarn, "Print paused", colorize))
	}

	if len(session.Results) == 0 {
		for _, message := range session.Messages {
			fmt.Fprintln(w, statusIndent+message)
		}
		return
	}
	fmt.Fprintln(w)
	rows := make([][]string, 0, len(session.Results))
	for _, result := range session.Results {
		rows = append(rows, []string{result.Check, resultLabel(result), result.Severity, result.Message})
	}
	fmt.Fprintln(w, renderTable([]string{"Check", "Result", "Severity", "Message"}, rows, nil))
}

func resultLabel(result api.CheckResult) string {
	switch {
	case result.Skipped:
		return "skipped"
	case result.Passed:
		return "passed"
	default:
		return "failed"
	}
}

func historyRows(sessions []api.Session) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		summary := session.Failure
		if summary == "" && len(session.Messages) > 0 {
			summary = session.Messages[0]
		}
		rows = append(rows, []string{
			shortTime(session.FinishedAt),
			session.Filename,
			strings.ToUpper(session.Action),
			formatDurationMs(session.DurationMs),
			summary,
		})
	}
	return rows
}

func shortTime(value string) string {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04:05")
}

func formatDurationMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
