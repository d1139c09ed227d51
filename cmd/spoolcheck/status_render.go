package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"spoolcheck/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := "[" + statusKindLabel(kind) + "]"
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

// actionKind maps a session action to the line style used for it.
func actionKind(action string) statusKind {
	switch action {
	case "allow":
		return statusOK
	case "warn":
		return statusWarn
	case "block":
		return statusError
	default:
		return statusInfo
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func renderStatus(status api.DaemonStatus, colorize bool) []string {
	lines := renderSectionHeader("Daemon", colorize)
	if status.Running {
		detail := "Running"
		if status.PID > 0 {
			detail += " (pid " + strconv.Itoa(status.PID) + ")"
		}
		lines = append(lines, renderStatusLine("Spoolcheck", statusOK, detail, colorize))
		if status.StartedAt != "" {
			lines = append(lines, renderStatusLine("Started", statusInfo, status.StartedAt, colorize))
		}
		lines = append(lines, renderStatusLine("Sessions", statusInfo, strconv.FormatInt(status.SessionsRun, 10), colorize))
	} else {
		lines = append(lines, renderStatusLine("Spoolcheck", statusWarn, "Not running (run `spoolcheck start`)", colorize))
	}
	if last := status.LastSession; last != nil {
		detail := strings.ToUpper(last.Action)
		if last.Filename != "" {
			detail += " " + last.Filename
		}
		lines = append(lines, renderStatusLine("Last session", actionKind(last.Action), detail, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Readiness", colorize)...)
	for _, check := range status.Readiness {
		kind := statusError
		if check.Ready {
			kind = statusOK
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Paths", colorize)...)
	lines = append(lines, renderStatusLine("Socket", statusInfo, status.SocketPath, colorize))
	lines = append(lines, renderStatusLine("Lock", statusInfo, status.LockFilePath, colorize))
	if status.HistoryDBPath != "" {
		lines = append(lines, renderStatusLine("History", statusInfo, status.HistoryDBPath, colorize))
	}
	if status.LogPath != "" {
		lines = append(lines, renderStatusLine("Log", statusInfo, status.LogPath, colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
