package checks

import (
	"strconv"
	"strings"
	"time"
)

// Severity is the configured consequence of a failed check.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity accepts the three recognized levels, case-insensitively.
func ParseSeverity(value string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(value))) {
	case SeverityError:
		return SeverityError, true
	case SeverityWarning:
		return SeverityWarning, true
	case SeverityInfo:
		return SeverityInfo, true
	default:
		return "", false
	}
}

// Action is the overall session decision returned to the host.
type Action string

const (
	ActionAllow Action = "allow"
	ActionWarn  Action = "warn"
	ActionBlock Action = "block"
)

// CheckID names a check unit.
type CheckID string

const (
	CheckWeight       CheckID = "weight"
	CheckMaterial     CheckID = "material"
	CheckFilamentName CheckID = "filament_name"
)

// Order is the fixed evaluation order.
var Order = []CheckID{CheckWeight, CheckMaterial, CheckFilamentName}

// SpoolRecord is the session copy of the active spool. RemainingWeight is nil
// when the inventory has no weight data for the spool.
type SpoolRecord struct {
	ID              int64    `json:"id"`
	Material        string   `json:"material,omitempty"`
	FilamentName    string   `json:"filament_name,omitempty"`
	Vendor          string   `json:"vendor,omitempty"`
	RemainingWeight *float64 `json:"remaining_weight,omitempty"`
}

// Label renders the spool for messages, e.g. "spool 4 (Generic PLA)".
func (s SpoolRecord) Label() string {
	name := strings.TrimSpace(s.FilamentName)
	if name == "" {
		name = "unnamed"
	}
	if s.ID <= 0 {
		return "active spool (" + name + ")"
	}
	return "spool " + strconv.FormatInt(s.ID, 10) + " (" + name + ")"
}

// JobMetadata holds the slicer requirements of the job. Empty strings and nil
// pointers mean the slicer did not record the field.
type JobMetadata struct {
	Filename             string   `json:"filename,omitempty"`
	Slicer               string   `json:"slicer,omitempty"`
	RequiredMaterial     string   `json:"required_material,omitempty"`
	RequiredWeight       *float64 `json:"required_weight,omitempty"`
	RequiredFilamentName string   `json:"required_filament_name,omitempty"`
}

// CheckSettings is the enabled flag and severity of one check.
type CheckSettings struct {
	Enabled  bool     `json:"enabled"`
	Severity Severity `json:"severity"`
}

// CheckConfig is the resolved, immutable configuration of a session.
type CheckConfig struct {
	Weight       CheckSettings `json:"weight"`
	Material     CheckSettings `json:"material"`
	FilamentName CheckSettings `json:"filament_name"`
	WeightMargin float64       `json:"weight_margin_grams"`
}

// Settings returns the settings for the given check.
func (c CheckConfig) Settings(id CheckID) CheckSettings {
	switch id {
	case CheckWeight:
		return c.Weight
	case CheckMaterial:
		return c.Material
	case CheckFilamentName:
		return c.FilamentName
	default:
		return CheckSettings{}
	}
}

// CheckResult is the outcome of one check unit.
type CheckResult struct {
	Check    CheckID  `json:"check"`
	Passed   bool     `json:"passed"`
	Skipped  bool     `json:"skipped,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
}

// Failure kinds reported when a session fails closed.
const (
	FailureConfig               = "config_error"
	FailureNoActiveSpool        = "no_active_spool"
	FailureMetadataUnavailable  = "metadata_unavailable"
	FailureInventoryUnavailable = "inventory_unavailable"
)

// SessionOutcome is the only value returned across the system boundary.
type SessionOutcome struct {
	SessionID  string        `json:"session_id"`
	Action     Action        `json:"action"`
	Results    []CheckResult `json:"results"`
	Failure    string        `json:"failure,omitempty"`
	Diagnostic string        `json:"diagnostic,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Messages returns the ordered, non-empty messages of the session. A session
// that failed closed carries exactly one diagnostic message.
func (o SessionOutcome) Messages() []string {
	if o.Diagnostic != "" {
		return []string{o.Diagnostic}
	}
	messages := make([]string, 0, len(o.Results))
	for _, result := range o.Results {
		if result.Message != "" {
			messages = append(messages, result.Message)
		}
	}
	return messages
}
