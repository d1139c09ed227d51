package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID is the standardized key for check session identifiers.
	FieldSessionID = "session_id"
	// FieldFilename is the standardized key for the gcode file under validation.
	FieldFilename = "filename"
	// FieldCheck names the check unit a line refers to.
	FieldCheck = "check"
	// FieldSpoolID is the standardized key for Spoolman spool identifiers.
	FieldSpoolID = "spool_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact       = "impact"
	FieldDecisionType = "decision_type"
)
