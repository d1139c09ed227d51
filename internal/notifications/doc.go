// Package notifications reports session progress on the printer console.
//
// Messages are sent as gcode through Moonraker: informational lines and
// warnings use M118, a blocked session is raised with RESPOND TYPE=error so
// Mainsail and Fluidd surface it as an error. When console_notify is disabled
// NewService returns a no-op implementation.
package notifications
