package checks

import "errors"

var (
	// ErrConfig marks a [checks] value outside its declared domain.
	ErrConfig = errors.New("invalid check configuration")
	// ErrNoActiveSpool means the inventory reports no spool loaded.
	ErrNoActiveSpool = errors.New("no active spool")
	// ErrInventoryUnavailable means the spool lookup could not complete.
	ErrInventoryUnavailable = errors.New("inventory unavailable")
)
