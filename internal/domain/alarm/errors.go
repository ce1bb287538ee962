package alarm

import "errors"

// Recoverable, user-facing outcomes returned to command callers.
// Cooldown suppression is intentionally absent: a suppressed trigger is a
// silent no-op, not an error.
var (
	// ErrNotFound is returned when a property or actor id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrUnknownBrand is returned when a brand code is not in the catalog.
	ErrUnknownBrand = errors.New("unknown alarm brand")
	// ErrNoAlarmInstalled is returned by operations that require an installed alarm.
	ErrNoAlarmInstalled = errors.New("no alarm installed")
	// ErrForbidden is returned when a capability or ownership check fails.
	ErrForbidden = errors.New("forbidden")
	// ErrNoActiveAlarm is returned by stop when no triggered property is in range.
	ErrNoActiveAlarm = errors.New("no active alarm nearby")
)
