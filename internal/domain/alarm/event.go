package alarm

import (
	"time"

	"github.com/google/uuid"
)

// Event is one audit record, created exactly once per successful trigger.
// Property name and brand code are denormalized snapshots taken at trigger
// time, so later installs or renames do not rewrite history.
type Event struct {
	// ID uniquely identifies the event.
	ID string
	// PropertyID references the triggered property.
	PropertyID int64
	// PropertyName is the property display name at trigger time.
	PropertyName string
	// IntruderID identifies the actor whose entry caused the trigger.
	IntruderID string
	// BrandCode is the installed brand's code at trigger time.
	BrandCode string
	// Timestamp is the UTC trigger time.
	Timestamp time.Time
	// Resolved is set once the alarm is stopped by the owner or an admin.
	Resolved bool
}

// NewEvent builds an unresolved event snapshot for a triggered property.
func NewEvent(p *Property, intruderID string, at time.Time) *Event {
	return &Event{
		ID:           uuid.NewString(),
		PropertyID:   p.ID,
		PropertyName: p.Name,
		IntruderID:   intruderID,
		BrandCode:    p.BrandCode,
		Timestamp:    at.UTC(),
	}
}

// Clone returns a copy of the event.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}

	cloned := *e

	return &cloned
}
