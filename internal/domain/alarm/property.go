package alarm

import (
	"time"

	"github.com/oshokin/property-alarm/internal/catalog"
)

// OwnerUnassigned is the sentinel owner id of a property without a real owner.
const OwnerUnassigned = "unassigned"

// DefaultCooldown applies when no installed brand resolves to a cooldown.
const DefaultCooldown = 60 * time.Second

// ArmState is the explicit per-property alarm state derived from the
// Installed/Armed/TriggeredAt flags.
type ArmState int

const (
	// StateUnarmed means no alarm is installed or the alarm is switched off.
	StateUnarmed ArmState = iota
	// StateIdle means the alarm is armed with no trigger inside the cooldown window.
	StateIdle
	// StateCooling means the alarm is armed and a trigger happened within the cooldown window.
	StateCooling
)

// String returns a human-readable state label.
func (s ArmState) String() string {
	switch s {
	case StateIdle:
		return "armed"
	case StateCooling:
		return "cooling"
	default:
		return "unarmed"
	}
}

// Property is a registered property and its alarm sub-state.
// All mutation goes through the property store, which guarantees the
// invariants: BrandCode is set iff Installed, and Armed implies Installed.
type Property struct {
	// ID is the sequential property identifier, assigned from 1 and never reused.
	ID int64
	// Name is the display name of the property.
	Name string
	// Position is the property location in world space.
	Position Position
	// OwnerID identifies the owning actor, or OwnerUnassigned.
	OwnerID string
	// Installed reports whether an alarm system is present.
	Installed bool
	// BrandCode is the installed brand's catalog code, present iff Installed.
	BrandCode string
	// Armed reports whether the installed alarm is active.
	Armed bool
	// TriggeredAt is the time of the most recent trigger, nil when none is active.
	TriggeredAt *time.Time
	// InstalledAt is the time the current alarm was installed.
	InstalledAt *time.Time
}

// DetectionRadius returns the installed brand's detection range, or 0 when
// no alarm is installed or the brand code no longer resolves.
func (p *Property) DetectionRadius() float64 {
	if !p.Installed {
		return 0
	}

	b, ok := catalog.Lookup(p.BrandCode)
	if !ok {
		return 0
	}

	return b.DetectionRadius
}

// Cooldown returns the installed brand's cooldown, falling back to
// DefaultCooldown when no brand resolves.
func (p *Property) Cooldown() time.Duration {
	if p.Installed {
		if b, ok := catalog.Lookup(p.BrandCode); ok {
			return b.Cooldown
		}
	}

	return DefaultCooldown
}

// ArmState derives the explicit alarm state at the given instant.
func (p *Property) ArmState(now time.Time) ArmState {
	if !p.Installed || !p.Armed {
		return StateUnarmed
	}

	if p.TriggeredAt != nil && now.Sub(*p.TriggeredAt) < p.Cooldown() {
		return StateCooling
	}

	return StateIdle
}

// Clone returns a deep copy of the property to avoid leaking internal references.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}

	cloned := *p

	if p.TriggeredAt != nil {
		t := *p.TriggeredAt
		cloned.TriggeredAt = &t
	}

	if p.InstalledAt != nil {
		t := *p.InstalledAt
		cloned.InstalledAt = &t
	}

	return &cloned
}
