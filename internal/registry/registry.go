// Package registry defines the actor registry the detection engine consumes:
// live actor positions and capability checks. The engine treats the registry
// as an external collaborator; this package ships an in-memory
// implementation and an MQTT presence feed that keeps it current.
package registry

import (
	"context"

	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
)

// Capability names the engine checks.
const (
	// CapabilityAdmin marks administrators.
	CapabilityAdmin = "admin"
	// CapabilitySecurity marks security-faction members who receive dispatches.
	CapabilitySecurity = "security-faction"
)

// Actor is one connected actor with a live position.
type Actor struct {
	// ID identifies the actor.
	ID string
	// Position is the actor's current world position.
	Position domain.Position
}

// Registry exposes live actors and capability lookups.
type Registry interface {
	// ListLiveActors returns every connected actor with its position.
	ListLiveActors(ctx context.Context) ([]Actor, error)
	// FindActor returns a connected actor by id.
	FindActor(ctx context.Context, id string) (Actor, bool)
	// HasCapability reports whether the actor holds the named capability.
	HasCapability(ctx context.Context, actorID, capability string) bool
}
