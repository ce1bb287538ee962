package engine

import (
	"context"
	"fmt"

	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
	"github.com/oshokin/property-alarm/internal/logger"
	"github.com/oshokin/property-alarm/internal/registry"
)

// StopAlarm stops the triggered alarm nearest to the requester. The search
// covers properties with an active trigger within detection radius plus the
// stop margin of the requester's position; the nearest qualifying property
// wins. Only that property's owner or an admin may stop it. On success the
// alarm is disarmed, the trigger cleared, every unresolved event for the
// property resolved, and security informed that no response is needed.
func (e *Engine) StopAlarm(ctx context.Context, requesterID string) (*domain.Property, error) {
	requester, online := e.registry.FindActor(ctx, requesterID)
	if !online {
		return nil, fmt.Errorf("actor %q: %w", requesterID, domain.ErrNotFound)
	}

	var (
		nearest     *domain.Property
		nearestDist float64
	)

	for _, prop := range e.store.Snapshot() {
		if !prop.Installed || prop.TriggeredAt == nil {
			continue
		}

		dist := requester.Position.DistanceTo(prop.Position)
		if dist > prop.DetectionRadius()+e.margin {
			continue
		}

		if nearest == nil || dist < nearestDist {
			nearest, nearestDist = prop, dist
		}
	}

	if nearest == nil {
		return nil, domain.ErrNoActiveAlarm
	}

	if nearest.OwnerID != requesterID && !e.registry.HasCapability(ctx, requesterID, registry.CapabilityAdmin) {
		return nil, fmt.Errorf("stop alarm on property %d: %w", nearest.ID, domain.ErrForbidden)
	}

	if err := e.store.Disarm(nearest.ID); err != nil {
		return nil, fmt.Errorf("disarm property %d: %w", nearest.ID, err)
	}

	resolved := e.events.ResolveActiveFor(nearest.ID)

	dispatch := fmt.Sprintf("[ALARM STOPPED] %s, stopped by %s. No response needed.", nearest.Name, requesterID)
	e.notifier.NotifySecurity(ctx, dispatch, dispatchPayload(nearest, ""))

	logger.InfoKV(ctx, "Alarm stopped",
		"property_id", nearest.ID,
		"property", nearest.Name,
		"requester", requesterID,
		"resolved_events", resolved)

	stopped, err := e.store.Get(nearest.ID)
	if err != nil {
		return nil, err
	}

	return stopped, nil
}
