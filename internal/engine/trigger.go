package engine

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/property-alarm/internal/catalog"
	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
	"github.com/oshokin/property-alarm/internal/logger"
)

// Client event names delivered on trigger.
const (
	ownerAlertEvent      = "alarm:triggered"
	intruderWarningEvent = "alarm:intruder_warning"
)

// trigger drives one attempt through the trigger state machine. The store's
// cooldown gate decides whether the attempt lands; a suppressed attempt is a
// silent no-op. On success it appends the audit event, alerts the owner,
// warns the intruder unless the brand is silent, and dispatches security.
func (e *Engine) trigger(ctx context.Context, propertyID int64, intruderID string) {
	snap, ok, err := e.store.TryTrigger(propertyID, e.clock.Now())
	if err != nil {
		logger.ErrorKV(ctx, "Trigger attempt failed", "property_id", propertyID, "error", err)

		return
	}

	if !ok {
		// Cooling down, or a command disarmed the property mid-tick.
		return
	}

	event := domain.NewEvent(snap, intruderID, *snap.TriggeredAt)
	e.events.Append(event)

	payload := dispatchPayload(snap, intruderID)

	if owner, online := e.registry.FindActor(ctx, snap.OwnerID); online {
		text := fmt.Sprintf("[ALARM] Intruder at %s [%s]! Suspect: %s", snap.Name, snap.BrandCode, intruderID)
		if err := e.messenger.SendMessage(ctx, owner.ID, text); err != nil {
			logger.WarnKV(ctx, "Owner alert delivery failed", "owner", owner.ID, "error", err)
		}

		if err := e.messenger.SendStructuredEvent(ctx, owner.ID, ownerAlertEvent, payload); err != nil {
			logger.WarnKV(ctx, "Owner alert event delivery failed", "owner", owner.ID, "error", err)
		}
	}

	brand, _ := catalog.Lookup(snap.BrandCode)
	if !brand.Silent {
		if err := e.messenger.SendStructuredEvent(ctx, intruderID, intruderWarningEvent, nil); err != nil {
			logger.WarnKV(ctx, "Intruder warning delivery failed", "intruder", intruderID, "error", err)
		}
	}

	dispatch := fmt.Sprintf("[ALARM] Intruder at %s [%s] | Suspect: %s | %.0f, %.0f",
		snap.Name, snap.BrandCode, intruderID, snap.Position.X, snap.Position.Y)
	e.notifier.NotifySecurity(ctx, dispatch, payload)

	logger.InfoKV(ctx, "Alarm triggered",
		"property_id", snap.ID,
		"property", snap.Name,
		"brand", snap.BrandCode,
		"intruder", intruderID,
		"event_id", event.ID)
}

// dispatchPayload builds the structured payload shared by owner alerts and
// security dispatches. Coordinates are rounded: dispatches carry a coarse
// position, not a tracking fix.
func dispatchPayload(p *domain.Property, intruderID string) *structpb.Struct {
	payload, err := structpb.NewStruct(map[string]any{
		"property_id": p.ID,
		"property":    p.Name,
		"brand":       p.BrandCode,
		"intruder":    intruderID,
		"x":           math.Round(p.Position.X),
		"y":           math.Round(p.Position.Y),
	})
	if err != nil {
		// Unreachable with the field types above.
		return &structpb.Struct{}
	}

	return payload
}
