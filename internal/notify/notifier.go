package notify

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/property-alarm/internal/logger"
	"github.com/oshokin/property-alarm/internal/registry"
)

// dispatchEvent is the structured event name for security dispatches.
const dispatchEvent = "alarm:dispatch"

// Notifier fans a dispatch out to every connected actor holding the
// security-faction or admin capability. Fan-out is best-effort: a failed
// delivery to one recipient is logged and never blocks the rest.
type Notifier struct {
	// registry supplies live actors and capability checks.
	registry registry.Registry
	// messenger delivers the dispatch to each recipient.
	messenger Messenger
	// bridge optionally mirrors dispatches to an external console feed.
	bridge *DispatchBridge
}

// NewNotifier wires the registry and messenger into a security notifier.
// The bridge may be nil.
func NewNotifier(reg registry.Registry, messenger Messenger, bridge *DispatchBridge) *Notifier {
	return &Notifier{
		registry:  reg,
		messenger: messenger,
		bridge:    bridge,
	}
}

// NotifySecurity delivers the message and structured payload to all
// security and admin actors.
func (n *Notifier) NotifySecurity(ctx context.Context, message string, payload *structpb.Struct) {
	actors, err := n.registry.ListLiveActors(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Security fan-out aborted: actor listing failed", "error", err)

		return
	}

	for _, a := range actors {
		if !n.registry.HasCapability(ctx, a.ID, registry.CapabilitySecurity) &&
			!n.registry.HasCapability(ctx, a.ID, registry.CapabilityAdmin) {
			continue
		}

		if err := n.messenger.SendMessage(ctx, a.ID, message); err != nil {
			logger.WarnKV(ctx, "Dispatch message delivery failed", "actor", a.ID, "error", err)
		}

		if err := n.messenger.SendStructuredEvent(ctx, a.ID, dispatchEvent, payload); err != nil {
			logger.WarnKV(ctx, "Dispatch event delivery failed", "actor", a.ID, "error", err)
		}
	}

	if n.bridge == nil {
		return
	}

	if err := n.bridge.Publish(ctx, payload); err != nil {
		logger.WarnKV(ctx, "Dispatch bridge publish failed", "error", err)
	}
}
