// Package notify carries messages out of the engine: the Messenger
// abstraction over the simulation's messaging facility, the security
// fan-out Notifier, and the MQTT adapters used in production.
package notify

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
)

// Messenger delivers messages and structured client events to actors.
// Implementations are thin I/O wrappers; delivery failures are returned to
// the caller, which decides whether they matter.
type Messenger interface {
	// SendMessage delivers a plain-text message to the actor.
	SendMessage(ctx context.Context, actorID, text string) error
	// SendStructuredEvent delivers a named event with an optional payload
	// to the actor's client.
	SendStructuredEvent(ctx context.Context, actorID, event string, payload *structpb.Struct) error
}
