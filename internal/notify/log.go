package notify

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/property-alarm/internal/logger"
)

// LogMessenger writes deliveries to the service log. It stands in for the
// real messaging facility when no broker is configured.
type LogMessenger struct{}

// NewLogMessenger creates a log-backed messenger.
func NewLogMessenger() *LogMessenger {
	return &LogMessenger{}
}

// SendMessage logs the message instead of delivering it.
func (*LogMessenger) SendMessage(ctx context.Context, actorID, text string) error {
	logger.InfoKV(ctx, "Message", "actor", actorID, "text", text)

	return nil
}

// SendStructuredEvent logs the event instead of delivering it.
func (*LogMessenger) SendStructuredEvent(ctx context.Context, actorID, event string, payload *structpb.Struct) error {
	logger.InfoKV(ctx, "Client event", "actor", actorID, "event", event, "payload", payload.AsMap())

	return nil
}
