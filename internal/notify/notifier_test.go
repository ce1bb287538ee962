package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
	"github.com/oshokin/property-alarm/internal/registry"
)

var errDeliveryRefused = errors.New("delivery refused")

// recordingMessenger captures deliveries for assertions.
type recordingMessenger struct {
	// messages maps actor id to received texts.
	messages map[string][]string
	// events maps actor id to received event names.
	events map[string][]string
	// failFor makes deliveries to this actor fail.
	failFor string
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{
		messages: make(map[string][]string),
		events:   make(map[string][]string),
	}
}

func (r *recordingMessenger) SendMessage(_ context.Context, actorID, text string) error {
	if actorID == r.failFor {
		return errDeliveryRefused
	}

	r.messages[actorID] = append(r.messages[actorID], text)

	return nil
}

func (r *recordingMessenger) SendStructuredEvent(_ context.Context, actorID, event string, _ *structpb.Struct) error {
	if actorID == r.failFor {
		return errDeliveryRefused
	}

	r.events[actorID] = append(r.events[actorID], event)

	return nil
}

// TestNotifySecurityFansOutToCapableActors verifies capability filtering.
func TestNotifySecurityFansOutToCapableActors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := registry.NewMemory()
	mem.Upsert("officer", domain.Position{})
	mem.Upsert("admin", domain.Position{})
	mem.Upsert("civilian", domain.Position{})
	mem.Grant("officer", registry.CapabilitySecurity)
	mem.Grant("admin", registry.CapabilityAdmin)

	messenger := newRecordingMessenger()
	n := NewNotifier(mem, messenger, nil)

	n.NotifySecurity(ctx, "intruder at the villa", nil)

	require.Equal(t, []string{"intruder at the villa"}, messenger.messages["officer"])
	require.Equal(t, []string{"intruder at the villa"}, messenger.messages["admin"])
	require.Empty(t, messenger.messages["civilian"])
	require.Equal(t, []string{dispatchEvent}, messenger.events["officer"])
}

// TestNotifySecuritySwallowsPerRecipientFailures verifies best-effort fan-out.
func TestNotifySecuritySwallowsPerRecipientFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := registry.NewMemory()
	mem.Upsert("first", domain.Position{})
	mem.Upsert("second", domain.Position{})
	mem.Grant("first", registry.CapabilitySecurity)
	mem.Grant("second", registry.CapabilitySecurity)

	messenger := newRecordingMessenger()
	messenger.failFor = "first"

	n := NewNotifier(mem, messenger, nil)
	n.NotifySecurity(ctx, "dispatch", nil)

	require.Empty(t, messenger.messages["first"])
	require.Equal(t, []string{"dispatch"}, messenger.messages["second"], "failure for one recipient must not stop the rest")
}
