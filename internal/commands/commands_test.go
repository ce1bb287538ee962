package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/property-alarm/internal/clock"
	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
	"github.com/oshokin/property-alarm/internal/engine"
	"github.com/oshokin/property-alarm/internal/notify"
	"github.com/oshokin/property-alarm/internal/registry"
	"github.com/oshokin/property-alarm/internal/repository/eventlog"
	"github.com/oshokin/property-alarm/internal/repository/property"
)

// recordingMessenger captures replies per actor.
type recordingMessenger struct {
	messages map[string][]string
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{messages: make(map[string][]string)}
}

func (r *recordingMessenger) SendMessage(_ context.Context, actorID, text string) error {
	r.messages[actorID] = append(r.messages[actorID], text)

	return nil
}

func (r *recordingMessenger) SendStructuredEvent(context.Context, string, string, *structpb.Struct) error {
	return nil
}

// fixture bundles the command handler with its collaborators.
type fixture struct {
	store     *property.Store
	events    *eventlog.Log
	reg       *registry.Memory
	messenger *recordingMessenger
	clk       *clock.Fake
	handler   *Handler
}

func newFixture() *fixture {
	store := property.NewStore()
	events := eventlog.NewLog()
	reg := registry.NewMemory()
	messenger := newRecordingMessenger()
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	eng := engine.New(engine.Params{
		Store:     store,
		Events:    events,
		Registry:  reg,
		Messenger: messenger,
		Notifier:  notify.NewNotifier(reg, messenger, nil),
		Clock:     clk,
	})

	return &fixture{
		store:     store,
		events:    events,
		reg:       reg,
		messenger: messenger,
		clk:       clk,
		handler:   NewHandler(store, events, eng, reg, messenger, clk),
	}
}

// last returns the most recent reply sent to the actor.
func (f *fixture) last(actorID string) string {
	replies := f.messenger.messages[actorID]
	if len(replies) == 0 {
		return ""
	}

	return replies[len(replies)-1]
}

// TestCreatePropertyRequiresAdmin verifies gating and registration.
func TestCreatePropertyRequiresAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	f.reg.Upsert("carol", domain.Position{X: 7})

	f.handler.Execute(ctx, "carol", "/createproperty Mirror Park Residence")
	require.Equal(t, "No permission.", f.last("carol"))
	require.Empty(t, f.store.Snapshot())

	f.reg.Grant("carol", registry.CapabilityAdmin)
	f.handler.Execute(ctx, "carol", "/createproperty Mirror Park Residence")
	require.Equal(t, "Property 'Mirror Park Residence' created with ID #1.", f.last("carol"))

	snapshot := f.store.Snapshot()
	require.Len(t, snapshot, 1)
	require.Equal(t, "Mirror Park Residence", snapshot[0].Name)
	require.InDelta(t, 7, snapshot[0].Position.X, 1e-9, "registered at the admin's position")
	require.Equal(t, domain.OwnerUnassigned, snapshot[0].OwnerID)
}

// TestSetOwner verifies gating, argument parsing and reassignment.
func TestSetOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	id := f.store.Register("Villa", domain.Position{}, domain.OwnerUnassigned)

	f.reg.Upsert("root", domain.Position{})
	f.reg.Grant("root", registry.CapabilityAdmin)

	f.handler.Execute(ctx, "root", "/setowner nonsense alice")
	require.Contains(t, f.last("root"), "Usage:")

	f.handler.Execute(ctx, "root", "/setowner 42 alice")
	require.Equal(t, "Property not found.", f.last("root"))

	f.handler.Execute(ctx, "root", "/setowner 1 alice")
	require.Equal(t, "Property #1 owner set to alice.", f.last("root"))

	p, err := f.store.Get(id)
	require.NoError(t, err)
	require.Equal(t, "alice", p.OwnerID)
}

// TestInstallFlow verifies the catalog listing, brand validation and installation.
func TestInstallFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	f.reg.Upsert("alice", domain.Position{})

	f.handler.Execute(ctx, "alice", "/secinstall")
	require.Equal(t, "You don't own any registered property.", f.last("alice"))

	f.store.Register("Villa", domain.Position{}, "alice")

	// Bare command lists all six brands plus header and usage.
	f.handler.Execute(ctx, "alice", "/secinstall")
	require.Len(t, f.messenger.messages["alice"], 1+8)
	require.Contains(t, f.messenger.messages["alice"][2], "SENTINEL")
	require.Contains(t, f.messenger.messages["alice"][7], "$15,000/mo")

	f.handler.Execute(ctx, "alice", "/secinstall ACME")
	require.Equal(t, "Unknown brand 'ACME'. Use /secinstall to see available brands.", f.last("alice"))

	f.handler.Execute(ctx, "alice", "/secinstall viper")
	require.Equal(t,
		"Monthly subscription: $2,500 | Detection radius: 15m | Alarm is now ARMED.",
		f.last("alice"))

	p, ok := f.store.FindByOwner("alice")
	require.True(t, ok)
	require.True(t, p.Armed)
	require.Equal(t, "VIPER", p.BrandCode)
}

// TestUninstallFlow verifies removal and the not-installed reply.
func TestUninstallFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	f.reg.Upsert("alice", domain.Position{})
	f.store.Register("Villa", domain.Position{}, "alice")

	f.handler.Execute(ctx, "alice", "/secuninstall")
	require.Equal(t, "No alarm installed on your property.", f.last("alice"))

	f.handler.Execute(ctx, "alice", "/secinstall NEXUS")
	f.handler.Execute(ctx, "alice", "/secuninstall")
	require.Equal(t, "[UNINSTALLED] Alarm system removed from Villa. Brand: NEXUS.", f.last("alice"))
}

// TestAlarmStatusListing verifies the security-gated status listing.
func TestAlarmStatusListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	f.store.Register("Bare Villa", domain.Position{}, "alice")

	armed := f.store.Register("Armed Villa", domain.Position{}, "bob")
	_, err := f.store.Install(armed, "VIPER", f.clk.Now())
	require.NoError(t, err)

	_, ok, err := f.store.TryTrigger(armed, f.clk.Now())
	require.NoError(t, err)
	require.True(t, ok)

	f.reg.Upsert("civilian", domain.Position{})
	f.handler.Execute(ctx, "civilian", "/alarmstatus")
	require.Equal(t, "No permission.", f.last("civilian"))

	f.reg.Upsert("officer", domain.Position{})
	f.reg.Grant("officer", registry.CapabilitySecurity)
	f.handler.Execute(ctx, "officer", "/alarmstatus")

	replies := f.messenger.messages["officer"]
	require.Len(t, replies, 3)
	require.Equal(t, "--- Property Alarm Status ---", replies[0])
	require.Equal(t, "#1 Bare Villa [NO ALARM]", replies[1])
	require.Equal(t, "#2 Armed Villa [VIPER] ARMED | Last triggered: 12:00", replies[2])
}

// TestRecentAlarmListing verifies the gated recent-events listing.
func TestRecentAlarmListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	f.reg.Upsert("root", domain.Position{})
	f.reg.Grant("root", registry.CapabilityAdmin)

	f.handler.Execute(ctx, "root", "/recentalarm")
	require.Equal(t, "No alarm events recorded.", f.last("root"))

	p := &domain.Property{ID: 1, Name: "Villa", Installed: true, BrandCode: "VIPER"}
	f.events.Append(domain.NewEvent(p, "bob", f.clk.Now()))

	f.handler.Execute(ctx, "root", "/recentalarm")
	require.Equal(t, "[ACTIVE] 12:00:00 | Villa [VIPER] | Suspect: bob", f.last("root"))
}

// TestArmStatus verifies the owner's status query.
func TestArmStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	f.reg.Upsert("alice", domain.Position{})
	f.store.Register("Villa", domain.Position{}, "alice")

	f.handler.Execute(ctx, "alice", "/alarm status")
	require.Equal(t, "No alarm installed. Use /secinstall to install one.", f.last("alice"))

	f.handler.Execute(ctx, "alice", "/secinstall FORTRESS")
	f.handler.Execute(ctx, "alice", "/alarm status")
	require.Equal(t, "Villa [FORTRESS]: ARMED", f.last("alice"))

	f.handler.Execute(ctx, "alice", "/alarm off")
	require.Equal(t, "Usage: /alarm [status] | Use /stopalarm to stop a triggered alarm.", f.last("alice"))
}

// TestStopAlarmCommand verifies the stop flow end to end through the engine.
func TestStopAlarmCommand(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	id := f.store.Register("Villa", domain.Position{}, "alice")
	_, err := f.store.Install(id, "VIPER", f.clk.Now())
	require.NoError(t, err)

	f.reg.Upsert("alice", domain.Position{X: 10})
	f.reg.Upsert("mallory", domain.Position{X: 10})

	f.handler.Execute(ctx, "alice", "/stopalarm")
	require.Equal(t, "No triggered alarm nearby. Move closer to the property.", f.last("alice"))

	_, ok, err := f.store.TryTrigger(id, f.clk.Now())
	require.NoError(t, err)
	require.True(t, ok)

	f.handler.Execute(ctx, "mallory", "/stopalarm")
	require.Equal(t, "You are not the owner of this property.", f.last("mallory"))

	f.handler.Execute(ctx, "alice", "/stopalarm")
	require.Equal(t, "[STOPPED] Alarm stopped on Villa. Security has been notified.", f.last("alice"))

	p, err := f.store.Get(id)
	require.NoError(t, err)
	require.False(t, p.Armed)
	require.Nil(t, p.TriggeredAt)
}

// TestUnknownCommand verifies the fallback reply.
func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()

	f.reg.Upsert("alice", domain.Position{})
	f.handler.Execute(ctx, "alice", "/teleport home")
	require.Equal(t, "Unknown command 'teleport'.", f.last("alice"))

	f.handler.Execute(ctx, "alice", "   ")
	require.Len(t, f.messenger.messages["alice"], 1)
}

// TestFormatPrice covers separator placement.
func TestFormatPrice(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		0:       "0",
		500:     "500",
		1200:    "1,200",
		15000:   "15,000",
		1234567: "1,234,567",
	}
	for amount, want := range cases {
		require.Equal(t, want, formatPrice(amount))
	}
}
