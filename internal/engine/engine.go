package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/property-alarm/internal/clock"
	"github.com/oshokin/property-alarm/internal/logger"
	"github.com/oshokin/property-alarm/internal/notify"
	"github.com/oshokin/property-alarm/internal/registry"
	"github.com/oshokin/property-alarm/internal/repository/eventlog"
	"github.com/oshokin/property-alarm/internal/repository/property"
)

const (
	// defaultScanInterval is the tick period when none is configured.
	defaultScanInterval = 2 * time.Second
	// defaultStopMargin widens the detection radius for stop-alarm proximity checks.
	defaultStopMargin = 5.0
)

// presenceKey identifies one (actor, property) pair for edge detection.
type presenceKey struct {
	actorID    string
	propertyID int64
}

// Params wires an Engine's collaborators.
type Params struct {
	// Store is the property store.
	Store *property.Store
	// Events is the alarm event log.
	Events *eventlog.Log
	// Registry supplies live actors and capability checks.
	Registry registry.Registry
	// Messenger delivers owner and intruder notifications.
	Messenger notify.Messenger
	// Notifier fans dispatches out to security personnel.
	Notifier *notify.Notifier
	// Clock is the time source; defaults to the system clock.
	Clock clock.Clock
	// ScanInterval is the tick period; defaults to 2 seconds.
	ScanInterval time.Duration
	// StopMargin widens the stop-alarm search radius; defaults to 5 units.
	StopMargin float64
}

// Engine runs the proximity scan and owns the trigger state machine.
type Engine struct {
	store     *property.Store
	events    *eventlog.Log
	registry  registry.Registry
	messenger notify.Messenger
	notifier  *notify.Notifier
	clock     clock.Clock
	interval  time.Duration
	margin    float64

	// inside tracks which (actor, property) pairs are currently within
	// detection range. Touched only by the scan goroutine.
	inside map[presenceKey]struct{}
}

// New creates an engine from the given collaborators.
func New(p Params) *Engine {
	if p.Clock == nil {
		p.Clock = clock.System()
	}

	if p.ScanInterval <= 0 {
		p.ScanInterval = defaultScanInterval
	}

	if p.StopMargin <= 0 {
		p.StopMargin = defaultStopMargin
	}

	return &Engine{
		store:     p.Store,
		events:    p.Events,
		registry:  p.Registry,
		messenger: p.Messenger,
		notifier:  p.Notifier,
		clock:     p.Clock,
		interval:  p.ScanInterval,
		margin:    p.StopMargin,
		inside:    make(map[presenceKey]struct{}),
	}
}

// Run executes the scan loop until the context is canceled. A failed tick is
// logged and the loop continues; a single bad tick must never stop the scanner.
func (e *Engine) Run(ctx context.Context) {
	logger.InfoKV(ctx, "Detection engine started", "interval", e.interval.String())

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Detection engine stopped")

			return
		case <-ticker.C:
			e.safeTick(ctx)
		}
	}
}

// safeTick runs one tick, containing errors and panics to this iteration.
func (e *Engine) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorKV(ctx, "Scan tick panicked", "panic", r)
		}
	}()

	if err := e.Tick(ctx); err != nil {
		logger.ErrorKV(ctx, "Scan tick failed", "error", err)
	}
}

// Tick performs one proximity scan. For every armed, installed property it
// classifies each candidate actor as inside or outside detection range and
// invokes the trigger on the rising edge only: repeated ticks while an
// intruder loiters inside do not re-trigger, and leaving clears the presence
// mark so a later re-entry can trigger again, independent of the cooldown.
func (e *Engine) Tick(ctx context.Context) error {
	actors, err := e.registry.ListLiveActors(ctx)
	if err != nil {
		return fmt.Errorf("list live actors: %w", err)
	}

	// An actor that disappeared has left every zone; forget their marks so
	// a later return counts as a fresh entry.
	live := make(map[string]struct{}, len(actors))
	for _, actor := range actors {
		live[actor.ID] = struct{}{}
	}

	for key := range e.inside {
		if _, ok := live[key.actorID]; !ok {
			delete(e.inside, key)
		}
	}

	for _, prop := range e.store.Snapshot() {
		if !prop.Installed || !prop.Armed {
			continue
		}

		radius := prop.DetectionRadius()

		for _, actor := range actors {
			if actor.ID == prop.OwnerID {
				continue
			}

			if e.registry.HasCapability(ctx, actor.ID, registry.CapabilitySecurity) ||
				e.registry.HasCapability(ctx, actor.ID, registry.CapabilityAdmin) {
				continue
			}

			key := presenceKey{actorID: actor.ID, propertyID: prop.ID}

			if actor.Position.DistanceTo(prop.Position) > radius {
				delete(e.inside, key)

				continue
			}

			if _, alreadyInside := e.inside[key]; alreadyInside {
				continue
			}

			e.inside[key] = struct{}{}
			e.trigger(ctx, prop.ID, actor.ID)
		}
	}

	return nil
}
