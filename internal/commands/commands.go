// Package commands implements the administrative text command surface. It
// parses commands issued by actors, enforces admin and security gating via
// the actor registry, and maps each command 1:1 onto a core operation.
// Replies go back through the Messenger.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/property-alarm/internal/catalog"
	"github.com/oshokin/property-alarm/internal/clock"
	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
	"github.com/oshokin/property-alarm/internal/engine"
	"github.com/oshokin/property-alarm/internal/logger"
	"github.com/oshokin/property-alarm/internal/notify"
	"github.com/oshokin/property-alarm/internal/registry"
	"github.com/oshokin/property-alarm/internal/repository/eventlog"
	"github.com/oshokin/property-alarm/internal/repository/property"
)

const (
	// recentAlarmLimit caps the /recentalarm listing.
	recentAlarmLimit = 10
	// recentTriggerWindow is how long a trigger shows up in /alarmstatus.
	recentTriggerWindow = time.Hour

	// replyNoPermission is the gate failure reply.
	replyNoPermission = "No permission."
	// replyNoProperty is the reply for owner commands without an owned property.
	replyNoProperty = "You don't own any registered property."
)

// Handler dispatches actor-issued text commands onto the core operations.
type Handler struct {
	// store is the property store.
	store *property.Store
	// events is the alarm event log.
	events *eventlog.Log
	// engine provides the stop-alarm operation.
	engine *engine.Engine
	// registry supplies positions and capability checks.
	registry registry.Registry
	// messenger carries replies back to the issuing actor.
	messenger notify.Messenger
	// clock is the time source shared with the engine.
	clock clock.Clock
}

// NewHandler wires the command surface.
func NewHandler(
	store *property.Store,
	events *eventlog.Log,
	eng *engine.Engine,
	reg registry.Registry,
	messenger notify.Messenger,
	clk clock.Clock,
) *Handler {
	if clk == nil {
		clk = clock.System()
	}

	return &Handler{
		store:     store,
		events:    events,
		engine:    eng,
		registry:  reg,
		messenger: messenger,
		clock:     clk,
	}
}

// Execute parses one command line issued by the actor and runs it.
// Every outcome, including failure, is communicated back as a reply.
func (h *Handler) Execute(ctx context.Context, actorID, input string) {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "/"))

	fields := strings.Fields(input)
	if len(fields) == 0 {
		return
	}

	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "createproperty":
		h.createProperty(ctx, actorID, args)
	case "setowner":
		h.setOwner(ctx, actorID, args)
	case "secinstall":
		h.install(ctx, actorID, args)
	case "secuninstall":
		h.uninstall(ctx, actorID)
	case "alarmstatus":
		h.alarmStatus(ctx, actorID)
	case "recentalarm":
		h.recentAlarms(ctx, actorID)
	case "alarm":
		h.armStatus(ctx, actorID, args)
	case "stopalarm":
		h.stopAlarm(ctx, actorID)
	default:
		h.reply(ctx, actorID, fmt.Sprintf("Unknown command '%s'.", name))
	}
}

// createProperty registers a new property at the issuing admin's position.
func (h *Handler) createProperty(ctx context.Context, actorID string, args []string) {
	if !h.registry.HasCapability(ctx, actorID, registry.CapabilityAdmin) {
		h.reply(ctx, actorID, replyNoPermission)

		return
	}

	name := strings.Join(args, " ")
	if name == "" {
		h.reply(ctx, actorID, "Usage: /createproperty [name]")

		return
	}

	actor, online := h.registry.FindActor(ctx, actorID)
	if !online {
		return
	}

	id := h.store.Register(name, actor.Position, domain.OwnerUnassigned)
	h.reply(ctx, actorID, fmt.Sprintf("Property '%s' created with ID #%d.", name, id))
}

// setOwner reassigns a property's owner.
func (h *Handler) setOwner(ctx context.Context, actorID string, args []string) {
	if !h.registry.HasCapability(ctx, actorID, registry.CapabilityAdmin) {
		h.reply(ctx, actorID, replyNoPermission)

		return
	}

	const wantArgs = 2
	if len(args) != wantArgs {
		h.reply(ctx, actorID, "Usage: /setowner [id] [owner]")

		return
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.reply(ctx, actorID, "Usage: /setowner [id] [owner]")

		return
	}

	if err := h.store.SetOwner(id, args[1]); err != nil {
		h.reply(ctx, actorID, "Property not found.")

		return
	}

	h.reply(ctx, actorID, fmt.Sprintf("Property #%d owner set to %s.", id, args[1]))
}

// install fits the issuer's property with a brand, or lists the catalog
// when no brand is given.
func (h *Handler) install(ctx context.Context, actorID string, args []string) {
	prop, owns := h.store.FindByOwner(actorID)
	if !owns {
		h.reply(ctx, actorID, replyNoProperty)

		return
	}

	if len(args) == 0 {
		h.reply(ctx, actorID, "--- Available Alarm Brands ---")

		for _, e := range catalog.All() {
			h.reply(ctx, actorID, fmt.Sprintf("%s | %s [%s] $%s/mo | %s",
				e.Code, e.Brand.Name, e.Brand.Tier, formatPrice(e.Brand.MonthlyPrice), e.Brand.Description))
		}

		h.reply(ctx, actorID, "Usage: /secinstall [brand]")

		return
	}

	brand, err := h.store.Install(prop.ID, args[0], h.clock.Now())
	if err != nil {
		if errors.Is(err, domain.ErrUnknownBrand) {
			h.reply(ctx, actorID, fmt.Sprintf("Unknown brand '%s'. Use /secinstall to see available brands.", args[0]))

			return
		}

		h.replyError(ctx, actorID, "install alarm", err)

		return
	}

	h.reply(ctx, actorID, fmt.Sprintf("[INSTALLED] %s (%s) installed at %s.", brand.Name, brand.Tier, prop.Name))
	h.reply(ctx, actorID, fmt.Sprintf("Monthly subscription: $%s | Detection radius: %.0fm | Alarm is now ARMED.",
		formatPrice(brand.MonthlyPrice), brand.DetectionRadius))
}

// uninstall removes the alarm from the issuer's property.
func (h *Handler) uninstall(ctx context.Context, actorID string) {
	prop, owns := h.store.FindByOwner(actorID)
	if !owns {
		h.reply(ctx, actorID, replyNoProperty)

		return
	}

	oldBrand, err := h.store.Uninstall(prop.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoAlarmInstalled) {
			h.reply(ctx, actorID, "No alarm installed on your property.")

			return
		}

		h.replyError(ctx, actorID, "uninstall alarm", err)

		return
	}

	h.reply(ctx, actorID, fmt.Sprintf("[UNINSTALLED] Alarm system removed from %s. Brand: %s.", prop.Name, oldBrand))
}

// alarmStatus lists every property and its alarm state for security personnel.
func (h *Handler) alarmStatus(ctx context.Context, actorID string) {
	if !h.isSecurityOrAdmin(ctx, actorID) {
		h.reply(ctx, actorID, replyNoPermission)

		return
	}

	now := h.clock.Now()
	h.reply(ctx, actorID, "--- Property Alarm Status ---")

	for _, p := range h.store.Snapshot() {
		if !p.Installed {
			h.reply(ctx, actorID, fmt.Sprintf("#%d %s [NO ALARM]", p.ID, p.Name))

			continue
		}

		status := "DISARMED"
		if p.Armed {
			status = "ARMED"
		}

		lastTrigger := ""
		if p.TriggeredAt != nil && now.Sub(*p.TriggeredAt) < recentTriggerWindow {
			lastTrigger = " | Last triggered: " + p.TriggeredAt.Format("15:04")
		}

		h.reply(ctx, actorID, fmt.Sprintf("#%d %s [%s] %s%s", p.ID, p.Name, p.BrandCode, status, lastTrigger))
	}
}

// recentAlarms lists the latest alarm events for security personnel.
func (h *Handler) recentAlarms(ctx context.Context, actorID string) {
	if !h.isSecurityOrAdmin(ctx, actorID) {
		h.reply(ctx, actorID, replyNoPermission)

		return
	}

	recent := h.events.Recent(recentAlarmLimit)
	if len(recent) == 0 {
		h.reply(ctx, actorID, "No alarm events recorded.")

		return
	}

	h.reply(ctx, actorID, "--- Recent Alarms ---")

	for _, e := range recent {
		tag := "[ACTIVE]"
		if e.Resolved {
			tag = "[RESOLVED]"
		}

		h.reply(ctx, actorID, fmt.Sprintf("%s %s | %s [%s] | Suspect: %s",
			tag, e.Timestamp.Format("15:04:05"), e.PropertyName, e.BrandCode, e.IntruderID))
	}
}

// armStatus reports the issuer's own alarm state.
func (h *Handler) armStatus(ctx context.Context, actorID string, args []string) {
	prop, owns := h.store.FindByOwner(actorID)
	if !owns {
		h.reply(ctx, actorID, replyNoProperty)

		return
	}

	if !prop.Installed {
		h.reply(ctx, actorID, "No alarm installed. Use /secinstall to install one.")

		return
	}

	if len(args) == 1 && strings.EqualFold(args[0], "status") {
		status := "STOPPED"
		if prop.Armed {
			status = "ARMED"
		}

		h.reply(ctx, actorID, fmt.Sprintf("%s [%s]: %s", prop.Name, prop.BrandCode, status))

		return
	}

	h.reply(ctx, actorID, "Usage: /alarm [status] | Use /stopalarm to stop a triggered alarm.")
}

// stopAlarm stops the triggered alarm nearest to the issuer.
func (h *Handler) stopAlarm(ctx context.Context, actorID string) {
	stopped, err := h.engine.StopAlarm(ctx, actorID)

	switch {
	case err == nil:
		h.reply(ctx, actorID, fmt.Sprintf("[STOPPED] Alarm stopped on %s. Security has been notified.", stopped.Name))
	case errors.Is(err, domain.ErrNoActiveAlarm), errors.Is(err, domain.ErrNotFound):
		h.reply(ctx, actorID, "No triggered alarm nearby. Move closer to the property.")
	case errors.Is(err, domain.ErrForbidden):
		h.reply(ctx, actorID, "You are not the owner of this property.")
	default:
		h.replyError(ctx, actorID, "stop alarm", err)
	}
}

// isSecurityOrAdmin reports whether the actor may use security commands.
func (h *Handler) isSecurityOrAdmin(ctx context.Context, actorID string) bool {
	return h.registry.HasCapability(ctx, actorID, registry.CapabilitySecurity) ||
		h.registry.HasCapability(ctx, actorID, registry.CapabilityAdmin)
}

// reply sends a text reply, logging delivery failures.
func (h *Handler) reply(ctx context.Context, actorID, text string) {
	if err := h.messenger.SendMessage(ctx, actorID, text); err != nil {
		logger.DebugKV(ctx, "Command reply delivery failed", "actor", actorID, "error", err)
	}
}

// replyError logs an unexpected failure and sends a generic reply.
func (h *Handler) replyError(ctx context.Context, actorID, operation string, err error) {
	logger.ErrorKV(ctx, "Command failed", "operation", operation, "actor", actorID, "error", err)
	h.reply(ctx, actorID, "Something went wrong. Try again.")
}

// formatPrice renders an amount with thousands separators, e.g. 15000 -> "15,000".
func formatPrice(amount int) string {
	s := strconv.Itoa(amount)

	var b strings.Builder

	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(digit)
	}

	return b.String()
}
