package sentry

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/property-alarm/internal/broker"
	"github.com/oshokin/property-alarm/internal/clock"
	"github.com/oshokin/property-alarm/internal/commands"
	"github.com/oshokin/property-alarm/internal/config"
	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
	"github.com/oshokin/property-alarm/internal/engine"
	"github.com/oshokin/property-alarm/internal/logger"
	"github.com/oshokin/property-alarm/internal/notify"
	"github.com/oshokin/property-alarm/internal/registry"
	"github.com/oshokin/property-alarm/internal/repository/eventlog"
	"github.com/oshokin/property-alarm/internal/repository/property"
	"github.com/oshokin/property-alarm/internal/version"
)

// disconnectQuiesceMs is the time given to the MQTT client to flush
// in-flight messages on shutdown.
const disconnectQuiesceMs = 250

// commandQoS is the subscription QoS for the per-actor command topics.
const commandQoS = 1

// Options controls the alarm-sentry process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// LogLevel provides an optional log level override.
	LogLevel string
	// ScanInterval provides an optional scan interval override,
	// e.g. "500ms". Empty means use the configured value.
	ScanInterval string
}

// Run starts the detection engine and blocks until the context is canceled.
// Configuration is loaded first; when a broker is configured, messaging,
// presence and the command surface ride on MQTT, otherwise deliveries are
// logged and the registry stays empty until populated by other means.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, version.AppName)

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = applyOverrides(settings, opts); err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	} else if settings.LogLevel != "" {
		logger.SetLevel(zapcore.InfoLevel)
		logger.WarnKV(ctx, "Unknown log level, falling back to info", "log_level", settings.LogLevel)
	}

	store := property.NewStore()
	events := eventlog.NewLog()
	mem := registry.NewMemory()

	seedProperties(ctx, store, settings.Properties)

	var (
		messenger notify.Messenger = notify.NewLogMessenger()
		bridge    *notify.DispatchBridge
		client    mqtt.Client
		feed      *registry.PresenceFeed
	)

	if settings.Broker != nil {
		client, err = broker.Dial(settings.Broker, "")
		if err != nil {
			return fmt.Errorf("dial broker: %w", err)
		}

		defer client.Disconnect(disconnectQuiesceMs)

		messenger = notify.NewBrokerMessenger(client, settings.Broker.TopicPrefix)

		if settings.Broker.DispatchTopic != "" {
			bridge = notify.NewDispatchBridge(client, settings.Broker.DispatchTopic)
		}

		feed, err = registry.NewPresenceFeed(ctx, client, settings.Broker.TopicPrefix, mem)
		if err != nil {
			return fmt.Errorf("start presence feed: %w", err)
		}

		defer feed.Close()
	}

	notifier := notify.NewNotifier(mem, messenger, bridge)

	eng := engine.New(engine.Params{
		Store:        store,
		Events:       events,
		Registry:     mem,
		Messenger:    messenger,
		Notifier:     notifier,
		Clock:        clock.System(),
		ScanInterval: settings.ScanInterval,
		StopMargin:   settings.StopMargin,
	})

	handler := commands.NewHandler(store, events, eng, mem, messenger, clock.System())

	if client != nil {
		if err = subscribeCommands(ctx, client, settings.Broker.TopicPrefix, handler); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Alarm sentry started",
		"scan_interval", settings.ScanInterval.String(),
		"properties", len(settings.Properties),
		"broker", settings.Broker != nil)

	eng.Run(ctx)

	logger.Info(ctx, "Alarm sentry stopped")

	return nil
}

// applyOverrides layers command line options on top of the loaded settings.
func applyOverrides(settings *config.Config, opts *Options) error {
	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if opts.ScanInterval != "" {
		interval, err := config.ParseScanInterval(opts.ScanInterval)
		if err != nil {
			return fmt.Errorf("parse scan interval: %w", err)
		}

		settings.ScanInterval = interval
	}

	return nil
}

// seedProperties registers the configured properties in order, so their ids
// are stable across restarts of the same configuration.
func seedProperties(ctx context.Context, store *property.Store, seeds []config.SeedProperty) {
	for _, seed := range seeds {
		owner := seed.Owner
		if owner == "" {
			owner = domain.OwnerUnassigned
		}

		id := store.Register(seed.Name, domain.Position{X: seed.X, Y: seed.Y, Z: seed.Z}, owner)

		logger.DebugKV(ctx, "Property registered", "id", id, "name", seed.Name, "owner", owner)
	}
}

// subscribeCommands routes actor command messages into the handler.
// Execution is synchronous inside the paho callback; the handler replies
// to the actor itself, so nothing is returned here.
func subscribeCommands(ctx context.Context, client mqtt.Client, prefix string, handler *commands.Handler) error {
	topic := broker.ActorTopic(prefix, "+", "commands")

	token := client.Subscribe(topic, commandQoS, func(_ mqtt.Client, msg mqtt.Message) {
		actorID, ok := broker.ActorID(msg.Topic())
		if !ok {
			logger.WarnKV(ctx, "Command on unexpected topic", "topic", msg.Topic())
			return
		}

		handler.Execute(ctx, actorID, string(msg.Payload()))
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}

	return nil
}
