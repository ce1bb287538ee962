package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/property-alarm/internal/broker"
	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
	"github.com/oshokin/property-alarm/internal/logger"
)

// subscribeQoS requests at-least-once delivery for presence updates.
const subscribeQoS = 1

// positionPayload is the JSON body published on position topics.
type positionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PresenceFeed keeps a Memory registry current from the broker's per-actor
// position and capability topics. An empty position payload (the MQTT idiom
// for a cleared retained value) disconnects the actor.
type PresenceFeed struct {
	// mem is the registry being fed.
	mem *Memory
	// client is the shared broker connection.
	client mqtt.Client
	// prefix is the topic tree root.
	prefix string
}

// NewPresenceFeed subscribes the registry to the broker's presence topics.
func NewPresenceFeed(ctx context.Context, client mqtt.Client, prefix string, mem *Memory) (*PresenceFeed, error) {
	f := &PresenceFeed{
		mem:    mem,
		client: client,
		prefix: prefix,
	}

	for _, leaf := range []string{"position", "capabilities"} {
		topic := broker.ActorTopic(prefix, "+", leaf)

		token := client.Subscribe(topic, subscribeQoS, func(_ mqtt.Client, msg mqtt.Message) {
			f.handleMessage(ctx, msg.Topic(), msg.Payload())
		})
		if token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("subscribe to %s: %w", topic, token.Error())
		}
	}

	return f, nil
}

// handleMessage routes one presence update into the registry.
// A bad payload is logged and skipped so one malformed publisher cannot
// stall the feed.
func (f *PresenceFeed) handleMessage(ctx context.Context, topic string, payload []byte) {
	actorID, ok := broker.ActorID(topic)
	if !ok {
		logger.WarnKV(ctx, "Presence update on unexpected topic", "topic", topic)

		return
	}

	switch {
	case len(payload) == 0:
		f.mem.Remove(actorID)
	case isCapabilitiesTopic(topic):
		var capabilities []string
		if err := json.Unmarshal(payload, &capabilities); err != nil {
			logger.WarnKV(ctx, "Malformed capabilities payload", "topic", topic, "error", err)

			return
		}

		f.mem.SetCapabilities(actorID, capabilities)
	default:
		var pos positionPayload
		if err := json.Unmarshal(payload, &pos); err != nil {
			logger.WarnKV(ctx, "Malformed position payload", "topic", topic, "error", err)

			return
		}

		f.mem.Upsert(actorID, domain.Position{X: pos.X, Y: pos.Y, Z: pos.Z})
	}
}

// Close unsubscribes from the presence topics.
func (f *PresenceFeed) Close() {
	topics := []string{
		broker.ActorTopic(f.prefix, "+", "position"),
		broker.ActorTopic(f.prefix, "+", "capabilities"),
	}

	token := f.client.Unsubscribe(topics...)
	token.Wait()
}

// isCapabilitiesTopic reports whether the topic is a capabilities leaf.
func isCapabilitiesTopic(topic string) bool {
	return strings.HasSuffix(topic, "/capabilities")
}
