package notify

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/property-alarm/internal/broker"
)

// publishQoS requests at-least-once delivery for outgoing messages.
const publishQoS = 1

// BrokerMessenger delivers messages and client events over MQTT, one topic
// per actor. Structured payloads go out as protobuf JSON.
type BrokerMessenger struct {
	// client is the shared broker connection.
	client mqtt.Client
	// prefix is the topic tree root.
	prefix string
}

// NewBrokerMessenger wraps an MQTT connection as a Messenger.
func NewBrokerMessenger(client mqtt.Client, prefix string) *BrokerMessenger {
	return &BrokerMessenger{
		client: client,
		prefix: prefix,
	}
}

// SendMessage publishes a plain-text message on the actor's chat topic.
func (m *BrokerMessenger) SendMessage(_ context.Context, actorID, text string) error {
	topic := broker.ActorTopic(m.prefix, actorID, "chat")

	token := m.client.Publish(topic, publishQoS, false, []byte(text))
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}

	return nil
}

// SendStructuredEvent publishes a named event on the actor's event topic.
// A nil payload goes out as an empty JSON object.
func (m *BrokerMessenger) SendStructuredEvent(_ context.Context, actorID, event string, payload *structpb.Struct) error {
	if payload == nil {
		payload = &structpb.Struct{}
	}

	body, err := protojson.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	topic := broker.ActorTopic(m.prefix, actorID, "events/"+event)

	token := m.client.Publish(topic, publishQoS, false, body)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}

	return nil
}

// DispatchBridge mirrors security dispatches to an external console feed.
// The payload is retained so a console connecting late sees the last dispatch.
type DispatchBridge struct {
	// client is the shared broker connection.
	client mqtt.Client
	// topic receives dispatch payloads.
	topic string
}

// NewDispatchBridge creates a bridge publishing to the given topic.
func NewDispatchBridge(client mqtt.Client, topic string) *DispatchBridge {
	return &DispatchBridge{
		client: client,
		topic:  topic,
	}
}

// Publish sends one dispatch payload as protobuf JSON.
func (b *DispatchBridge) Publish(_ context.Context, payload *structpb.Struct) error {
	if payload == nil {
		payload = &structpb.Struct{}
	}

	body, err := protojson.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode dispatch payload: %w", err)
	}

	token := b.client.Publish(b.topic, publishQoS, true, body)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", b.topic, token.Error())
	}

	return nil
}
