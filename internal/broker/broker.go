// Package broker wraps the paho MQTT client with the connection options and
// topic layout shared by the messaging, presence and dispatch adapters.
//
// Topic layout under a configurable prefix:
//
//	<prefix>/actors/<id>/position      live actor positions (empty payload = gone)
//	<prefix>/actors/<id>/capabilities  JSON array of capability names
//	<prefix>/actors/<id>/chat          plain-text messages to the actor
//	<prefix>/actors/<id>/events/<e>    structured client events
//	<prefix>/actors/<id>/commands      text commands issued by the actor
package broker

import (
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/property-alarm/internal/config"
)

// Dial connects to the configured MQTT broker. The suffix distinguishes the
// client ids of multiple connections sharing one configuration.
//
//nolint:ireturn,nolintlint // paho exposes its client as an interface.
func Dial(cfg *config.Broker, suffix string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Address)
	opts.SetClientID(cfg.ClientID + suffix)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}

	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}

	return client, nil
}

// ActorTopic builds the topic for a per-actor leaf, e.g. ActorTopic("alarm", "bob", "chat").
func ActorTopic(prefix, actorID, leaf string) string {
	return prefix + "/actors/" + actorID + "/" + leaf
}

// ActorID extracts the actor id from a per-actor topic.
func ActorID(topic string) (string, bool) {
	segments := strings.Split(topic, "/")
	for i, segment := range segments {
		if segment == "actors" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], true
		}
	}

	return "", false
}
