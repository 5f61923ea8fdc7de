/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus bridges the in-process event bus onto NATS so
// dashboard instances behind a load balancer see each other's events.
package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
)

const subjectPrefix = "ambradio.events."

// NATSBus fans events out over NATS while delivering locally through
// an in-process bus. When NATS is unreachable at startup the bus
// degrades to local-only delivery instead of failing the process.
type NATSBus struct {
	conn   *nats.Conn
	local  *events.Bus
	logger zerolog.Logger
	nodeID string

	mu         sync.Mutex
	remoteSubs map[events.EventType]*nats.Subscription
}

type wireMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
}

// NewNATSBus connects to the given NATS URL. An empty URL or a failed
// connection yields a local-only bus.
func NewNATSBus(natsURL string, logger zerolog.Logger) (*NATSBus, error) {
	bus := &NATSBus{
		local:      events.NewBus(),
		logger:     logger.With().Str("component", "eventbus").Logger(),
		nodeID:     nodeID(),
		remoteSubs: make(map[events.EventType]*nats.Subscription),
	}

	if natsURL == "" {
		bus.logger.Info().Msg("no NATS URL configured, events stay in-process")
		return bus, nil
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("ambradio-dashboard"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			bus.logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			bus.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		bus.logger.Warn().Err(err).Str("url", natsURL).Msg("NATS unavailable, events stay in-process")
		return bus, nil
	}

	bus.conn = conn
	bus.logger.Info().Str("url", natsURL).Str("node_id", bus.nodeID).Msg("NATS event bus connected")
	return bus, nil
}

// Subscribe registers a local subscriber and ensures remote events of
// this type are bridged in.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	nb.bridgeRemote(eventType)
	return nb.local.Subscribe(eventType)
}

// SubscribeMany registers one subscriber across several event types.
func (nb *NATSBus) SubscribeMany(eventTypes ...events.EventType) events.Subscriber {
	for _, eventType := range eventTypes {
		nb.bridgeRemote(eventType)
	}
	return nb.local.SubscribeMany(eventTypes...)
}

// bridgeRemote opens the NATS subscription for an event type once.
// Remote messages are republished on the local bus; our own messages
// are skipped to avoid double delivery.
func (nb *NATSBus) bridgeRemote(eventType events.EventType) {
	if nb.conn == nil {
		return
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()
	if _, ok := nb.remoteSubs[eventType]; ok {
		return
	}

	sub, err := nb.conn.Subscribe(subjectPrefix+string(eventType), func(msg *nats.Msg) {
		var wire wireMessage
		if err := json.Unmarshal(msg.Data, &wire); err != nil {
			nb.logger.Error().Err(err).Str("subject", msg.Subject).Msg("malformed event on the wire")
			return
		}
		if wire.NodeID == nb.nodeID {
			return
		}
		nb.local.Publish(wire.EventType, wire.Payload)
	})
	if err != nil {
		nb.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("NATS subscribe failed")
		return
	}
	nb.remoteSubs[eventType] = sub
}

// Publish delivers locally and, when connected, to the NATS subject
// for the event type.
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.local.Publish(eventType, payload)

	if nb.conn == nil {
		return
	}

	data, err := json.Marshal(wireMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		NodeID:    nb.nodeID,
	})
	if err != nil {
		nb.logger.Error().Err(err).Msg("marshal event")
		return
	}
	if err := nb.conn.Publish(subjectPrefix+string(eventType), data); err != nil {
		nb.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("NATS publish failed")
	}
}

// Unsubscribe removes a local subscriber. Remote bridges stay open;
// they are torn down with the bus.
func (nb *NATSBus) Unsubscribe(sub events.Subscriber) {
	nb.local.Unsubscribe(sub)
}

// Close drains the NATS connection.
func (nb *NATSBus) Close() error {
	if nb.conn == nil {
		return nil
	}

	nb.mu.Lock()
	for _, sub := range nb.remoteSubs {
		if err := sub.Unsubscribe(); err != nil {
			nb.logger.Warn().Err(err).Msg("NATS unsubscribe failed")
		}
	}
	nb.remoteSubs = make(map[events.EventType]*nats.Subscription)
	nb.mu.Unlock()

	if err := nb.conn.Drain(); err != nil {
		return fmt.Errorf("drain nats connection: %w", err)
	}
	return nil
}

func nodeID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "ambradio"
	}
	return host + "-" + uuid.NewString()
}
