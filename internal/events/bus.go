/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventStatusUpdate  EventType = "status_update"
	EventNowPlaying    EventType = "now_playing"
	EventListenerStats EventType = "listener_stats"
	EventControlAction EventType = "control_action"
	EventHealth        EventType = "health"

	// Cache invalidation events
	EventStationUpdated  EventType = "cache.station_updated"
	EventStationDeleted  EventType = "cache.station_deleted"
	EventMediaUpdated    EventType = "cache.media_updated"
	EventMediaDeleted    EventType = "cache.media_deleted"
	EventPlaylistUpdated EventType = "cache.playlist_updated"

	// Audit events
	EventAuditControl        EventType = "audit.icecast.control"
	EventAuditStreamerCreate EventType = "audit.streamer.create"
	EventAuditStreamerDelete EventType = "audit.streamer.delete"
	EventAuditMediaUpload    EventType = "audit.media.upload"
	EventAuditLogin          EventType = "audit.login"
)

// Payload generic event payload.
type Payload map[string]any

// Envelope pairs a payload with its event type so multiplexed
// subscribers can tell deliveries apart.
type Envelope struct {
	Type    EventType `json:"type"`
	Payload Payload   `json:"payload"`
}

// Subscriber receives event envelopes.
type Subscriber chan Envelope

// Bus implements a simple in-process pubsub. Delivery is best effort;
// a subscriber that stops draining its channel loses events rather
// than blocking publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// SubscribeMany registers one subscriber across several event types.
// The WebSocket feed uses this to multiplex all dashboard events onto
// a single connection.
func (b *Bus) SubscribeMany(eventTypes ...EventType) Subscriber {
	ch := make(Subscriber, 32)
	b.mu.Lock()
	for _, eventType := range eventTypes {
		b.subs[eventType] = append(b.subs[eventType], ch)
	}
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs[eventType]...)
	b.mu.RUnlock()
	envelope := Envelope{Type: eventType, Payload: payload}
	for _, sub := range subs {
		select {
		case sub <- envelope:
		default:
		}
	}
}

// Unsubscribe removes the subscriber from every event type it was
// registered under and closes its channel.
func (b *Bus) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	closed := false
	for eventType, subs := range b.subs {
		for i, candidate := range subs {
			if candidate == sub {
				b.subs[eventType] = append(subs[:i], subs[i+1:]...)
				closed = true
				break
			}
		}
	}
	if closed {
		close(sub)
	}
}
