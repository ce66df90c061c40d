/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "sync"

// EventType enumerates event categories broadcast across a session's
// subsystems, and optionally to other instances via the NATS bridge.
type EventType string

const (
	// EventQueueItemsRestored fires when the queue adopts songs that the
	// offline layer restored (queue.Machine.AdoptRestoredItems), detail
	// {items, queueIndex}.
	EventQueueItemsRestored EventType = "queue.items_restored"
	// EventTempQueueExited fires when temp-queue mode exits, no detail.
	EventTempQueueExited EventType = "queue.temp_queue_exited"
	// EventQueueVersionChanged fires on every structural queue mutation.
	EventQueueVersionChanged EventType = "queue.version_changed"

	// EventSourceChange fires when the engine rebuilds the graph or swaps
	// the primary slot, so visualizer subscribers can reattach their input
	// node reference.
	EventSourceChange EventType = "playback.source_change"
	// EventTrackChange fires on every new current-song assignment, driving
	// host media-session metadata updates.
	EventTrackChange EventType = "playback.track_change"
	// EventPlaybackError fires on decode/network error recovery.
	EventPlaybackError EventType = "playback.error"

	// EventSessionClosed fires when an engine session's façade handle is
	// torn down, so attach tokens and caches can be released.
	EventSessionClosed EventType = "session.closed"
)

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Bus implements a simple in-process pubsub.
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

// Publish sends payload to subscribers.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs[eventType]...)
	b.mu.RUnlock()
	for _, sub := range subs {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	b.subs[eventType] = subs
	close(sub)
}
