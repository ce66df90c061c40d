/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package engine aggregates the graph, effects, playback, and queue
// components into the single observable façade spec §2 component F
// describes, grounded on internal/mediaengine.Service generalized from
// one struct holding every station subsystem to one struct holding every
// listener-session subsystem.
package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/audioengine/internal/effects"
	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/playback"
	"github.com/friendsincode/audioengine/internal/queue"
	"github.com/friendsincode/audioengine/internal/repository"
	"github.com/friendsincode/audioengine/internal/settings"
	"github.com/friendsincode/audioengine/internal/telemetry"
)

// State is the single observable engine state object spec §3 describes,
// merging the playback and queue observables with engine-owned extras
// (error string, audio-source version, effects state).
type State struct {
	playback.Observable
	Queue        queue.State
	Effects      effects.State
	AudioSourceV int
	Error        string
}

// Engine is one listener session's handle — the only externally-visible
// object per design note "Global state": nothing outside this struct
// reaches into playback/queue/effects directly.
type Engine struct {
	mu sync.Mutex

	sessionID string
	logger    zerolog.Logger

	bus     *events.Bus
	store   *settings.Store
	catalog repository.Catalog

	playbackCtl *playback.Controller
	effectsCtl  *effects.Controller
	queueMach   *queue.Machine

	consecutiveErrors int
	lastErr           string
	sourceVersion     int

	sourceSub events.Subscriber
	trackSub  events.Subscriber
	closeOnce sync.Once
}

// New wires a complete engine session: a playback controller bound to the
// catalog as its URLResolver, an effects controller sharing the playback
// controller as its GraphHost, and a queue machine whose autoplay callback
// calls back into the playback controller — composing A-E without any of
// those packages importing each other.
func New(ctx context.Context, sessionID string, catalog repository.Catalog, store *settings.Store, bus *events.Bus, logger zerolog.Logger) (*Engine, error) {
	logger = logger.With().Str("component", "engine").Str("session_id", sessionID).Logger()

	playbackCtl := playback.New(catalog, bus, logger)
	effectsCtl, err := effects.NewController(ctx, sessionID, playbackCtl, store, logger)
	if err != nil {
		return nil, err
	}
	playbackCtl.SetEffectsController(effectsCtl)

	e := &Engine{
		sessionID:   sessionID,
		logger:      logger,
		bus:         bus,
		store:       store,
		catalog:     catalog,
		playbackCtl: playbackCtl,
		effectsCtl:  effectsCtl,
	}

	queueMach := queue.New(sessionID, catalog, store, bus, e.autoplay, logger)
	e.queueMach = queueMach

	e.sourceSub = bus.Subscribe(events.EventSourceChange)
	go e.watchSourceChanges()

	e.trackSub = bus.Subscribe(events.EventTrackChange)
	go e.watchTrackChanges()

	return e, nil
}

// autoplay is the callback the queue machine fires when an add/remove
// transitions the queue from empty to non-empty (§4.4 "autoplay"): it
// plays the now-current song through the playback controller.
func (e *Engine) autoplay(ctx context.Context, song *queue.Song) {
	_ = e.Play(ctx, song)
}

func (e *Engine) watchSourceChanges() {
	for range e.sourceSub {
		e.mu.Lock()
		e.sourceVersion++
		e.mu.Unlock()
	}
}

// watchTrackChanges reconciles the queue machine's current-song pointer
// whenever the playback controller assigns a new current song on its own
// (a completed crossfade), so State()'s merged playback+queue view keeps
// invariant P1 (currentSong.uuid == queue[index].uuid). Track changes that
// originate from the engine's own advance/Play path are already in sync,
// so this is a no-op for those.
func (e *Engine) watchTrackChanges() {
	for payload := range e.trackSub {
		uuid, _ := payload["songUuid"].(string)
		if uuid == "" {
			continue
		}
		e.queueMach.AdvanceIndexToUUID(context.Background(), uuid)
	}
}

// Close releases the session's subscriptions. Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.bus.Unsubscribe(events.EventSourceChange, e.sourceSub)
		e.bus.Unsubscribe(events.EventTrackChange, e.trackSub)
		e.bus.Publish(events.EventSessionClosed, events.Payload{"session_id": e.sessionID})
	})
}

// SessionID returns the id this engine instance was created for.
func (e *Engine) SessionID() string { return e.sessionID }

// Effects exposes the effects controller directly: its setX vocabulary
// already matches spec §6's Effects operation group verbatim, so the
// façade aggregates rather than re-wraps it.
func (e *Engine) Effects() *effects.Controller { return e.effectsCtl }

func (e *Engine) recordError(msg string) {
	e.mu.Lock()
	e.lastErr = msg
	e.mu.Unlock()
}

// State snapshots the full observable state (§3): playback + queue +
// effects + the engine-owned extras.
func (e *Engine) State() State {
	e.mu.Lock()
	errMsg := e.lastErr
	srcV := e.sourceVersion
	e.mu.Unlock()
	return State{
		Observable:   e.playbackCtl.Observable(),
		Queue:        e.queueMach.State(),
		Effects:      e.effectsCtl.State(),
		AudioSourceV: srcV,
		Error:        errMsg,
	}
}

// NewSessionID mints a session identifier for a new façade connection.
func NewSessionID() string { return uuid.NewString() }

func (e *Engine) recordOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	telemetry.EngineOperations.WithLabelValues(op, status).Inc()
}

// maxConsecutiveErrors bounds retry hops per spec §7: min(5, queue.length).
func (e *Engine) maxConsecutiveErrors() int {
	n := len(e.queueMach.State().Items)
	if n > 5 {
		return 5
	}
	return n
}
