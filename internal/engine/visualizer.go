/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/graph"
	"github.com/friendsincode/audioengine/internal/playback"
)

// InitEQ is a no-op hand-off point for the visualizer page's own analyser
// graph (§6 "initEQ(ctx, source, out?)"): since this engine models the
// graph rather than owning a real audio context, the only state to report
// back is the current chain input node the caller should treat as its
// source.
func (e *Engine) InitEQ(ctx context.Context) (graph.Node, bool) {
	if e.playbackCtl.CurrentGraph() == nil {
		_ = e.playbackCtl.RebuildGraph(ctx)
	}
	return e.playbackCtl.VisualizerInputNode()
}

// InsertAnalyser splices a visualizer-owned analyser tap into the live
// graph and returns its node ID.
func (e *Engine) InsertAnalyser(ctx context.Context) (string, error) {
	id, err := e.playbackCtl.InsertAnalyser(ctx, "analyser-"+uuid.NewString())
	e.recordOp("insertAnalyser", err)
	return id, err
}

// RemoveAnalyser removes a previously-inserted analyser tap.
func (e *Engine) RemoveAnalyser(id string) {
	e.playbackCtl.RemoveAnalyser(id)
	e.recordOp("removeAnalyser", nil)
}

// SwitchLatencyMode tears down and rebuilds the graph under the requested
// latency hint, per §4.3's "Latency-mode switch".
func (e *Engine) SwitchLatencyMode(ctx context.Context, hint playback.LatencyHint) error {
	err := e.playbackCtl.SwitchLatencyMode(ctx, hint)
	e.recordOp("switchLatencyMode", err)
	if err != nil {
		e.recordError(err.Error())
	}
	return err
}

// SetLowLatencyAlways persists the "music-low-latency-always" preference
// and, if turning it on, switches the live session into interactive mode
// immediately so a visualizer attaching later does not have to pay the
// rebuild cost itself.
func (e *Engine) SetLowLatencyAlways(ctx context.Context, always bool) error {
	err := e.store.SetLowLatencyAlways(ctx, e.sessionID, always)
	e.recordOp("setLowLatencyAlways", err)
	if err != nil {
		return err
	}
	if always {
		return e.SwitchLatencyMode(ctx, playback.LatencyInteractive)
	}
	return nil
}

// ConnectExternalAudio is the hook the visualizer page uses when the host
// environment hands the engine an externally-decoded audio element instead
// of one of the two managed slots (§6 "connectExternalAudio(el)"). The
// engine only needs to track that a source change occurred so visualizer
// subscribers reattach; ownership of the element itself stays with the
// caller.
func (e *Engine) ConnectExternalAudio(externalID string) {
	e.bus.Publish(events.EventSourceChange, events.Payload{"reason": "external_audio", "external_id": externalID})
}

// OnAudioSourceChange subscribes cb to every future source-change
// notification (graph rebuild, crossfade reference swap, latency switch,
// external-audio connect) and returns an unsubscribe function, mirroring
// §6's `onAudioSourceChange(cb) → unsubscribe`.
func (e *Engine) OnAudioSourceChange(cb func()) (unsubscribe func()) {
	sub := e.bus.Subscribe(events.EventSourceChange)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case _, ok := <-sub:
				if !ok {
					return
				}
				cb()
			case <-done:
				return
			}
		}
	}()
	return func() {
		close(done)
		e.bus.Unsubscribe(events.EventSourceChange, sub)
	}
}

// GetAudioSourceVersion returns the monotonically-increasing counter bumped
// on every source-change notification, for callers that prefer polling
// over subscribing (§6 "getAudioSourceVersion").
func (e *Engine) GetAudioSourceVersion() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sourceVersion
}

// GetVisualizerInputNode returns the chain input node (§6).
func (e *Engine) GetVisualizerInputNode() (graph.Node, bool) {
	return e.playbackCtl.VisualizerInputNode()
}

// GetAudioContext reports the engine's modeled context state (§6).
func (e *Engine) GetAudioContext() playback.ContextInfo {
	return e.playbackCtl.GetAudioContext()
}

// GetEQFilters returns the live EQ filter chain nodes (§6).
func (e *Engine) GetEQFilters() []*graph.EQFilterNode {
	return e.playbackCtl.EQFilters()
}
