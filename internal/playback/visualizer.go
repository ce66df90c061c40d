/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playback

import (
	"context"
	"fmt"

	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/graph"
)

// ContextInfo models the subset of an AudioContext's state a visualizer
// cares about (§6 "getAudioContext") — this engine never creates a real
// audio context, so this is the model's stand-in for one.
type ContextInfo struct {
	Latency     LatencyHint
	SampleRate  float64
	GraphExists bool
}

// LatencyMode reports the current latency hint.
func (c *Controller) LatencyMode() LatencyHint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}

// GetAudioContext snapshots context-level state for the visualizer (§6).
func (c *Controller) GetAudioContext() ContextInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ContextInfo{Latency: c.latency, SampleRate: 44100, GraphExists: c.g != nil}
}

// SwitchLatencyMode tears down the context and rebuilds the full topology
// with the requested latency hint, preserving current song, current-time,
// user-volume, mute, dual-pipeline state, EQ mode and active parametric
// bands/preamp (§4.3 "Latency-mode switch") — all of which already live in
// the effects controller or this controller's own fields untouched by
// rebuildGraphLocked, so "preserving" them is simply a matter of not
// resetting them around the rebuild. Resumes playback and notifies
// subscribers of the source change on completion.
func (c *Controller) SwitchLatencyMode(ctx context.Context, hint LatencyHint) error {
	c.mu.Lock()
	wasPlaying := c.primarySlot().IsPlaying()
	c.latency = hint
	err := c.rebuildGraphLocked(ctx)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("playback: switch latency mode: %w", err)
	}

	if wasPlaying {
		c.primarySlot().Play()
	}
	c.bus.Publish(events.EventSourceChange, events.Payload{"reason": "latency_mode", "hint": string(hint)})
	return nil
}

// SetLowLatencyAlwaysHint applies the live-mode consequence of the
// low-latency-always preference: it switches the session to interactive
// latency when always is true and back to playback latency when false,
// rebuilding the graph either way. The preference itself lives in settings
// (KeyLowLatencyAlways) and is not stored by this method.
func (c *Controller) SetLowLatencyAlwaysHint(ctx context.Context, always bool) error {
	if always {
		return c.SwitchLatencyMode(ctx, LatencyInteractive)
	}
	return c.SwitchLatencyMode(ctx, LatencyPlayback)
}

// InsertAnalyser splices an externally-owned analyser tap into the live
// graph just before destination (§6 "insertAnalyser"), building the graph
// on demand if nothing is connected yet.
func (c *Controller) InsertAnalyser(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	if c.g == nil {
		if err := c.rebuildGraphLocked(ctx); err != nil {
			c.mu.Unlock()
			return "", fmt.Errorf("playback: insert analyser: %w", err)
		}
	}
	g := c.g
	c.mu.Unlock()
	return g.InsertAnalyser(id)
}

// RemoveAnalyser reverses InsertAnalyser.
func (c *Controller) RemoveAnalyser(id string) {
	c.mu.Lock()
	g := c.g
	c.mu.Unlock()
	if g != nil {
		g.RemoveAnalyser(id)
	}
}

// VisualizerInputNode returns the chain input node (§6 "getVisualizerInputNode"
// / glossary "chain input node"): the mixer in dual mode, else the primary
// source.
func (c *Controller) VisualizerInputNode() (graph.Node, bool) {
	c.mu.Lock()
	g := c.g
	c.mu.Unlock()
	if g == nil {
		return nil, false
	}
	return g.ChainInputNode()
}

// EQFilters returns the live EQ filter chain nodes, in chain order, for the
// visualizer page's frequency-response overlay (§6 "getEQFilters").
func (c *Controller) EQFilters() []*graph.EQFilterNode {
	c.mu.Lock()
	g := c.g
	c.mu.Unlock()
	if g == nil {
		return nil
	}
	var out []*graph.EQFilterNode
	for _, n := range g.Nodes() {
		if eq, ok := n.(*graph.EQFilterNode); ok {
			out = append(out, eq)
		}
	}
	return out
}
