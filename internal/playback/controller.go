/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/audioengine/internal/effects"
	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/graph"
	"github.com/friendsincode/audioengine/internal/settings"
	"github.com/friendsincode/audioengine/internal/telemetry"
)

// ErrSeekNotSupported is returned by Seek when the song's Seekable
// attribute is false.
var ErrSeekNotSupported = errors.New("playback: song is not seekable")

// ErrNoCurrentSong is returned by operations that need a loaded song.
var ErrNoCurrentSong = errors.New("playback: no current song")

const (
	minTimeForCrossfade = 1 * time.Second
	bufferingGrace      = 300 * time.Millisecond
)

// URLResolver resolves a song to a playable URL, preferring an
// offline-cached copy (§6 "Audio URL resolver").
type URLResolver interface {
	AudioURL(ctx context.Context, uuid string) (url string, ok bool)
	StreamURL(ctx context.Context, uuid, songType string) (string, error)
}

// LatencyHint selects the audio-context latency preference.
type LatencyHint string

const (
	LatencyPlayback    LatencyHint = "playback"
	LatencyInteractive LatencyHint = "interactive"
)

// Observable is the playback-relevant slice of the engine's player state.
type Observable struct {
	CurrentSong     *settings.Song
	IsPlaying       bool
	IsPaused        bool
	IsLoading       bool
	CurrentTime     time.Duration
	Duration        time.Duration
	Volume          float64
	Muted           bool
	Error           string
	SleepTimerEndMS *int64
}

// Controller drives the two media slots. It holds no reference to the
// queue (leaf dependency order: D does not depend on E) — callers resolve
// "what song comes next" elsewhere and call Play with the result.
type Controller struct {
	mu sync.Mutex

	slots        [2]*Slot
	primaryIndex int

	volume float64
	muted  bool

	g       *graph.Graph
	builder *graph.Builder
	fx      *effects.Controller

	resolver URLResolver
	bus      *events.Bus

	consecutiveErrors int

	loadingSince time.Time
	isLoading    bool
	lastErr      string

	crossfadeInProgress bool
	crossfadeSeekLockout bool
	skipRamp            bool

	lastPreloadUUID string

	sleepTimer *sleepTimer
	foreground bool

	latency LatencyHint

	logger zerolog.Logger
}

// New creates a playback controller. fx is wired in after construction via
// SetEffectsController, since effects.NewController needs a GraphHost
// (this Controller) to exist first.
func New(resolver URLResolver, bus *events.Bus, logger zerolog.Logger) *Controller {
	return &Controller{
		slots:      [2]*Slot{NewSlot(), NewSlot()},
		volume:     1.0,
		resolver:   resolver,
		bus:        bus,
		builder:    graph.NewBuilder(logger),
		latency:    LatencyPlayback,
		foreground: true,
		logger:     logger.With().Str("component", "playback").Logger(),
	}
}

// SetEffectsController wires the effects controller used for graph config,
// ReplayGain, and loudness computation.
func (c *Controller) SetEffectsController(fx *effects.Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fx = fx
}

// CurrentGraph implements effects.GraphHost.
func (c *Controller) CurrentGraph() *graph.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g
}

// RebuildGraph implements effects.GraphHost: tears down any existing graph
// and builds a fresh one from the effects controller's current config.
func (c *Controller) RebuildGraph(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuildGraphLocked(ctx)
}

func (c *Controller) rebuildGraphLocked(ctx context.Context) error {
	if c.fx == nil {
		return fmt.Errorf("playback: effects controller not wired")
	}
	if c.g != nil {
		c.g.Teardown()
	}
	cfg := c.fx.GraphConfig()
	g, err := c.builder.Build("session", cfg)
	if err != nil {
		return fmt.Errorf("playback: rebuild graph: %w", err)
	}
	c.g = g
	return nil
}

func (c *Controller) primarySlot() *Slot   { return c.slots[c.primaryIndex] }
func (c *Controller) secondarySlot() *Slot { return c.slots[1-c.primaryIndex] }

// Observable snapshots player state relevant to playback.
func (c *Controller) Observable() Observable {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.primarySlot()
	var dur time.Duration
	song := p.Song()
	if song != nil {
		dur = time.Duration(song.DurationSeconds * float64(time.Second))
	}
	var sleepEnd *int64
	if c.sleepTimer != nil {
		if end, active := c.sleepTimer.EndTime(); active {
			ms := end.UnixMilli()
			sleepEnd = &ms
		}
	}
	return Observable{
		CurrentSong:     song,
		IsPlaying:       p.IsPlaying(),
		IsPaused:        song != nil && !p.IsPlaying(),
		IsLoading:       c.isLoading,
		CurrentTime:     p.CurrentTime(),
		Duration:        dur,
		Volume:          c.volume,
		Muted:           c.muted,
		Error:           c.lastErr,
		SleepTimerEndMS: sleepEnd,
	}
}

// SetVolume sets user volume in [0,1] and re-applies the effective host
// media-element volume to the primary slot.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
	c.applyEffectiveVolumeLocked()
}

// ToggleMute flips the mute flag.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	c.applyEffectiveVolumeLocked()
}

func (c *Controller) applyEffectiveVolumeLocked() {
	loudnessOn := c.fx != nil && c.fx.State().LoudnessEnabled
	for _, s := range c.slots {
		if loudnessOn {
			s.SetVolume(1.0)
			continue
		}
		if c.muted {
			s.SetVolume(0)
			continue
		}
		s.SetVolume(c.volume)
	}
}

func (c *Controller) setLoading(loading bool) {
	c.mu.Lock()
	c.isLoading = loading
	c.mu.Unlock()
}

// Play resolves and loads song into the primary slot and starts playback,
// per §4.3 step-by-step play(song).
func (c *Controller) Play(ctx context.Context, song *settings.Song) error {
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
	c.setLoading(true)
	defer c.setLoading(false)

	if c.fx != nil && c.fx.State().CrossfadeEnabled {
		if c.CurrentGraph() == nil {
			if err := c.RebuildGraph(ctx); err != nil {
				return err
			}
		}
	}

	url, ok := c.resolver.AudioURL(ctx, song.UUID)
	if !ok {
		var err error
		url, err = c.resolver.StreamURL(ctx, song.UUID, song.Type)
		if err != nil {
			return fmt.Errorf("playback: resolve url: %w", err)
		}
	}

	c.mu.Lock()
	p := c.primarySlot()
	p.Load(song, url)

	if g := c.g; g != nil {
		if fadeP, ok := g.Node("fade0"); ok {
			fadeP.(*graph.FadeGainNode).Param = forceReplaceIfLocked(fadeP.(*graph.FadeGainNode).Param, 1.0)
		}
		if fadeS, ok := g.Node("fade1"); ok {
			fadeS.(*graph.FadeGainNode).Param = forceReplaceIfLocked(fadeS.(*graph.FadeGainNode).Param, 0.0)
		}
	}
	c.applyEffectiveVolumeLocked()
	c.mu.Unlock()

	if c.fx != nil {
		rg := c.fx.ReplayGainFor(song.ReplayGainTrack, song.ReplayGainAlbum)
		c.applyReplayGain(song, rg)
	}

	p.Play()

	c.mu.Lock()
	c.consecutiveErrors = 0
	c.mu.Unlock()

	c.bus.Publish(events.EventTrackChange, events.Payload{"songUuid": song.UUID})

	return nil
}

func (c *Controller) applyReplayGain(song *settings.Song, gainDB float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	linear := graph.ReplayGainLinear(gainDB)
	if c.g == nil {
		return
	}
	rgID := fmt.Sprintf("rg%d", c.primaryIndex)
	if n, ok := c.g.Node(rgID); ok {
		n.(*graph.ReplayGainNode).Gain = linear
	}
}

// PreloadNext assigns next's URL to the non-primary slot for gapless/
// crossfade readiness, skipping if already preloaded.
func (c *Controller) PreloadNext(ctx context.Context, next *settings.Song) error {
	if next == nil {
		return nil
	}
	c.mu.Lock()
	if c.lastPreloadUUID == next.UUID {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	url, ok := c.resolver.AudioURL(ctx, next.UUID)
	if !ok {
		var err error
		url, err = c.resolver.StreamURL(ctx, next.UUID, next.Type)
		if err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.secondarySlot().Load(next, url)
	c.lastPreloadUUID = next.UUID
	c.mu.Unlock()
	return nil
}

// PreloadPrimary resolves song's URL and assigns it to the primary slot
// without starting playback. This is the resume-state preload spec §4.4
// "Exit temp-queue mode" names: the restored current song is ready to play
// from where the queue left off, but nothing plays until the caller
// explicitly does so. Unlike PreloadNext, this targets the primary slot —
// there is no crossfade in flight here for a secondary-slot load to serve.
func (c *Controller) PreloadPrimary(ctx context.Context, song *settings.Song) error {
	if song == nil {
		return nil
	}
	url, ok := c.resolver.AudioURL(ctx, song.UUID)
	if !ok {
		var err error
		url, err = c.resolver.StreamURL(ctx, song.UUID, song.Type)
		if err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.primarySlot().Load(song, url)
	c.mu.Unlock()
	return nil
}

// Pause cancels any in-flight crossfade then pauses the active element.
func (c *Controller) Pause() {
	c.CancelCrossfade()
	c.mu.Lock()
	p := c.primarySlot()
	c.mu.Unlock()
	p.Pause()
}

// Resume re-resolves the primary slot's URL if needed, seeks to the
// remembered position once metadata is available, then plays.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()
	p := c.primarySlot()
	song := p.Song()
	c.mu.Unlock()
	if song == nil {
		return ErrNoCurrentSong
	}
	if p.URL() == "" {
		url, ok := c.resolver.AudioURL(ctx, song.UUID)
		if !ok {
			var err error
			url, err = c.resolver.StreamURL(ctx, song.UUID, song.Type)
			if err != nil {
				return err
			}
		}
		pos := p.CurrentTime()
		p.Load(song, url)
		p.Seek(pos)
	}
	p.Play()
	return nil
}

// Seek clamps pos to [0, duration] and assigns it, a no-op if the song is
// not seekable.
func (c *Controller) Seek(pos time.Duration) error {
	c.mu.Lock()
	p := c.primarySlot()
	song := p.Song()
	c.mu.Unlock()
	if song == nil {
		return ErrNoCurrentSong
	}
	if !song.Seekable {
		return ErrSeekNotSupported
	}
	dur := time.Duration(song.DurationSeconds * float64(time.Second))
	if pos < 0 {
		pos = 0
	}
	if pos > dur {
		pos = dur
	}
	p.Seek(pos)
	return nil
}

// Stop halts playback and clears the primary slot's source.
func (c *Controller) Stop() {
	c.CancelCrossfade()
	c.mu.Lock()
	p := c.primarySlot()
	c.mu.Unlock()
	p.Stop()
}

// RecordPlaybackError increments the consecutive-error counter and
// publishes a playback-error event. It returns the new count so the engine
// can compare it against min(5, queue.length).
func (c *Controller) RecordPlaybackError(err error) int {
	c.mu.Lock()
	c.consecutiveErrors++
	n := c.consecutiveErrors
	c.lastErr = err.Error()
	c.mu.Unlock()
	c.bus.Publish(events.EventPlaybackError, events.Payload{"error": err.Error()})
	return n
}

// ConsecutiveErrors returns the current error streak.
func (c *Controller) ConsecutiveErrors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consecutiveErrors
}

func forceReplaceIfLocked(p *graph.GainParam, target float64) *graph.GainParam {
	if p.Locked() {
		return p.ForceReplace(target)
	}
	if err := p.SetValue(target); err != nil {
		return p.ForceReplace(target)
	}
	return p
}

// recordEngineOp is a small telemetry helper shared by the higher-level
// operations in crossfade.go and sleeptimer.go.
func recordEngineOp(name string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	telemetry.EngineOperations.WithLabelValues(name, status).Inc()
}
