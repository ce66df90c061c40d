/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package effects

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/friendsincode/audioengine/internal/graph"
	"github.com/friendsincode/audioengine/internal/settings"
	"github.com/friendsincode/audioengine/internal/telemetry"
)

// GraphHost is the subset of the playback controller's responsibilities the
// effects controller needs: access to the live graph (nil if not yet built)
// and the ability to trigger a rebuild when a parameter requires new
// topology (e.g. first-time EQ/crossfeed/loudness/noise enable).
type GraphHost interface {
	CurrentGraph() *graph.Graph
	RebuildGraph(ctx context.Context) error
}

// Controller owns the Table 1 parameter state, applies changes to the live
// graph when present, and persists every change through the settings
// store — the three-step shape (validate/clamp, apply, persist) the
// teacher's request handlers used, collapsed into applyEffect.
type Controller struct {
	mu        sync.RWMutex
	state     State
	sessionID string
	host      GraphHost
	store     *settings.Store
	logger    zerolog.Logger
}

// NewController creates an effects controller seeded with persisted state
// (or Table 1 defaults if nothing was ever saved).
func NewController(ctx context.Context, sessionID string, host GraphHost, store *settings.Store, logger zerolog.Logger) (*Controller, error) {
	c := &Controller{
		state:     DefaultState(),
		sessionID: sessionID,
		host:      host,
		store:     store,
		logger:    logger.With().Str("component", "effects").Str("session_id", sessionID).Logger(),
	}
	if err := c.hydrate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) hydrate(ctx context.Context) error {
	eq, err := c.store.GetEQ(ctx, c.sessionID)
	if err != nil {
		return fmt.Errorf("effects: load eq settings: %w", err)
	}
	fx, err := c.store.GetAudioFX(ctx, c.sessionID)
	if err != nil {
		return fmt.Errorf("effects: load audio-fx settings: %w", err)
	}
	active, found, err := c.store.GetParametricEQActive(ctx, c.sessionID)
	if err != nil {
		return fmt.Errorf("effects: load parametric eq: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.GraphicEQEnabled = eq.Enabled
	c.state.GraphicGains = eq.Gains
	c.state.GraphicPreampDB = fx.GraphicPreamp

	c.state.ReplayGainMode = ReplayGainMode(orDefault(fx.ReplayGainMode, string(ReplayGainOff)))
	c.state.ReplayGainPreampDB = fx.ReplayGainPreamp
	c.state.ReplayGainFallback = orDefaultF(fx.ReplayGainFallback, -6)

	c.state.CrossfeedEnabled = fx.CrossfeedEnabled
	c.state.CrossfeedLevel = fx.CrossfeedAmount
	c.state.CrossfeedDelayMs = fx.CrossfeedDelayMs
	c.state.CrossfeedShadowHz = fx.CrossfeedShadowHz

	c.state.LoudnessEnabled = fx.LoudnessEnabled
	c.state.LoudnessReferenceSPL = orDefaultF(fx.LoudnessReferenceSPL, 80)
	c.state.LoudnessStrength = orDefaultF(fx.LoudnessStrength, 100)

	c.state.NoiseEnabled = fx.NoiseEnabled
	c.state.NoiseMode = NoiseMode(orDefault(fx.NoiseMode, string(NoiseWhite)))
	c.state.NoiseTilt = fx.NoiseTilt
	c.state.NoisePowerDB = orDefaultF(fx.NoisePowerDB, -24)
	c.state.NoiseThreshold = orDefaultF(fx.NoiseThreshold, -36)
	c.state.NoiseAttackMs = orDefaultF(fx.NoiseAttackMs, 25)

	c.state.TempoEnabled = fx.TempoEnabled
	c.state.TempoRate = orDefaultF(fx.TempoRate, 1.0)

	// A never-saved audio-fx blob decodes to the zero value; the Table 1
	// defaults that are true (pitch lock, gapless) are kept in that case.
	if fx != (settings.AudioFXSettings{}) {
		c.state.TempoPitchLock = fx.TempoPitchLock
		c.state.GaplessEnabled = fx.GaplessEnabled
	}
	c.state.CrossfadeEnabled = fx.CrossfadeEnabled
	c.state.CrossfadeDuration = orDefaultF(fx.CrossfadeSeconds, 3)

	c.state.SleepTimerMode = SleepTimerMode(orDefault(fx.SleepTimerMode, string(SleepTimerTime)))
	c.state.SleepTimerMinutes = fx.SleepTimerMinutes
	c.state.SleepTimerTargetTime = orDefault(fx.SleepTimerTargetTime, "23:00")
	c.state.SleepTimerMinimumMinutes = fx.SleepTimerMinimumMinutes

	if found {
		c.state.ParametricBands = toGraphBands(active.Bands)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultF(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// State returns a copy of the current parameter block.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// applyEffect runs fn, records a telemetry operation counter, and logs
// failures. fn mutates c.state, builds the graph if the change needs it, and
// persists, in that order, while holding no lock itself (applyEffect holds
// the write lock around the whole call). fn does not write new values into
// the nodes of an already-built graph; they take effect at the next rebuild.
func (c *Controller) applyEffect(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		c.logger.Warn().Err(err).Str("effect", name).Msg("effect apply failed")
	}
	telemetry.EffectOperations.WithLabelValues(name, status).Inc()
	return err
}

func (c *Controller) persistEQ(ctx context.Context) error {
	return c.store.SetEQ(ctx, c.sessionID, settings.EQSettings{
		Enabled: c.state.GraphicEQEnabled,
		Gains:   c.state.GraphicGains,
	})
}

func (c *Controller) persistAudioFX(ctx context.Context) error {
	return c.store.SetAudioFX(ctx, c.sessionID, settings.AudioFXSettings{
		ReplayGainMode:     string(c.state.ReplayGainMode),
		ReplayGainPreamp:   c.state.ReplayGainPreampDB,
		ReplayGainFallback: c.state.ReplayGainFallback,

		CrossfeedEnabled:  c.state.CrossfeedEnabled,
		CrossfeedAmount:   c.state.CrossfeedLevel,
		CrossfeedDelayMs:  c.state.CrossfeedDelayMs,
		CrossfeedShadowHz: c.state.CrossfeedShadowHz,

		LoudnessEnabled:      c.state.LoudnessEnabled,
		LoudnessReferenceSPL: c.state.LoudnessReferenceSPL,
		LoudnessStrength:     c.state.LoudnessStrength,

		NoiseEnabled:   c.state.NoiseEnabled,
		NoiseLevel:     c.state.NoisePowerDB,
		NoiseMode:      string(c.state.NoiseMode),
		NoiseTilt:      c.state.NoiseTilt,
		NoisePowerDB:   c.state.NoisePowerDB,
		NoiseThreshold: c.state.NoiseThreshold,
		NoiseAttackMs:  c.state.NoiseAttackMs,

		TempoEnabled:   c.state.TempoEnabled,
		TempoRate:      c.state.TempoRate,
		TempoPitchLock: c.state.TempoPitchLock,

		GaplessEnabled:   c.state.GaplessEnabled,
		CrossfadeEnabled: c.state.CrossfadeEnabled,
		CrossfadeSeconds: c.state.CrossfadeDuration,

		GraphicPreamp: c.state.GraphicPreampDB,

		SleepTimerMode:           string(c.state.SleepTimerMode),
		SleepTimerMinutes:        c.state.SleepTimerMinutes,
		SleepTimerTargetTime:     c.state.SleepTimerTargetTime,
		SleepTimerMinimumMinutes: c.state.SleepTimerMinimumMinutes,
	})
}

func toGraphBands(bands []settings.ParametricBand) []graph.ParametricBand {
	out := make([]graph.ParametricBand, len(bands))
	for i, b := range bands {
		out[i] = graph.ParametricBand{Type: graph.FilterType(b.Type), Frequency: b.Frequency, Q: b.Q, GainDB: b.Gain}
	}
	return out
}

func toSettingsBands(bands []graph.ParametricBand) []settings.ParametricBand {
	out := make([]settings.ParametricBand, len(bands))
	for i, b := range bands {
		out[i] = settings.ParametricBand{Type: string(b.Type), Frequency: b.Frequency, Q: b.Q, Gain: b.GainDB}
	}
	return out
}

// GraphConfig snapshots the current parameter state into the shape
// graph.Builder.Build expects, so the playback controller can (re)build the
// live graph on demand.
func (c *Controller) GraphConfig() graph.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mode := graph.EQModeGraphic
	if len(c.state.ParametricBands) > 0 {
		mode = graph.EQModeParametric
	}
	preamp := c.state.GraphicPreampDB
	if mode == graph.EQModeParametric {
		preamp = c.state.ParametricPreampDB
	}
	return graph.Config{
		CrossfadeEnabled:  c.state.CrossfadeEnabled,
		EQEnabled:         c.state.GraphicEQEnabled || len(c.state.ParametricBands) > 0,
		EQMode:            mode,
		GraphicGains:      c.state.GraphicGains,
		ParametricBands:   c.state.ParametricBands,
		PreampDB:          preamp,
		CrossfeedEnabled:  c.state.CrossfeedEnabled,
		CrossfeedLevel:    c.state.CrossfeedLevel / 100,
		CrossfeedDelayMs:  c.state.CrossfeedDelayMs,
		CrossfeedShadowHz: c.state.CrossfeedShadowHz,
		LoudnessEnabled:   c.state.LoudnessEnabled,
		NoiseEnabled:      c.state.NoiseEnabled,
	}
}
