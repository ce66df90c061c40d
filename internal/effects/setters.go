/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package effects

import (
	"context"
	"fmt"
	"math"

	"github.com/friendsincode/audioengine/internal/graph"
	"github.com/friendsincode/audioengine/internal/settings"
)

// ensureBuilt rebuilds the graph if a structural change requires topology
// that does not yet exist — the suspension points named in spec §5
// (setCrossfadeEnabled, setLoudnessEnabled, setNoiseEnabled, and any toggle
// that needs _ensureAudioPipeline).
func (c *Controller) ensureBuilt(ctx context.Context) error {
	if c.host.CurrentGraph() != nil {
		return nil
	}
	return c.host.RebuildGraph(ctx)
}

// SetReplayGainMode sets the ReplayGain source (off/track/album).
func (c *Controller) SetReplayGainMode(ctx context.Context, mode ReplayGainMode) error {
	return c.applyEffect(ctx, "replaygain_mode", func(ctx context.Context) error {
		c.state.ReplayGainMode = mode
		return c.persistAudioFX(ctx)
	})
}

// SetReplayGainPreamp sets the ReplayGain preamp, clamped to [-12, +12] dB.
func (c *Controller) SetReplayGainPreamp(ctx context.Context, dB float64) error {
	return c.applyEffect(ctx, "replaygain_preamp", func(ctx context.Context) error {
		c.state.ReplayGainPreampDB = clamp(dB, -12, 12)
		return c.persistAudioFX(ctx)
	})
}

// SetReplayGainFallback sets the fallback gain for untagged songs, clamped
// to [-24, 0] dB.
func (c *Controller) SetReplayGainFallback(ctx context.Context, dB float64) error {
	return c.applyEffect(ctx, "replaygain_fallback", func(ctx context.Context) error {
		c.state.ReplayGainFallback = clamp(dB, -24, 0)
		return c.persistAudioFX(ctx)
	})
}

// SetEQBand sets graphic EQ band i (0-9) to a gain in [-12, +12] dB.
func (c *Controller) SetEQBand(ctx context.Context, i int, gainDB float64) error {
	return c.applyEffect(ctx, "eq_band", func(ctx context.Context) error {
		if i < 0 || i > 9 {
			return fmt.Errorf("effects: eq band index %d out of range", i)
		}
		c.state.GraphicGains[i] = clamp(gainDB, -12, 12)
		return c.persistEQ(ctx)
	})
}

// SetEQEnabled toggles the graphic EQ. The band gains stay recorded either
// way. The nodes of an already-built graph are left as they are; a graph
// built while EQ is disabled has no EQ filter nodes at all, and its preamp
// node keeps the stored preamp gain rather than unity.
func (c *Controller) SetEQEnabled(ctx context.Context, enabled bool) error {
	return c.applyEffect(ctx, "eq_enabled", func(ctx context.Context) error {
		c.state.GraphicEQEnabled = enabled
		if err := c.ensureBuilt(ctx); err != nil {
			return err
		}
		return c.persistEQ(ctx)
	})
}

// SetGraphicPreamp sets the graphic-chain preamp gain directly.
func (c *Controller) SetGraphicPreamp(ctx context.Context, dB float64) error {
	return c.applyEffect(ctx, "graphic_preamp", func(ctx context.Context) error {
		c.state.GraphicPreampDB = dB
		return c.persistAudioFX(ctx)
	})
}

// ResetEQ zeroes every graphic band and the preamp.
func (c *Controller) ResetEQ(ctx context.Context) error {
	return c.applyEffect(ctx, "eq_reset", func(ctx context.Context) error {
		c.state.GraphicGains = [10]float64{}
		c.state.GraphicPreampDB = 0
		if err := c.persistEQ(ctx); err != nil {
			return err
		}
		return c.persistAudioFX(ctx)
	})
}

// RestoreGraphicEQ replaces all ten graphic gains from a saved preset.
func (c *Controller) RestoreGraphicEQ(ctx context.Context, gains [10]float64) error {
	return c.applyEffect(ctx, "eq_restore", func(ctx context.Context) error {
		c.state.GraphicGains = gains
		return c.persistEQ(ctx)
	})
}

// SetParametricEQ replaces the parametric band list and recomputes the
// anti-clip preamp (§4.2 "Parametric-preamp computation"), unless an
// explicit preamp override is supplied.
func (c *Controller) SetParametricEQ(ctx context.Context, bands []graph.ParametricBand, preampOverride *float64) error {
	return c.applyEffect(ctx, "parametric_eq", func(ctx context.Context) error {
		c.state.ParametricBands = bands
		if preampOverride != nil {
			c.state.ParametricPreampDB = *preampOverride
		} else {
			c.state.ParametricPreampDB = graph.ParametricPreampDB(bands)
		}
		if err := c.ensureBuilt(ctx); err != nil {
			return err
		}
		return c.store.SetParametricEQActive(ctx, c.sessionID, settings.ParametricEQActive{
			Bands: toSettingsBands(bands),
		})
	})
}

// SetCrossfeedEnabled toggles the crossfeed matrix.
func (c *Controller) SetCrossfeedEnabled(ctx context.Context, enabled bool) error {
	return c.applyEffect(ctx, "crossfeed_enabled", func(ctx context.Context) error {
		c.state.CrossfeedEnabled = enabled
		if err := c.ensureBuilt(ctx); err != nil {
			return err
		}
		return c.persistAudioFX(ctx)
	})
}

// SetCrossfeedLevel sets crossfeed level in [-100, +100].
func (c *Controller) SetCrossfeedLevel(ctx context.Context, level float64) error {
	return c.applyEffect(ctx, "crossfeed_level", func(ctx context.Context) error {
		c.state.CrossfeedLevel = clamp(level, -100, 100)
		return c.persistAudioFX(ctx)
	})
}

// SetCrossfeedDelayMs sets the inter-channel delay in [0, 5] ms.
func (c *Controller) SetCrossfeedDelayMs(ctx context.Context, ms float64) error {
	return c.applyEffect(ctx, "crossfeed_delay", func(ctx context.Context) error {
		c.state.CrossfeedDelayMs = clamp(ms, 0, 5)
		return c.persistAudioFX(ctx)
	})
}

// SetCrossfeedShadowHz sets the head-shadow low-pass cutoff: 0 (bypassed)
// or in [500, 3000] Hz.
func (c *Controller) SetCrossfeedShadowHz(ctx context.Context, hz float64) error {
	return c.applyEffect(ctx, "crossfeed_shadow", func(ctx context.Context) error {
		if hz != 0 {
			hz = clamp(hz, 500, 3000)
		}
		c.state.CrossfeedShadowHz = hz
		return c.persistAudioFX(ctx)
	})
}

// ApplyCrossfeedPreset sets level/delay/shadow from a named preset.
func (c *Controller) ApplyCrossfeedPreset(ctx context.Context, preset CrossfeedPreset) error {
	vals, ok := CrossfeedPresets[preset]
	if !ok {
		return fmt.Errorf("effects: unknown crossfeed preset %q", preset)
	}
	return c.applyEffect(ctx, "crossfeed_preset", func(ctx context.Context) error {
		c.state.CrossfeedLevel, c.state.CrossfeedDelayMs, c.state.CrossfeedShadowHz = vals[0], vals[1], vals[2]
		return c.persistAudioFX(ctx)
	})
}

// SetLoudnessEnabled toggles loudness compensation.
func (c *Controller) SetLoudnessEnabled(ctx context.Context, enabled bool) error {
	return c.applyEffect(ctx, "loudness_enabled", func(ctx context.Context) error {
		c.state.LoudnessEnabled = enabled
		if err := c.ensureBuilt(ctx); err != nil {
			return err
		}
		return c.persistAudioFX(ctx)
	})
}

// SetLoudnessReferenceSPL sets the reference SPL in [60, 90] dB.
func (c *Controller) SetLoudnessReferenceSPL(ctx context.Context, spl float64) error {
	return c.applyEffect(ctx, "loudness_reference_spl", func(ctx context.Context) error {
		c.state.LoudnessReferenceSPL = clamp(spl, 60, 90)
		return c.persistAudioFX(ctx)
	})
}

// SetLoudnessStrength sets the boost strength multiplier in [0, 150]%.
func (c *Controller) SetLoudnessStrength(ctx context.Context, pct float64) error {
	return c.applyEffect(ctx, "loudness_strength", func(ctx context.Context) error {
		c.state.LoudnessStrength = clamp(pct, 0, 150)
		return c.persistAudioFX(ctx)
	})
}

// SetGaplessEnabled toggles gapless preload.
func (c *Controller) SetGaplessEnabled(ctx context.Context, enabled bool) error {
	return c.applyEffect(ctx, "gapless_enabled", func(ctx context.Context) error {
		c.state.GaplessEnabled = enabled
		return c.persistAudioFX(ctx)
	})
}

// SetCrossfadeEnabled toggles crossfade. Building the dual pipeline is
// idempotent per §8: calling this twice with true builds it exactly once.
func (c *Controller) SetCrossfadeEnabled(ctx context.Context, enabled bool) error {
	return c.applyEffect(ctx, "crossfade_enabled", func(ctx context.Context) error {
		if c.state.CrossfadeEnabled == enabled {
			return nil
		}
		c.state.CrossfadeEnabled = enabled
		if err := c.host.RebuildGraph(ctx); err != nil {
			return err
		}
		return c.persistAudioFX(ctx)
	})
}

// SetCrossfadeDuration sets the crossfade length in [1, 12] s.
func (c *Controller) SetCrossfadeDuration(ctx context.Context, seconds float64) error {
	return c.applyEffect(ctx, "crossfade_duration", func(ctx context.Context) error {
		c.state.CrossfadeDuration = clamp(seconds, 1, 12)
		return c.persistAudioFX(ctx)
	})
}

// SetTempoEnabled toggles the platform playback-rate control.
func (c *Controller) SetTempoEnabled(ctx context.Context, enabled bool) error {
	return c.applyEffect(ctx, "tempo_enabled", func(ctx context.Context) error {
		c.state.TempoEnabled = enabled
		return c.persistAudioFX(ctx)
	})
}

// SetTempoRate sets the playback rate in [0.5, 2.0].
func (c *Controller) SetTempoRate(ctx context.Context, rate float64) error {
	return c.applyEffect(ctx, "tempo_rate", func(ctx context.Context) error {
		c.state.TempoRate = clamp(rate, 0.5, 2.0)
		return c.persistAudioFX(ctx)
	})
}

// SetTempoPitchLock toggles pitch-preserving rate control.
func (c *Controller) SetTempoPitchLock(ctx context.Context, lock bool) error {
	return c.applyEffect(ctx, "tempo_pitch_lock", func(ctx context.Context) error {
		c.state.TempoPitchLock = lock
		return c.persistAudioFX(ctx)
	})
}

// SetNoiseEnabled toggles the comfort-noise generator.
func (c *Controller) SetNoiseEnabled(ctx context.Context, enabled bool) error {
	return c.applyEffect(ctx, "noise_enabled", func(ctx context.Context) error {
		c.state.NoiseEnabled = enabled
		if err := c.ensureBuilt(ctx); err != nil {
			return err
		}
		return c.persistAudioFX(ctx)
	})
}

// SetNoiseMode selects white or grey spectral tilt.
func (c *Controller) SetNoiseMode(ctx context.Context, mode NoiseMode) error {
	return c.applyEffect(ctx, "noise_mode", func(ctx context.Context) error {
		c.state.NoiseMode = mode
		return c.persistAudioFX(ctx)
	})
}

// SetNoiseTilt sets the spectral tilt in [-100, +100].
func (c *Controller) SetNoiseTilt(ctx context.Context, tilt float64) error {
	return c.applyEffect(ctx, "noise_tilt", func(ctx context.Context) error {
		c.state.NoiseTilt = clamp(tilt, -100, 100)
		return c.persistAudioFX(ctx)
	})
}

// SetNoisePower sets the target noise power in [-60, 0] dBFS.
func (c *Controller) SetNoisePower(ctx context.Context, dB float64) error {
	return c.applyEffect(ctx, "noise_power", func(ctx context.Context) error {
		c.state.NoisePowerDB = clamp(dB, -60, 0)
		return c.persistAudioFX(ctx)
	})
}

// SetNoiseThreshold sets the music-RMS threshold in [-60, 0] dBFS; 0 means
// noise plays unconditionally.
func (c *Controller) SetNoiseThreshold(ctx context.Context, dB float64) error {
	return c.applyEffect(ctx, "noise_threshold", func(ctx context.Context) error {
		c.state.NoiseThreshold = clamp(dB, -60, 0)
		return c.persistAudioFX(ctx)
	})
}

// SetNoiseAttack sets the attack time in [25, 2000] ms (log scale UI-side).
func (c *Controller) SetNoiseAttack(ctx context.Context, ms float64) error {
	return c.applyEffect(ctx, "noise_attack", func(ctx context.Context) error {
		c.state.NoiseAttackMs = clamp(ms, 25, 2000)
		return c.persistAudioFX(ctx)
	})
}

// SetSleepTimerMode selects duration vs absolute-time mode.
func (c *Controller) SetSleepTimerMode(ctx context.Context, mode SleepTimerMode) error {
	return c.applyEffect(ctx, "sleep_timer_mode", func(ctx context.Context) error {
		c.state.SleepTimerMode = mode
		return c.persistAudioFX(ctx)
	})
}

// SetSleepTimerMinutes sets the duration-mode length in [0, 180] minutes.
func (c *Controller) SetSleepTimerMinutes(ctx context.Context, minutes int) error {
	return c.applyEffect(ctx, "sleep_timer_minutes", func(ctx context.Context) error {
		c.state.SleepTimerMinutes = clampInt(minutes, 0, 180)
		return c.persistAudioFX(ctx)
	})
}

// SetSleepTimerTargetTime sets the time-mode target as "HH:MM".
func (c *Controller) SetSleepTimerTargetTime(ctx context.Context, hhmm string) error {
	return c.applyEffect(ctx, "sleep_timer_target", func(ctx context.Context) error {
		c.state.SleepTimerTargetTime = hhmm
		return c.persistAudioFX(ctx)
	})
}

// SetSleepTimerMinimumMinutes sets the minimum runway in [0, 180] minutes.
func (c *Controller) SetSleepTimerMinimumMinutes(ctx context.Context, minutes int) error {
	return c.applyEffect(ctx, "sleep_timer_minimum", func(ctx context.Context) error {
		c.state.SleepTimerMinimumMinutes = clampInt(minutes, 0, 180)
		return c.persistAudioFX(ctx)
	})
}

// ReplayGainFor computes the clamped ReplayGain dB offset for a song under
// the controller's current mode/preamp/fallback.
func (c *Controller) ReplayGainFor(trackDB, albumDB *float64) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return graph.ReplayGainDB(string(c.state.ReplayGainMode), trackDB, albumDB, c.state.ReplayGainPreampDB, c.state.ReplayGainFallback)
}

// LoudnessBoosts returns the current bass/treble boost in dB for a given
// linear volume, under the controller's reference SPL/strength.
func (c *Controller) LoudnessBoosts(volume float64) (bassDB, trebleDB float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return graph.LoudnessCurve(volume, c.state.LoudnessReferenceSPL, c.state.LoudnessStrength)
}

// roundTenth rounds v to the nearest 0.1 (dB precision). Nothing in this
// package calls it at present.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
