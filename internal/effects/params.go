/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package effects holds the typed, clamped parameter state for every
// effect in the chain (Table 1), and the controller that applies changes
// to the live graph and persists them.
package effects

import "github.com/friendsincode/audioengine/internal/graph"

// ReplayGainMode selects which tag a song's ReplayGain is read from.
type ReplayGainMode string

const (
	ReplayGainOff   ReplayGainMode = "off"
	ReplayGainTrack ReplayGainMode = "track"
	ReplayGainAlbum ReplayGainMode = "album"
)

// NoiseMode selects the comfort-noise generator's spectral tilt preset.
type NoiseMode string

const (
	NoiseWhite NoiseMode = "white"
	NoiseGrey  NoiseMode = "grey"
)

// SleepTimerMode selects between a relative duration and an absolute
// wall-clock target.
type SleepTimerMode string

const (
	SleepTimerDuration SleepTimerMode = "duration"
	SleepTimerTime     SleepTimerMode = "time"
)

// CrossfeedPreset names a {level, delayMs, shadowHz} bundle.
type CrossfeedPreset string

const (
	CrossfeedOff    CrossfeedPreset = "off"
	CrossfeedNarrow CrossfeedPreset = "narrow"
	CrossfeedMedium CrossfeedPreset = "medium"
	CrossfeedWide   CrossfeedPreset = "wide"
)

// CrossfeedPresets maps preset names to {level, delayMs, shadowHz}, per
// Table 1.
var CrossfeedPresets = map[CrossfeedPreset][3]float64{
	CrossfeedOff:    {0, 0, 0},
	CrossfeedNarrow: {-25, 0.25, 2500},
	CrossfeedMedium: {-35, 0.4, 1500},
	CrossfeedWide:   {-45, 0.65, 1000},
}

// State is the full, clamped parameter block for every effect in Table 1.
type State struct {
	ReplayGainMode     ReplayGainMode
	ReplayGainPreampDB float64
	ReplayGainFallback float64

	GraphicEQEnabled bool
	GraphicGains     [10]float64
	GraphicPreampDB  float64

	ParametricBands []graph.ParametricBand
	ParametricPreampDB float64

	CrossfeedEnabled  bool
	CrossfeedLevel    float64
	CrossfeedDelayMs  float64
	CrossfeedShadowHz float64

	LoudnessEnabled      bool
	LoudnessReferenceSPL float64
	LoudnessStrength     float64

	GaplessEnabled bool

	CrossfadeEnabled  bool
	CrossfadeDuration float64

	TempoEnabled   bool
	TempoRate      float64
	TempoPitchLock bool

	NoiseEnabled   bool
	NoiseMode      NoiseMode
	NoiseTilt      float64
	NoisePowerDB   float64
	NoiseThreshold float64
	NoiseAttackMs  float64

	SleepTimerMode           SleepTimerMode
	SleepTimerMinutes        int
	SleepTimerTargetTime     string
	SleepTimerMinimumMinutes int
}

// DefaultState returns the Table 1 default values.
func DefaultState() State {
	return State{
		ReplayGainMode:     ReplayGainOff,
		ReplayGainFallback: -6,

		GraphicEQEnabled: false,

		LoudnessReferenceSPL: 80,
		LoudnessStrength:     100,

		GaplessEnabled: true,

		CrossfadeDuration: 3,

		TempoRate:      1.0,
		TempoPitchLock: true,

		NoiseMode:      NoiseWhite,
		NoisePowerDB:   -24,
		NoiseThreshold: -36,
		NoiseAttackMs:  25,

		SleepTimerMode:       SleepTimerTime,
		SleepTimerTargetTime: "23:00",
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
