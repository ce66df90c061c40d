/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package graph

import "math"

// ReplayGainLinear converts a dB offset into a linear gain multiplier.
func ReplayGainLinear(gainDB float64) float64 {
	return math.Pow(10, gainDB/20)
}

// ClampReplayGainDB clamps a computed ReplayGain offset to [-24, +12] dB,
// the bound §4.1/P7 require regardless of source tag or preamp.
func ClampReplayGainDB(gainDB float64) float64 {
	if gainDB < -24 {
		return -24
	}
	if gainDB > 12 {
		return 12
	}
	return gainDB
}

// ReplayGainDB computes the clamped gain offset for a song given its tags,
// the active mode, a preamp, and a fallback used when no tag is present.
func ReplayGainDB(mode string, trackDB, albumDB *float64, preampDB, fallbackDB float64) float64 {
	var base float64
	switch {
	case mode == "album" && albumDB != nil:
		base = *albumDB
	case trackDB != nil:
		base = *trackDB
	default:
		base = fallbackDB
	}
	return ClampReplayGainDB(base + preampDB)
}

// CrossfeedGains computes the direct and cross gains of the mid-side
// crossfeed matrix for level x in [-1, +1]: -1 mono, 0 passthrough, +1 wide.
func CrossfeedGains(x float64) (direct, cross float64) {
	direct = 0.6*(0.5-x*0.5) + 0.6*(0.5+x*0.5)
	cross = 0.6*(0.5-x*0.5) - 0.6*(0.5+x*0.5)
	return direct, cross
}

// LoudnessCurve implements the simplified ISO-226-inspired bass/treble
// boost model: referenceSPL in [60,90] dB, strength in [0,150]%.
func LoudnessCurve(volume, referenceSPL, strength float64) (bassBoostDB, trebleBoostDB float64) {
	vDB := 20 * math.Log10(math.Max(volume, 1e-9))
	effectiveSPL := referenceSPL + vDB
	phon := math.Max(20, effectiveSPL)
	factor := math.Max(0, (80-phon)/40)
	s := strength / 100
	bassBoostDB = factor * 12 * s
	trebleBoostDB = factor * 6 * s
	return bassBoostDB, trebleBoostDB
}

// NoiseSmoothingCoefficient computes the exponential-approach coefficient
// the comfort-noise generator uses to ease its level toward target.
func NoiseSmoothingCoefficient(blockTimeSeconds, attackMs float64) float64 {
	if attackMs <= 0 {
		return 1
	}
	return 1 - math.Exp(-blockTimeSeconds/(attackMs/1000))
}

// bandResponseDB approximates the magnitude response in dB of a single
// filter band at frequency f, used only to compute the parametric preamp —
// this engine performs no actual sample-level filtering (§1 Non-goals).
func bandResponseDB(band ParametricBand, f float64) float64 {
	if band.Frequency <= 0 || f <= 0 {
		return 0
	}
	q := band.Q
	if q <= 0 {
		q = 1
	}
	switch band.Type {
	case FilterLowShelf:
		slope := 2 * q
		ratio := math.Pow(f/band.Frequency, slope)
		return band.GainDB / (1 + ratio)
	case FilterHighShelf:
		slope := 2 * q
		ratio := math.Pow(f/band.Frequency, slope)
		return band.GainDB * ratio / (1 + ratio)
	default: // FilterPeaking: Gaussian bell in octaves, width set by Q
		n := math.Log2(f / band.Frequency)
		width := 0.5 / q
		return band.GainDB * math.Exp(-(n*n)/(2*width*width))
	}
}

// CombinedResponseDB sums the per-band responses at frequency f.
func CombinedResponseDB(bands []ParametricBand, f float64) float64 {
	var total float64
	for _, band := range bands {
		total += bandResponseDB(band, f)
	}
	return total
}

// ParametricPreampDB computes the preamp needed to prevent clipping from a
// parametric band chain: sample 256 log-spaced points between 20 Hz and
// 20 kHz, find the combined-response peak, and return -ceil(peak*10)/10 dB
// (0.1 dB precision), or 0 if the peak is not positive.
func ParametricPreampDB(bands []ParametricBand) float64 {
	const points = 256
	const lo, hi = 20.0, 20000.0
	logLo, logHi := math.Log10(lo), math.Log10(hi)
	var peak float64
	for i := 0; i < points; i++ {
		t := float64(i) / float64(points-1)
		f := math.Pow(10, logLo+t*(logHi-logLo))
		resp := CombinedResponseDB(bands, f)
		if resp > peak {
			peak = resp
		}
	}
	if peak <= 0 {
		return 0
	}
	return -math.Ceil(peak*10) / 10
}
