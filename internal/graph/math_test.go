package graph

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestReplayGainDB_ClampsToBounds(t *testing.T) {
	track := -30.0
	got := ReplayGainDB("track", &track, nil, 0, -6)
	if got != -24 {
		t.Fatalf("expected clamp to -24, got %v", got)
	}

	track2 := 20.0
	got2 := ReplayGainDB("track", &track2, nil, 0, -6)
	if got2 != 12 {
		t.Fatalf("expected clamp to +12, got %v", got2)
	}
}

func TestReplayGainDB_FallsBackWhenNoTag(t *testing.T) {
	got := ReplayGainDB("track", nil, nil, 0, -6)
	if got != -6 {
		t.Fatalf("expected fallback -6, got %v", got)
	}
}

func TestReplayGainDB_AlbumModePrefersAlbumTag(t *testing.T) {
	track := -2.0
	album := -4.0
	got := ReplayGainDB("album", &track, &album, 0, -6)
	if got != -4 {
		t.Fatalf("expected album tag -4, got %v", got)
	}
}

func TestReplayGainLinear(t *testing.T) {
	if !almostEqual(ReplayGainLinear(0), 1.0, 1e-9) {
		t.Fatalf("0dB should be unity gain")
	}
	if !almostEqual(ReplayGainLinear(20), 10.0, 1e-6) {
		t.Fatalf("20dB should be 10x gain")
	}
}

func TestCrossfeedGains(t *testing.T) {
	cases := []struct {
		x              float64
		direct, cross  float64
	}{
		{0, 0.6, 0},
		{1, 0.6, -0.6},
		{-1, 0.6, 0.6},
	}
	for _, c := range cases {
		direct, cross := CrossfeedGains(c.x)
		if !almostEqual(direct, c.direct, 1e-9) || !almostEqual(cross, c.cross, 1e-9) {
			t.Fatalf("x=%v: got direct=%v cross=%v, want %v/%v", c.x, direct, cross, c.direct, c.cross)
		}
	}
}

func TestLoudnessCurve_ZeroAtHighSPL(t *testing.T) {
	bass, treble := LoudnessCurve(1.0, 90, 100)
	if bass != 0 || treble != 0 {
		t.Fatalf("expected no boost at full volume/high SPL, got bass=%v treble=%v", bass, treble)
	}
}

func TestLoudnessCurve_BoostsAtLowVolume(t *testing.T) {
	bass, treble := LoudnessCurve(0.1, 80, 100)
	if bass <= 0 || treble <= 0 {
		t.Fatalf("expected positive boost at low volume, got bass=%v treble=%v", bass, treble)
	}
	if bass <= treble {
		t.Fatalf("bass boost should exceed treble boost, got bass=%v treble=%v", bass, treble)
	}
}

func TestNoiseSmoothingCoefficient(t *testing.T) {
	c := NoiseSmoothingCoefficient(0.02, 25)
	if c <= 0 || c >= 1 {
		t.Fatalf("expected coefficient in (0,1), got %v", c)
	}
}

func TestParametricPreampDB_ScenarioFour(t *testing.T) {
	bands := []ParametricBand{
		{Type: FilterPeaking, Frequency: 1000, Q: 1, GainDB: 9},
		{Type: FilterPeaking, Frequency: 4000, Q: 1, GainDB: 6},
	}
	preamp := ParametricPreampDB(bands)
	if preamp > -8.5 || preamp < -9.5 {
		t.Fatalf("expected preamp near -9.0 dB, got %v", preamp)
	}
}

func TestParametricPreampDB_NoBoostIsZero(t *testing.T) {
	bands := []ParametricBand{{Type: FilterPeaking, Frequency: 1000, Q: 1, GainDB: -6}}
	if got := ParametricPreampDB(bands); got != 0 {
		t.Fatalf("expected 0 preamp when no positive boost, got %v", got)
	}
}
