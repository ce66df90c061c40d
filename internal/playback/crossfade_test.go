package playback

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestCrossfadeCurves_EqualPowerInvariant(t *testing.T) {
	fadeOut, fadeIn := CrossfadeCurves(3 * time.Second)
	if len(fadeOut) != len(fadeIn) {
		t.Fatalf("mismatched curve lengths")
	}
	for i := range fadeOut {
		sum := fadeOut[i]*fadeOut[i] + fadeIn[i]*fadeIn[i]
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("step %d: fadeOut^2+fadeIn^2 = %v, want 1", i, sum)
		}
	}
	if fadeOut[0] < 0.99 || fadeIn[0] > 0.01 {
		t.Fatalf("expected curve to start at (1,0), got (%v,%v)", fadeOut[0], fadeIn[0])
	}
	last := len(fadeOut) - 1
	if fadeOut[last] > 0.01 || fadeIn[last] < 0.99 {
		t.Fatalf("expected curve to end at (0,1), got (%v,%v)", fadeOut[last], fadeIn[last])
	}
}

func TestShouldTriggerCrossfade_AtRemainingEqualsDuration(t *testing.T) {
	dur := 180 * time.Second
	xfade := 3 * time.Second
	current := dur - xfade
	if !ShouldTriggerCrossfade(true, false, false, current, dur, xfade) {
		t.Fatalf("expected trigger when remaining == crossfadeDuration")
	}
}

func TestShouldTriggerCrossfade_RemainingTooSmall(t *testing.T) {
	dur := 180 * time.Second
	xfade := 3 * time.Second
	current := dur - 500*time.Millisecond
	if ShouldTriggerCrossfade(true, false, false, current, dur, xfade) {
		t.Fatalf("expected no trigger when remaining < 1s")
	}
}

func TestShouldTriggerCrossfade_DisabledOrBusy(t *testing.T) {
	dur := 180 * time.Second
	xfade := 3 * time.Second
	current := dur - xfade
	if ShouldTriggerCrossfade(false, false, false, current, dur, xfade) {
		t.Fatalf("expected no trigger when crossfade disabled")
	}
	if ShouldTriggerCrossfade(true, true, false, current, dur, xfade) {
		t.Fatalf("expected no trigger when already in progress")
	}
	if ShouldTriggerCrossfade(true, false, true, current, dur, xfade) {
		t.Fatalf("expected no trigger when seek-lockout active")
	}
}

func TestShouldTriggerCrossfade_TrackTooShort(t *testing.T) {
	dur := 4 * time.Second
	xfade := 3 * time.Second
	if ShouldTriggerCrossfade(true, false, false, 1*time.Second, dur, xfade) {
		t.Fatalf("expected no trigger when duration < 2*crossfadeDuration")
	}
}

func TestController_StartCrossfadeSwapsPrimaryIndex(t *testing.T) {
	c := newWiredTestController(t)
	ctx := context.Background()
	_ = c.fx.SetCrossfadeEnabled(ctx, true)
	_ = c.fx.SetCrossfadeDuration(ctx, 1) // minimum allowed, keeps the test fast
	_ = c.Play(ctx, testSong("song-1", 180))

	before := c.primaryIndex
	if err := c.StartCrossfade(ctx, testSong("song-2", 180)); err != nil {
		t.Fatalf("start crossfade: %v", err)
	}
	if c.primaryIndex == before {
		t.Fatalf("expected primaryIndex to swap after crossfade")
	}
	if c.Observable().CurrentSong.UUID != "song-2" {
		t.Fatalf("expected current song song-2 after crossfade, got %+v", c.Observable().CurrentSong)
	}
}

func TestController_StartCrossfadeNoopWhenAlreadyInProgress(t *testing.T) {
	c := newWiredTestController(t)
	ctx := context.Background()
	_ = c.fx.SetCrossfadeEnabled(ctx, true)
	_ = c.Play(ctx, testSong("song-1", 180))

	c.mu.Lock()
	c.crossfadeInProgress = true
	c.mu.Unlock()

	if err := c.StartCrossfade(ctx, testSong("song-2", 180)); err != nil {
		t.Fatalf("expected nil error (no-op), got %v", err)
	}
}

func TestController_CancelCrossfadeClearsFlags(t *testing.T) {
	c := newWiredTestController(t)
	ctx := context.Background()
	_ = c.fx.SetCrossfadeEnabled(ctx, true)
	_ = c.Play(ctx, testSong("song-1", 180))

	c.mu.Lock()
	c.crossfadeInProgress = true
	c.crossfadeSeekLockout = true
	c.mu.Unlock()

	c.CancelCrossfade()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crossfadeInProgress || c.crossfadeSeekLockout {
		t.Fatalf("expected flags cleared after cancel")
	}
}

func TestController_MarkSkipRampSetsFlag(t *testing.T) {
	c := newWiredTestController(t)
	c.MarkSkipRamp()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.skipRamp {
		t.Fatalf("expected skipRamp set")
	}
}

func TestController_SwitchLatencyModePreservesSongAndPosition(t *testing.T) {
	c := newWiredTestController(t)
	ctx := context.Background()
	_ = c.Play(ctx, testSong("song-1", 180))
	time.Sleep(10 * time.Millisecond)

	if err := c.SwitchLatencyMode(ctx, LatencyInteractive); err != nil {
		t.Fatalf("switch latency: %v", err)
	}
	if c.LatencyMode() != LatencyInteractive {
		t.Fatalf("expected latency mode interactive")
	}
	obs := c.Observable()
	if obs.CurrentSong == nil || obs.CurrentSong.UUID != "song-1" {
		t.Fatalf("expected song preserved across latency switch, got %+v", obs.CurrentSong)
	}
	if obs.CurrentTime < 10*time.Millisecond {
		t.Fatalf("expected position preserved across latency switch, got %v", obs.CurrentTime)
	}
}
