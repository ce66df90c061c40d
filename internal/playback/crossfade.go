/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playback

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/graph"
	"github.com/friendsincode/audioengine/internal/settings"
)

// CrossfadeCurves precomputes the equal-power fade-out/fade-in curves of
// length max(100, 50*durationSeconds), satisfying P6: fadeOut[i]^2 +
// fadeIn[i]^2 == 1 for every step.
func CrossfadeCurves(duration time.Duration) (fadeOut, fadeIn []float64) {
	seconds := duration.Seconds()
	steps := int(math.Max(100, 50*seconds))
	fadeOut = make([]float64, steps)
	fadeIn = make([]float64, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		fadeOut[i] = math.Cos(t * math.Pi / 2)
		fadeIn[i] = math.Sin(t * math.Pi / 2)
	}
	return fadeOut, fadeIn
}

// ShouldTriggerCrossfade reports whether a time-update tick should start a
// crossfade, per §4.3 "Crossfade trigger".
func ShouldTriggerCrossfade(crossfadeEnabled, inProgress, seekLockout bool, currentTime, duration, crossfadeDuration time.Duration) bool {
	if !crossfadeEnabled || inProgress || seekLockout {
		return false
	}
	if duration < 2*crossfadeDuration {
		return false
	}
	remaining := duration - currentTime
	return remaining >= minTimeForCrossfade && remaining <= crossfadeDuration
}

// HandleTimeUpdate is called on every primary-slot time-update tick. It
// starts a crossfade when the trigger condition is met.
func (c *Controller) HandleTimeUpdate(ctx context.Context, nextSong *settings.Song) {
	c.mu.Lock()
	if c.fx == nil {
		c.mu.Unlock()
		return
	}
	fxState := c.fx.State()
	p := c.primarySlot()
	song := p.Song()
	c.mu.Unlock()
	if song == nil {
		return
	}
	dur := time.Duration(song.DurationSeconds * float64(time.Second))
	xfadeDur := time.Duration(fxState.CrossfadeDuration * float64(time.Second))

	c.mu.Lock()
	inProgress := c.crossfadeInProgress
	lockout := c.crossfadeSeekLockout
	c.mu.Unlock()

	if !ShouldTriggerCrossfade(fxState.CrossfadeEnabled, inProgress, lockout, p.CurrentTime(), dur, xfadeDur) {
		return
	}

	c.mu.Lock()
	c.crossfadeSeekLockout = true
	c.mu.Unlock()

	go func() {
		if err := c.StartCrossfade(ctx, nextSong); err != nil {
			c.logger.Warn().Err(err).Msg("crossfade failed")
		}
	}()
}

// StartCrossfade runs the full twelve-step crossfade sequence from §4.3.
func (c *Controller) StartCrossfade(ctx context.Context, next *settings.Song) error {
	c.mu.Lock()
	if c.crossfadeInProgress {
		c.mu.Unlock()
		return nil // crossfadeInProgress acts as a simple mutex (§5)
	}
	c.crossfadeInProgress = true
	if c.g == nil {
		if err := c.rebuildGraphLocked(ctx); err != nil {
			c.crossfadeInProgress = false
			c.mu.Unlock()
			return err
		}
	}
	outgoingIdx := c.primaryIndex
	incomingIdx := 1 - outgoingIdx
	fxState := c.fx.State()
	c.mu.Unlock()

	if next == nil {
		c.mu.Lock()
		c.crossfadeInProgress = false
		c.crossfadeSeekLockout = false
		c.mu.Unlock()
		return fmt.Errorf("playback: no next song to crossfade into")
	}

	url, ok := c.resolver.AudioURL(ctx, next.UUID)
	if !ok {
		var err error
		url, err = c.resolver.StreamURL(ctx, next.UUID, next.Type)
		if err != nil {
			c.mu.Lock()
			c.crossfadeInProgress = false
			c.crossfadeSeekLockout = false
			c.mu.Unlock()
			return err
		}
	}

	incoming := c.slots[incomingIdx]
	incoming.Load(next, url)
	incoming.SetVolume(volumeForLoudness(fxState.LoudnessEnabled, c.effectiveVolume()))
	incoming.Play()

	rgID := fmt.Sprintf("rg%d", incomingIdx)
	if n, ok := c.g.Node(rgID); ok {
		rg := c.fx.ReplayGainFor(next.ReplayGainTrack, next.ReplayGainAlbum)
		n.(*graph.ReplayGainNode).Gain = graph.ReplayGainLinear(rg)
	}

	// Step 8: reference swap happens immediately so stale events from the
	// outgoing element are ignored from this point on.
	c.mu.Lock()
	c.primaryIndex = incomingIdx
	skip := c.skipRamp
	c.mu.Unlock()

	c.bus.Publish(events.EventSourceChange, events.Payload{"songUuid": next.UUID})
	c.bus.Publish(events.EventTrackChange, events.Payload{"songUuid": next.UUID})

	outgoing := c.slots[outgoingIdx]
	fadeOutNode, _ := c.g.Node(fmt.Sprintf("fade%d", outgoingIdx))
	fadeInNode, _ := c.g.Node(fmt.Sprintf("fade%d", incomingIdx))
	outParam := fadeOutNode.(*graph.FadeGainNode)
	inParam := fadeInNode.(*graph.FadeGainNode)

	duration := time.Duration(fxState.CrossfadeDuration * float64(time.Second))

	if skip {
		c.forceFadeEndpoints(outgoingIdx, incomingIdx, 0, 1.0)
	} else {
		fadeOut, fadeIn := CrossfadeCurves(duration)
		if err := outParam.Param.SetValueCurve(fadeOut, duration); err != nil {
			outParam.Param = outParam.Param.ForceReplace(0)
			_ = outParam.Param.SetValueCurve(fadeOut, duration)
		}
		if err := inParam.Param.SetValueCurve(fadeIn, duration); err != nil {
			inParam.Param = inParam.Param.ForceReplace(1.0)
			_ = inParam.Param.SetValueCurve(fadeIn, duration)
		}
		time.Sleep(duration + 50*time.Millisecond)
		c.forceFadeEndpoints(outgoingIdx, incomingIdx, 0, 1.0)
	}

	outgoing.Stop()

	c.mu.Lock()
	c.crossfadeInProgress = false
	c.crossfadeSeekLockout = false
	c.skipRamp = false
	c.lastPreloadUUID = ""
	c.mu.Unlock()

	recordEngineOp("crossfade", nil)
	return nil
}

// forceFadeEndpoints clamps both fade gains to their endpoint values using
// the force-replace fallback (§4.3 step 11).
func (c *Controller) forceFadeEndpoints(outIdx, inIdx int, outVal, inVal float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.g.Node(fmt.Sprintf("fade%d", outIdx)); ok {
		fg := n.(*graph.FadeGainNode)
		fg.Param = forceReplaceIfLocked(fg.Param, outVal)
	}
	if n, ok := c.g.Node(fmt.Sprintf("fade%d", inIdx)); ok {
		fg := n.(*graph.FadeGainNode)
		fg.Param = forceReplaceIfLocked(fg.Param, inVal)
	}
}

func volumeForLoudness(loudnessEnabled bool, userVolume float64) float64 {
	if loudnessEnabled {
		return 1.0
	}
	return userVolume
}

func (c *Controller) effectiveVolume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.muted {
		return 0
	}
	return c.volume
}

// MarkSkipRamp is called by the track-end handler when a crossfade is
// already in progress: the ongoing ramp completes without the audible
// curve, per §4.3 "Track-end handling".
func (c *Controller) MarkSkipRamp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipRamp = true
}

// CrossfadeInProgress reports whether a crossfade is currently running, so
// callers driving track-end detection know to defer to it instead of
// advancing the queue themselves.
func (c *Controller) CrossfadeInProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crossfadeInProgress
}

// CancelCrossfade clears in-progress/seek-lockout flags, stops the
// non-active element, and force-replaces both fade gains with fresh nodes
// at their resting values (§4.3/§5 cancellation).
func (c *Controller) CancelCrossfade() {
	c.mu.Lock()
	if !c.crossfadeInProgress {
		c.mu.Unlock()
		return
	}
	c.crossfadeInProgress = false
	c.crossfadeSeekLockout = false
	activeIdx := c.primaryIndex
	otherIdx := 1 - activeIdx
	g := c.g
	c.mu.Unlock()

	c.slots[otherIdx].Stop()

	if g == nil {
		return
	}
	c.mu.Lock()
	if n, ok := g.Node(fmt.Sprintf("fade%d", activeIdx)); ok {
		fg := n.(*graph.FadeGainNode)
		fg.Param = fg.Param.ForceReplace(1.0)
	}
	if n, ok := g.Node(fmt.Sprintf("fade%d", otherIdx)); ok {
		fg := n.(*graph.FadeGainNode)
		fg.Param = fg.Param.ForceReplace(0.0)
	}
	c.mu.Unlock()
}
