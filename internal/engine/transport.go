/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package engine

import (
	"context"
	"time"

	"github.com/friendsincode/audioengine/internal/queue"
)

// Play loads and starts song, resetting the consecutive-error counter, and
// kicks off a gapless/crossfade preload of whatever the queue has next.
func (e *Engine) Play(ctx context.Context, song *queue.Song) error {
	err := e.playbackCtl.Play(ctx, song)
	e.recordOp("play", err)
	if err != nil {
		e.recordError(err.Error())
		return err
	}
	e.mu.Lock()
	e.consecutiveErrors = 0
	e.lastErr = ""
	e.mu.Unlock()

	e.preloadNextIfEnabled(ctx)
	return nil
}

// preloadNextIfEnabled preloads the queue's next-up song into the playback
// controller's secondary slot when gapless playback or crossfade is
// enabled (§4.3 "Gapless preload"), using the same shuffle/repeat-aware
// selection crossfade scheduling uses (PeekNext), so the preloaded song is
// always the one advancement will actually play next.
func (e *Engine) preloadNextIfEnabled(ctx context.Context) {
	fxState := e.effectsCtl.State()
	if !fxState.GaplessEnabled && !fxState.CrossfadeEnabled {
		return
	}
	next := e.queueMach.PeekNext()
	if next == nil {
		return
	}
	go func() {
		if err := e.playbackCtl.PreloadNext(ctx, next); err != nil {
			e.logger.Debug().Err(err).Msg("preload next song failed")
		}
	}()
}

// Pause freezes playback.
func (e *Engine) Pause() {
	e.playbackCtl.Pause()
	e.recordOp("pause", nil)
}

// Resume continues playback of the current slot.
func (e *Engine) Resume(ctx context.Context) error {
	err := e.playbackCtl.Resume(ctx)
	e.recordOp("resume", err)
	return err
}

// TogglePlayPause pauses if playing, resumes if paused.
func (e *Engine) TogglePlayPause(ctx context.Context) error {
	if e.playbackCtl.Observable().IsPlaying {
		e.Pause()
		return nil
	}
	return e.Resume(ctx)
}

// Stop halts playback and releases both slots' sources.
func (e *Engine) Stop() {
	e.playbackCtl.Stop()
	e.recordOp("stop", nil)
}

// Seek jumps to pos if the current song is seekable.
func (e *Engine) Seek(pos time.Duration) error {
	err := e.playbackCtl.Seek(pos)
	e.recordOp("seek", err)
	return err
}

// SetVolume sets user volume in [0,1].
func (e *Engine) SetVolume(v float64) {
	e.playbackCtl.SetVolume(v)
	e.recordOp("setVolume", nil)
}

// ToggleMute flips mute.
func (e *Engine) ToggleMute() {
	e.playbackCtl.ToggleMute()
	e.recordOp("toggleMute", nil)
}

// Next advances the queue (user-initiated) and plays the resulting song,
// recording a non-skip history event for the song that was playing.
func (e *Engine) Next(ctx context.Context) error {
	return e.advance(ctx, "next", false)
}

// Previous moves to the previous song per play-mode/shuffle-history rules.
func (e *Engine) Previous(ctx context.Context) error {
	e.recordOutgoingHistory(ctx, "previous", false)
	song, err := e.queueMach.Previous(ctx)
	e.recordOp("previous", err)
	if err != nil {
		e.recordError(err.Error())
		return err
	}
	return e.Play(ctx, song)
}

// Skip is identical to Next but always records the outgoing song as
// "skipped" when SCA is enabled (§6 "skip: same as next but additionally
// records a history event marked skipped if SCA is on").
func (e *Engine) Skip(ctx context.Context) error {
	return e.advance(ctx, "skip", true)
}

// advance records history for the currently-playing song, advances the
// queue, and plays whatever comes next; on exhaustion it tries SCA
// repopulation once before giving up and stopping (§4.4 "On queue
// exhaustion, call populate once; if it returns empty, stop").
func (e *Engine) advance(ctx context.Context, source string, forceSkippedWhenSca bool) error {
	e.recordOutgoingHistory(ctx, source, forceSkippedWhenSca)

	song, err := e.queueMach.Next(ctx)
	if err == queue.ErrQueueEmpty {
		if exhaustErr := e.queueMach.HandleExhaustion(ctx); exhaustErr != nil {
			e.Stop()
			e.recordOp(source, nil)
			if exhaustErr != queue.ErrQueueEmpty {
				e.recordError(exhaustErr.Error())
				return exhaustErr
			}
			return nil
		}
		song, err = e.queueMach.Next(ctx)
	}
	e.recordOp(source, err)
	if err != nil {
		e.Stop()
		if err != queue.ErrQueueEmpty {
			e.recordError(err.Error())
		}
		return nil
	}
	if playErr := e.Play(ctx, song); playErr != nil {
		return playErr
	}
	e.queueMach.MaybePrePopulate(ctx)
	return nil
}

func (e *Engine) recordOutgoingHistory(ctx context.Context, source string, wasSkipped bool) {
	cur := e.queueMach.State().CurrentSong()
	if cur == nil {
		return
	}
	sca := e.queueMach.State().SCAEnabled
	_ = e.catalog.RecordHistory(ctx, cur.UUID, e.playbackCtl.Observable().CurrentTime.Seconds(), wasSkipped && sca, source)
}

// Tick drives time-based behavior that a real media element's events would
// otherwise fire: crossfade triggering, natural track-end advancement, and
// the consecutive-error retry ceiling. Callers invoke this on a short
// interval (e.g. every time-update) with the current observable state.
func (e *Engine) Tick(ctx context.Context) {
	obs := e.playbackCtl.Observable()
	if obs.CurrentSong == nil || obs.Duration <= 0 {
		return
	}

	next := e.peekNextSong()
	e.playbackCtl.HandleTimeUpdate(ctx, next)

	if obs.CurrentTime < obs.Duration {
		return
	}
	if e.playbackCtl.CrossfadeInProgress() {
		e.playbackCtl.MarkSkipRamp()
		return
	}

	e.recordOutgoingHistory(ctx, "track_end", false)

	if e.queueMach.State().PlayMode == queue.PlayModeRepeatOne {
		_ = e.Play(ctx, obs.CurrentSong)
		return
	}
	_ = e.advance(ctx, "track_end", false)
}

func (e *Engine) peekNextSong() *queue.Song {
	return e.queueMach.PeekNext()
}

// RecordPlaybackError implements §7 "Playback error" policy: increment the
// counter, skip forward, surface an error after the retry ceiling.
func (e *Engine) RecordPlaybackError(err error) {
	n := e.playbackCtl.RecordPlaybackError(err)
	if n >= e.maxConsecutiveErrors() {
		e.recordError("playback failed repeatedly; stopping")
		e.Stop()
		return
	}
	_ = e.advance(context.Background(), "error_recovery", false)
}
