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

// AddToQueue appends uuids to the live/temp queue; if playNow is set and
// autoplay did not already start (queue was non-empty), jump to the first
// newly-added song.
func (e *Engine) AddToQueue(ctx context.Context, uuids []string, playNow bool) error {
	wasEmpty := len(e.queueMach.State().Items) == 0
	err := e.queueMach.AddToQueue(ctx, uuids)
	e.recordOp("addToQueue", err)
	if err != nil {
		return err
	}
	if playNow && !wasEmpty {
		return e.PlayAtIndex(ctx, len(e.queueMach.State().Items)-len(uuids))
	}
	return nil
}

func (e *Engine) AddByPath(ctx context.Context, path string) error {
	err := e.queueMach.AddByPath(ctx, path)
	e.recordOp("addByPath", err)
	return err
}

func (e *Engine) AddByFilter(ctx context.Context, filter string) error {
	err := e.queueMach.AddByFilter(ctx, filter)
	e.recordOp("addByFilter", err)
	return err
}

func (e *Engine) AddByPlaylist(ctx context.Context, id string, shuffle bool) error {
	err := e.queueMach.AddByPlaylist(ctx, id, shuffle)
	e.recordOp("addByPlaylist", err)
	return err
}

func (e *Engine) ClearQueue(ctx context.Context) error {
	e.Stop()
	err := e.queueMach.ClearQueue(ctx)
	e.recordOp("clearQueue", err)
	return err
}

// PlayAtIndex jumps to index i and plays it immediately.
func (e *Engine) PlayAtIndex(ctx context.Context, i int) error {
	err := e.queueMach.PlayAtIndex(ctx, i)
	e.recordOp("playAtIndex", err)
	if err != nil {
		return err
	}
	song := e.queueMach.State().CurrentSong()
	if song == nil {
		return queue.ErrQueueEmpty
	}
	return e.Play(ctx, song)
}

func (e *Engine) RemoveFromQueue(ctx context.Context, i int) error {
	err := e.queueMach.RemoveFromQueue(ctx, i)
	e.recordOp("removeFromQueue", err)
	return err
}

func (e *Engine) RemoveFromQueueBatch(ctx context.Context, indices []int) error {
	err := e.queueMach.RemoveFromQueueBatch(ctx, indices)
	e.recordOp("removeFromQueueBatch", err)
	return err
}

func (e *Engine) ReorderQueue(ctx context.Context, from, to int) error {
	err := e.queueMach.ReorderQueue(ctx, from, to)
	e.recordOp("reorderQueue", err)
	return err
}

func (e *Engine) ReorderQueueBatch(ctx context.Context, indices []int, to int) error {
	err := e.queueMach.ReorderQueueBatch(ctx, indices, to)
	e.recordOp("reorderQueueBatch", err)
	return err
}

func (e *Engine) SortQueue(ctx context.Context, field, order string) error {
	err := e.queueMach.SortQueue(ctx, field, order)
	e.recordOp("sortQueue", err)
	return err
}

// SaveQueueAsPlaylist is the one async operation whose result a caller
// explicitly awaits (§7 "Propagation").
func (e *Engine) SaveQueueAsPlaylist(ctx context.Context, name, desc string, public bool) (string, error) {
	id, err := e.catalog.SaveAsPlaylist(ctx, name, desc, public)
	e.recordOp("saveQueueAsPlaylist", err)
	return id, err
}

// ReloadQueue re-syncs the live queue from the server, as a manual refresh
// distinct from the automatic focus-refresh gate.
func (e *Engine) ReloadQueue(ctx context.Context) error {
	err := e.queueMach.FocusRefresh(ctx, e.playbackCtl.Observable().IsPlaying, time.Now())
	e.recordOp("reloadQueue", err)
	return err
}

// ToggleShuffle / CycleRepeatMode / SetShuffle / SetRepeatMode — Modes group.

func (e *Engine) ToggleShuffle(ctx context.Context) error {
	err := e.queueMach.ToggleShuffle(ctx)
	e.recordOp("toggleShuffle", err)
	return err
}

func (e *Engine) CycleRepeatMode(ctx context.Context) error {
	err := e.queueMach.CycleRepeatMode(ctx)
	e.recordOp("cycleRepeatMode", err)
	return err
}

func (e *Engine) SetShuffle(ctx context.Context, enabled bool) error {
	err := e.queueMach.SetShuffle(ctx, enabled)
	e.recordOp("setShuffle", err)
	return err
}

func (e *Engine) SetRepeatMode(ctx context.Context, mode queue.PlayMode) error {
	err := e.queueMach.SetRepeatMode(ctx, mode)
	e.recordOp("setRepeatMode", err)
	return err
}

// ToggleTempQueueMode / EnterTempQueueMode / ExitTempQueueMode wire the
// playback controller's Stop/Pause as the queue machine's StopFunc/PauseFunc
// hooks, keeping internal/queue free of any internal/playback import.

func (e *Engine) ToggleTempQueueMode(ctx context.Context) error {
	err := e.queueMach.ToggleTempQueueMode(ctx, e.playbackCtl.Stop, e.playbackCtl.Pause)
	e.recordOp("toggleTempQueueMode", err)
	return err
}

func (e *Engine) EnterTempQueueMode(ctx context.Context) error {
	err := e.queueMach.EnterTempQueueMode(ctx, e.playbackCtl.Stop)
	e.recordOp("enterTempQueueMode", err)
	return err
}

func (e *Engine) ExitTempQueueMode(ctx context.Context) error {
	err := e.queueMach.ExitTempQueueMode(ctx, e.playbackCtl.Pause)
	e.recordOp("exitTempQueueMode", err)
	if err != nil {
		return err
	}
	if song := e.queueMach.State().CurrentSong(); song != nil {
		_ = e.playbackCtl.PreloadPrimary(ctx, song)
	}
	return nil
}

// StartScaFromQueue / StartScaFromPlaylist / StartRadio / StopSca — SCA/radio group.

func (e *Engine) StartScaFromQueue(ctx context.Context) error {
	song, err := e.queueMach.StartScaFromQueue(ctx)
	e.recordOp("startScaFromQueue", err)
	if err != nil {
		return err
	}
	return e.Play(ctx, song)
}

func (e *Engine) StartScaFromPlaylist(ctx context.Context, id string) error {
	song, err := e.queueMach.StartScaFromPlaylist(ctx, id)
	e.recordOp("startScaFromPlaylist", err)
	if err != nil {
		return err
	}
	return e.Play(ctx, song)
}

func (e *Engine) StartRadio(ctx context.Context, seed, filter *string) error {
	song, err := e.queueMach.StartRadio(ctx, seed, filter)
	e.recordOp("startRadio", err)
	if err != nil {
		return err
	}
	return e.Play(ctx, song)
}

func (e *Engine) StopSca(ctx context.Context) error {
	err := e.queueMach.StopSca(ctx)
	e.recordOp("stopSca", err)
	return err
}
