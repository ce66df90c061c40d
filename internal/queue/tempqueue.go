/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import (
	"context"
	"time"

	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/settings"
)

const (
	focusRefreshAwayThreshold = 5 * time.Second
	focusRefreshCooldown      = 5 * time.Second
	tempExitCooldown          = 5 * time.Second
)

// StopFunc pauses playback; supplied by the caller (engine) so this package
// does not depend on internal/playback.
type StopFunc func()

// EnterTempQueueMode snapshots the current queue, clears the live queue,
// stops playback, and flips temp-queue-mode on.
func (m *Machine) EnterTempQueueMode(ctx context.Context, stop StopFunc) error {
	s := m.snap.state()
	items := make([]settings.Song, len(s.Items))
	for i, song := range s.Items {
		items[i] = *song
	}
	if err := m.store.SaveTempQueueState(ctx, m.sessionID, settings.TempQueueSnapshot{
		Items:      items,
		QueueIndex: s.Index,
		SCAEnabled: s.SCAEnabled,
		PlayMode:   s.PlayMode,
	}); err != nil {
		return err
	}

	m.snap.mu.Lock()
	m.snap.items = nil
	m.snap.index = 0
	m.snap.tempQueueMode = true
	m.snap.bumpVersion()
	m.snap.mu.Unlock()

	if stop != nil {
		stop()
	}
	return nil
}

// ExitTempQueueMode restores the prior queue from the snapshot, syncs the
// index to the server, deletes the snapshot, and starts the 5 s
// focus-refresh suppression window.
func (m *Machine) ExitTempQueueMode(ctx context.Context, pause StopFunc) error {
	if pause != nil {
		pause()
	}

	m.mu.Lock()
	m.isExitingTempQueue = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.isExitingTempQueue = false
		m.tempExitAt = time.Now()
		m.mu.Unlock()
	}()

	snap, ok, err := m.store.GetTempQueueState(ctx, m.sessionID)
	if err != nil {
		return err
	}
	if !ok || snap == nil {
		m.snap.mu.Lock()
		m.snap.tempQueueMode = false
		m.snap.mu.Unlock()
		return nil
	}

	items := make([]*Song, len(snap.Items))
	for i := range snap.Items {
		s := snap.Items[i]
		items[i] = &s
	}

	m.snap.mu.Lock()
	m.snap.items = items
	m.snap.index = snap.QueueIndex
	m.snap.scaEnabled = snap.SCAEnabled
	m.snap.playMode = snap.PlayMode
	m.snap.tempQueueMode = false
	m.snap.bumpVersion()
	m.snap.mu.Unlock()

	if err := m.repo.SetIndex(ctx, snap.QueueIndex); err != nil {
		m.logger.Warn().Err(err).Msg("failed to sync restored index to server")
	}

	if err := m.store.ClearTempQueueState(ctx, m.sessionID); err != nil {
		return err
	}

	m.bus.Publish(events.EventTempQueueExited, events.Payload{})
	return nil
}

// ToggleTempQueueMode enters or exits depending on current state.
func (m *Machine) ToggleTempQueueMode(ctx context.Context, stop, pause StopFunc) error {
	if m.inTempMode() {
		return m.ExitTempQueueMode(ctx, pause)
	}
	return m.EnterTempQueueMode(ctx, stop)
}

// MarkAway records the moment the host went out of focus, for the
// focus-refresh "away >= 5s" gate.
func (m *Machine) MarkAway() {
	m.mu.Lock()
	m.lastAwayAt = time.Now()
	m.mu.Unlock()
}

// MarkSyncing flags an in-flight queue reload so a concurrent focus-refresh
// does not race it.
func (m *Machine) MarkSyncing(syncing bool) {
	m.mu.Lock()
	m.syncing = syncing
	m.mu.Unlock()
}

// ShouldFocusRefresh reports whether a visibility/focus event should trigger
// a server reload, per spec §4.4 "Focus refresh" gate.
func (m *Machine) ShouldFocusRefresh(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inTempModeUnlocked() {
		return false
	}
	if m.syncing || m.isExitingTempQueue {
		return false
	}
	if !m.lastAwayAt.IsZero() && now.Sub(m.lastAwayAt) < focusRefreshAwayThreshold {
		return false
	}
	if !m.lastFocusRefreshAt.IsZero() && now.Sub(m.lastFocusRefreshAt) < focusRefreshCooldown {
		return false
	}
	if !m.tempExitAt.IsZero() && now.Sub(m.tempExitAt) < tempExitCooldown {
		return false
	}
	return true
}

func (m *Machine) inTempModeUnlocked() bool {
	m.snap.mu.RLock()
	defer m.snap.mu.RUnlock()
	return m.snap.tempQueueMode
}

// FocusRefresh reloads the queue list from the server, preferring the
// current song's existing index if it still matches; otherwise the nearest
// occurrence of its UUID. Current-song is only overwritten if not playing.
func (m *Machine) FocusRefresh(ctx context.Context, isPlaying bool, now time.Time) error {
	if !m.ShouldFocusRefresh(now) {
		return nil
	}
	m.MarkSyncing(true)
	defer m.MarkSyncing(false)

	m.mu.Lock()
	m.lastFocusRefreshAt = now
	m.mu.Unlock()

	s := m.snap.state()
	currentUUID := ""
	if song := s.CurrentSong(); song != nil {
		currentUUID = song.UUID
	}

	items, err := m.repo.List(ctx, 0)
	if err != nil {
		return err
	}

	m.snap.mu.Lock()
	defer m.snap.mu.Unlock()
	m.snap.items = items
	if isPlaying && currentUUID != "" {
		if s.Index < len(items) && items[s.Index].UUID == currentUUID {
			m.snap.index = s.Index
		} else {
			dist := func(i int) int {
				if i < s.Index {
					return s.Index - i
				}
				return i - s.Index
			}
			best := -1
			for i, song := range items {
				if song.UUID == currentUUID && (best < 0 || dist(i) < dist(best)) {
					best = i
				}
			}
			if best >= 0 {
				m.snap.index = best
			}
		}
	}
	m.snap.bumpVersion()
	return nil
}

// AdoptRestoredItems handles the "queue-items-restored" event from the
// offline layer: adopt the reconstituted items (keeping identity) and, if
// the currently-playing song was a stub, upgrade it in place.
func (m *Machine) AdoptRestoredItems(ctx context.Context, items []*Song) *Song {
	m.snap.mu.Lock()
	currentUUID := ""
	if m.snap.index >= 0 && m.snap.index < len(m.snap.items) {
		currentUUID = m.snap.items[m.snap.index].UUID
	}
	m.snap.items = items
	var upgraded *Song
	for i, song := range items {
		if song.UUID == currentUUID {
			m.snap.index = i
			upgraded = song
		}
	}
	m.snap.bumpVersion()
	m.snap.mu.Unlock()

	m.bus.Publish(events.EventQueueItemsRestored, events.Payload{
		"items":      items,
		"queueIndex": m.snap.state().Index,
	})
	return upgraded
}
