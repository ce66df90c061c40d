/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import (
	"context"
	"math/rand"

	"github.com/friendsincode/audioengine/internal/settings"
)

// ToggleShuffle flips shuffle; enabling it clears repeat-mode (mutually
// exclusive per spec §4.4).
func (m *Machine) ToggleShuffle(ctx context.Context) error {
	return m.SetShuffle(ctx, m.snap.state().PlayMode != PlayModeShuffle)
}

// SetShuffle sets shuffle on/off, clearing repeat-mode if turning on.
func (m *Machine) SetShuffle(ctx context.Context, enabled bool) error {
	m.snap.mu.Lock()
	if enabled {
		m.snap.playMode = PlayModeShuffle
	} else if m.snap.playMode == PlayModeShuffle {
		m.snap.playMode = PlayModeSequential
	}
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	if !enabled {
		m.ClearShuffleHistory(ctx)
	}
	return nil
}

// CycleRepeatMode advances none -> all -> one -> none, clearing shuffle.
func (m *Machine) CycleRepeatMode(ctx context.Context) error {
	m.snap.mu.Lock()
	switch m.snap.playMode {
	case PlayModeRepeatAll:
		m.snap.playMode = PlayModeRepeatOne
	case PlayModeRepeatOne:
		m.snap.playMode = PlayModeSequential
	default:
		m.snap.playMode = PlayModeRepeatAll
	}
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	return nil
}

// SetRepeatMode sets repeat-mode directly, clearing shuffle.
func (m *Machine) SetRepeatMode(ctx context.Context, mode PlayMode) error {
	if mode == PlayModeShuffle {
		return m.SetShuffle(ctx, true)
	}
	wasShuffle := m.snap.state().PlayMode == PlayModeShuffle
	m.snap.mu.Lock()
	m.snap.playMode = mode
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	if wasShuffle {
		m.ClearShuffleHistory(ctx)
	}
	return nil
}

// recordShuffleVisit appends uuid to the bounded shuffle history and
// persists it.
func (m *Machine) recordShuffleVisit(ctx context.Context, uuid string) {
	m.snap.mu.Lock()
	m.snap.shuffleHist = append(m.snap.shuffleHist, uuid)
	if len(m.snap.shuffleHist) > shuffleHistoryLimit {
		m.snap.shuffleHist = m.snap.shuffleHist[len(m.snap.shuffleHist)-shuffleHistoryLimit:]
	}
	hist := append([]string(nil), m.snap.shuffleHist...)
	m.snap.mu.Unlock()
	_ = m.store.SetShuffleHistory(ctx, m.sessionID, settings.ShuffleHistory{SongUUIDs: hist})
}

// ClearShuffleHistory resets shuffle history in memory and storage.
func (m *Machine) ClearShuffleHistory(ctx context.Context) {
	m.snap.mu.Lock()
	m.snap.shuffleHist = nil
	m.snap.mu.Unlock()
	_ = m.store.ClearShuffleHistory(ctx, m.sessionID)
}

// Next advances to the next song per play-mode, recording the outgoing song
// into shuffle history when shuffling.
func (m *Machine) Next(ctx context.Context) (*Song, error) {
	m.snap.mu.Lock()
	if len(m.snap.items) == 0 {
		m.snap.mu.Unlock()
		return nil, ErrQueueEmpty
	}
	mode := m.snap.playMode
	cur := m.snap.index
	outgoing := m.snap.items[cur].UUID
	var next int
	switch mode {
	case PlayModeRepeatOne:
		next = cur
	case PlayModeShuffle:
		if len(m.snap.items) == 1 {
			next = 0
		} else if m.snap.peekedValid && m.snap.peekedAtVersion == m.snap.version &&
			m.snap.peekedIdx < len(m.snap.items) && m.snap.peekedIdx != cur {
			next = m.snap.peekedIdx
		} else {
			next = rand.Intn(len(m.snap.items))
			for next == cur {
				next = rand.Intn(len(m.snap.items))
			}
		}
		m.snap.peekedValid = false
	default:
		next = cur + 1
		if next >= len(m.snap.items) {
			if mode == PlayModeRepeatAll {
				next = 0
			} else {
				m.snap.mu.Unlock()
				return nil, ErrQueueEmpty
			}
		}
	}
	m.snap.index = next
	m.snap.bumpVersion()
	song := m.snap.items[next]
	m.snap.mu.Unlock()

	if mode == PlayModeShuffle {
		m.recordShuffleVisit(ctx, outgoing)
	}
	_ = m.persistTempSnapshot(ctx)
	return song, nil
}

// PeekNext reports which song Next would select, without committing any
// state (no index change, no shuffle-history entry, no persisted
// snapshot). Crossfade scheduling uses this so the song it fades into is
// always the same one normal advancement would pick next, under shuffle
// and repeat-one included (§4.3 step 2).
func (m *Machine) PeekNext() *Song {
	m.snap.mu.Lock()
	defer m.snap.mu.Unlock()
	if len(m.snap.items) == 0 {
		return nil
	}
	mode := m.snap.playMode
	cur := m.snap.index
	switch mode {
	case PlayModeRepeatOne:
		return m.snap.items[cur]
	case PlayModeShuffle:
		if len(m.snap.items) == 1 {
			return m.snap.items[0]
		}
		if m.snap.peekedValid && m.snap.peekedAtVersion == m.snap.version && m.snap.peekedIdx < len(m.snap.items) {
			return m.snap.items[m.snap.peekedIdx]
		}
		next := rand.Intn(len(m.snap.items))
		for next == cur {
			next = rand.Intn(len(m.snap.items))
		}
		m.snap.peekedIdx = next
		m.snap.peekedValid = true
		m.snap.peekedAtVersion = m.snap.version
		return m.snap.items[next]
	default:
		next := cur + 1
		if next >= len(m.snap.items) {
			if mode == PlayModeRepeatAll {
				next = 0
			} else {
				return nil
			}
		}
		return m.snap.items[next]
	}
}

// Previous pops shuffle history until a UUID still present in the queue is
// found; otherwise falls back to sequential previous (wrapping under
// repeat-all).
func (m *Machine) Previous(ctx context.Context) (*Song, error) {
	m.snap.mu.Lock()
	mode := m.snap.playMode
	if len(m.snap.items) == 0 {
		m.snap.mu.Unlock()
		return nil, ErrQueueEmpty
	}
	if mode == PlayModeShuffle {
		for len(m.snap.shuffleHist) > 0 {
			last := len(m.snap.shuffleHist) - 1
			uuid := m.snap.shuffleHist[last]
			m.snap.shuffleHist = m.snap.shuffleHist[:last]
			for i, song := range m.snap.items {
				if song.UUID == uuid {
					m.snap.index = i
					m.snap.bumpVersion()
					song := m.snap.items[i]
					hist := append([]string(nil), m.snap.shuffleHist...)
					m.snap.mu.Unlock()
					_ = m.store.SetShuffleHistory(ctx, m.sessionID, settings.ShuffleHistory{SongUUIDs: hist})
					_ = m.persistTempSnapshot(ctx)
					return song, nil
				}
			}
		}
	}
	cur := m.snap.index
	prev := cur - 1
	if prev < 0 {
		if mode == PlayModeRepeatAll {
			prev = len(m.snap.items) - 1
		} else {
			prev = 0
		}
	}
	m.snap.index = prev
	m.snap.bumpVersion()
	song := m.snap.items[prev]
	m.snap.mu.Unlock()
	_ = m.persistTempSnapshot(ctx)
	return song, nil
}
