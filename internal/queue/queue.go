/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package queue drives the current-queue state machine: ordered songs,
// index, shuffle/repeat mode, shuffle history, SCA/radio auto-population,
// and the temp-queue overlay. It holds no reference to the playback
// controller — callers read Current() and hand it to playback.Play.
package queue

import (
	"sync"

	"github.com/friendsincode/audioengine/internal/settings"
)

// Song is the shared catalog record type (see settings.Song).
type Song = settings.Song

// PlayMode mirrors settings.PlayMode.
type PlayMode = settings.PlayMode

const (
	PlayModeSequential = settings.PlayModeSequential
	PlayModeShuffle    = settings.PlayModeShuffle
	PlayModeRepeatAll  = settings.PlayModeRepeatAll
	PlayModeRepeatOne  = settings.PlayModeRepeatOne
)

const shuffleHistoryLimit = 50

// State is the queue's observable slice of player state (spec §3 "Queue").
type State struct {
	Items      []*Song
	Index      int
	Version    uint64
	PlayMode   PlayMode
	SCAEnabled bool
}

// CurrentSong returns the song at Index, or nil if the queue is empty.
func (s State) CurrentSong() *Song {
	if len(s.Items) == 0 || s.Index < 0 || s.Index >= len(s.Items) {
		return nil
	}
	return s.Items[s.Index]
}

// snapshot is the internal mutable queue state; State() copies out of it.
type snapshot struct {
	mu sync.RWMutex

	items      []*Song
	index      int
	version    uint64
	playMode   PlayMode
	scaEnabled bool

	tempQueueMode bool
	shuffleHist   []string

	// peekedIdx/peekedValid/peekedAtVersion cache PeekNext's shuffle draw so
	// a subsequent Next() call (with no intervening mutation) advances to
	// the exact song that was previewed, instead of rolling a second,
	// independent random index.
	peekedIdx       int
	peekedValid     bool
	peekedAtVersion uint64
}

func newSnapshot() *snapshot {
	return &snapshot{playMode: PlayModeSequential}
}

func (s *snapshot) state() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]*Song, len(s.items))
	copy(items, s.items)
	return State{
		Items:      items,
		Index:      s.index,
		Version:    s.version,
		PlayMode:   s.playMode,
		SCAEnabled: s.scaEnabled,
	}
}

func (s *snapshot) bumpVersion() {
	s.version++
}
