/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package playback drives the two-slot media pipeline: load, play, pause,
// resume, seek, crossfade, gapless preload, error recovery, and the
// sleep-timer. It models HTML media elements as Slots with a simulated
// position clock instead of real decode/output (§1 Non-goals).
package playback

import (
	"sync"
	"time"

	"github.com/friendsincode/audioengine/internal/settings"
)

// Slot models one of the two always-present media elements (the teacher's
// decoderProc generalized from a GStreamer subprocess to an in-process
// position clock, since this engine performs no real decoding).
type Slot struct {
	mu sync.Mutex

	song     *settings.Song
	url      string
	volume   float64
	playing  bool
	started  time.Time
	pausedAt time.Duration
	err      error
}

// NewSlot creates an idle slot.
func NewSlot() *Slot {
	return &Slot{volume: 1.0}
}

// Load assigns a song/URL without starting playback.
func (s *Slot) Load(song *settings.Song, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.song = song
	s.url = url
	s.playing = false
	s.pausedAt = 0
	s.err = nil
}

// Song returns the currently-loaded song, if any.
func (s *Slot) Song() *settings.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.song
}

// URL returns the currently-assigned source URL.
func (s *Slot) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Play starts (or resumes) playback from the current position.
func (s *Slot) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return
	}
	s.started = time.Now().Add(-s.pausedAt)
	s.playing = true
}

// Pause freezes the position clock.
func (s *Slot) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		s.pausedAt = time.Since(s.started)
	}
	s.playing = false
}

// Stop clears the source entirely, per §4.3 crossfade step 12 "stop and
// release the old element's source".
func (s *Slot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.pausedAt = 0
	s.song = nil
	s.url = ""
	s.err = nil
}

// Seek jumps to pos, clamped by the caller against [0, duration].
func (s *Slot) Seek(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pausedAt = pos
	if s.playing {
		s.started = time.Now().Add(-pos)
	}
}

// CurrentTime returns the simulated playback position. While playing, the
// position stops at the loaded song's duration, as a media element's does.
func (s *Slot) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		pos := time.Since(s.started)
		if s.song != nil {
			if dur := time.Duration(s.song.DurationSeconds * float64(time.Second)); dur > 0 && pos > dur {
				return dur
			}
		}
		return pos
	}
	return s.pausedAt
}

// IsPlaying reports whether the slot is actively advancing its clock.
func (s *Slot) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// SetVolume sets the host media-element volume (0..1), independent of any
// graph-level ReplayGain/fade-gain node.
func (s *Slot) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

// Volume returns the host media-element volume.
func (s *Slot) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SetError records a decode/network error on the slot.
func (s *Slot) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Err returns the slot's last recorded error, if any.
func (s *Slot) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
