/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import (
	"context"

	"github.com/friendsincode/audioengine/internal/telemetry"
)

const scaRepopulateThreshold = 5

// StartScaFromQueue asks the server to compose a fresh auto-populated
// queue from the current queue's songs.
func (m *Machine) StartScaFromQueue(ctx context.Context) (*Song, error) {
	songs, err := m.repo.StartScaFromQueue(ctx)
	if err != nil {
		return nil, err
	}
	return m.startSca(ctx, songs)
}

// StartScaFromPlaylist asks the server to compose a fresh queue seeded by a
// playlist.
func (m *Machine) StartScaFromPlaylist(ctx context.Context, id string) (*Song, error) {
	songs, err := m.repo.StartScaFromPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.startSca(ctx, songs)
}

// StartRadio asks the server to compose a fresh "radio" queue from an
// optional seed song and/or filter.
func (m *Machine) StartRadio(ctx context.Context, seedUUID, filter *string) (*Song, error) {
	songs, err := m.repo.StartRadio(ctx, seedUUID, filter)
	if err != nil {
		return nil, err
	}
	return m.startSca(ctx, songs)
}

func (m *Machine) startSca(ctx context.Context, songs []*Song) (*Song, error) {
	m.snap.mu.Lock()
	m.snap.items = songs
	m.snap.index = 0
	m.snap.scaEnabled = true
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	if len(songs) == 0 {
		return nil, ErrQueueEmpty
	}
	telemetry.QueueOperations.WithLabelValues("sca_start", "normal").Inc()
	return songs[0], nil
}

// StopSca disables SCA auto-population, leaving the current queue intact.
func (m *Machine) StopSca(ctx context.Context) error {
	if err := m.repo.StopSca(ctx); err != nil {
		return err
	}
	m.snap.mu.Lock()
	m.snap.scaEnabled = false
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	return nil
}

// MaybePrePopulate fires a best-effort populate call when the remaining
// tail is short, per spec §4.4 "When the remaining tail is <5 tracks".
func (m *Machine) MaybePrePopulate(ctx context.Context) {
	s := m.snap.state()
	if !s.SCAEnabled {
		return
	}
	remaining := len(s.Items) - s.Index - 1
	if remaining >= scaRepopulateThreshold {
		return
	}
	go func() {
		songs, err := m.repo.PopulateQueue(ctx, scaRepopulateThreshold-remaining)
		if err != nil || len(songs) == 0 {
			return
		}
		m.snap.mu.Lock()
		m.snap.items = append(m.snap.items, songs...)
		m.snap.bumpVersion()
		m.snap.mu.Unlock()
	}()
}

// HandleExhaustion calls populate once on queue exhaustion; if it returns
// nothing, SCA stops.
func (m *Machine) HandleExhaustion(ctx context.Context) error {
	s := m.snap.state()
	if !s.SCAEnabled {
		return ErrQueueEmpty
	}
	songs, err := m.repo.PopulateQueue(ctx, scaRepopulateThreshold)
	if err != nil {
		return err
	}
	if len(songs) == 0 {
		return m.StopSca(ctx)
	}
	m.snap.mu.Lock()
	m.snap.items = append(m.snap.items, songs...)
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	return nil
}
