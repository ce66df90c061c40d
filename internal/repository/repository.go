/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package repository holds the external collaborator interfaces the engine
// façade depends on (spec §6): the catalog/queue repository, the audio URL
// resolver, and the offline-state observable. Both internal/queue and
// internal/playback define their own narrower consumer-side interfaces
// (queue.Repository, playback.URLResolver) where they are used; this
// package provides concrete implementations wide enough to satisfy both,
// plus the offline-state surface that only the façade itself consults.
package repository

import (
	"context"
	"time"

	"github.com/friendsincode/audioengine/internal/queue"
)

// Song is an alias so callers of this package can build catalog data
// without importing internal/settings directly.
type Song = queue.Song

// OfflineState is the "offline state observable" collaborator from spec §6:
// workOfflineMode, isOnline, offlineSongUuids, lastQueueSyncTime.
type OfflineState interface {
	WorkOfflineMode(ctx context.Context) bool
	IsOnline(ctx context.Context) bool
	OfflineSongUUIDs(ctx context.Context) (map[string]bool, error)
	LastQueueSyncTime(ctx context.Context) (time.Time, error)
}

// Catalog is the full external collaborator surface the façade depends on:
// the catalog/queue repository (consumed narrowly by internal/queue as
// queue.Repository), the audio URL resolver (consumed narrowly by
// internal/playback as playback.URLResolver), and the offline-state
// observable.
type Catalog interface {
	queue.Repository
	OfflineState

	// AudioURL and StreamURL satisfy playback.URLResolver structurally
	// without this package importing internal/playback.
	AudioURL(ctx context.Context, uuid string) (url string, ok bool)
	StreamURL(ctx context.Context, uuid, songType string) (string, error)

	// GetSong satisfies songs.get(uuid) from spec §6.
	GetSong(ctx context.Context, uuid string) (*Song, error)
}

// ErrNotFound is returned when a catalog lookup finds nothing.
type ErrNotFound struct {
	UUID string
}

func (e *ErrNotFound) Error() string {
	return "song not found: " + e.UUID
}
