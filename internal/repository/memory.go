/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type historyRecord struct {
	uuid       string
	seconds    float64
	wasSkipped bool
	source     string
	at         time.Time
}

// MemoryCatalog is an in-memory Catalog, used by tests and as a
// self-contained backend when no remote catalog service is configured.
type MemoryCatalog struct {
	mu sync.RWMutex

	library   map[string]*Song
	byPath    map[string][]*Song
	playlists map[string][]*Song

	queueItems []*Song
	queueIndex int
	scaEnabled bool
	scaPool    []*Song

	history []historyRecord

	offlineUUIDs map[string]bool
	online       bool
	workOffline  bool
	lastSync     time.Time

	cachedURLs map[string]string
	streamBase string
}

// NewMemoryCatalog returns an empty in-memory catalog with the given
// streamBase used to fabricate stream URLs for uncached songs.
func NewMemoryCatalog(streamBase string) *MemoryCatalog {
	return &MemoryCatalog{
		library:      make(map[string]*Song),
		byPath:       make(map[string][]*Song),
		playlists:    make(map[string][]*Song),
		offlineUUIDs: make(map[string]bool),
		cachedURLs:   make(map[string]string),
		online:       true,
		lastSync:     time.Time{},
		streamBase:   streamBase,
	}
}

// Seed registers songs directly into the library, for test setup.
func (m *MemoryCatalog) Seed(songs ...*Song) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range songs {
		m.library[s.UUID] = s
	}
}

// SeedPath associates a library path with a set of songs, for AddByPath.
func (m *MemoryCatalog) SeedPath(path string, songs ...*Song) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byPath[path] = songs
	for _, s := range songs {
		m.library[s.UUID] = s
	}
}

// SeedPlaylist registers a playlist's songs, for AddByPlaylist.
func (m *MemoryCatalog) SeedPlaylist(id string, songs ...*Song) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlists[id] = songs
	for _, s := range songs {
		m.library[s.UUID] = s
	}
}

// SeedCachedURL marks uuid as locally cached at the given URL, for AudioURL.
func (m *MemoryCatalog) SeedCachedURL(uuid, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cachedURLs[uuid] = url
}

// SetOffline flips the simulated offline-state observable.
func (m *MemoryCatalog) SetOffline(workOffline, online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workOffline = workOffline
	m.online = online
}

func (m *MemoryCatalog) List(ctx context.Context, limit int) ([]*Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit >= len(m.queueItems) {
		return append([]*Song(nil), m.queueItems...), nil
	}
	return append([]*Song(nil), m.queueItems[:limit]...), nil
}

func (m *MemoryCatalog) Add(ctx context.Context, uuids []string) ([]*Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var added []*Song
	for _, id := range uuids {
		s := m.lookupOrStub(id)
		m.queueItems = append(m.queueItems, s)
		added = append(added, s)
	}
	return added, nil
}

func (m *MemoryCatalog) lookupOrStub(id string) *Song {
	if s, ok := m.library[id]; ok {
		return s
	}
	s := &Song{UUID: id, Title: id, DurationSeconds: 180, Seekable: true}
	m.library[id] = s
	return s
}

func (m *MemoryCatalog) Remove(ctx context.Context, positions []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		drop[p] = true
	}
	var next []*Song
	for i, s := range m.queueItems {
		if !drop[i] {
			next = append(next, s)
		}
	}
	m.queueItems = next
	return nil
}

func (m *MemoryCatalog) SetIndex(ctx context.Context, i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueIndex = i
	return nil
}

func (m *MemoryCatalog) Reorder(ctx context.Context, from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if from < 0 || from >= len(m.queueItems) || to < 0 || to >= len(m.queueItems) {
		return fmt.Errorf("repository: reorder index out of range")
	}
	item := m.queueItems[from]
	m.queueItems = append(m.queueItems[:from], m.queueItems[from+1:]...)
	m.queueItems = append(m.queueItems[:to], append([]*Song{item}, m.queueItems[to:]...)...)
	return nil
}

func (m *MemoryCatalog) ReorderBatch(ctx context.Context, indices []int, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	moving := make(map[int]bool, len(indices))
	for _, i := range indices {
		moving[i] = true
	}
	var picked, rest []*Song
	for i, s := range m.queueItems {
		if moving[i] {
			picked = append(picked, s)
		} else {
			rest = append(rest, s)
		}
	}
	if to > len(rest) {
		to = len(rest)
	}
	next := append([]*Song(nil), rest[:to]...)
	next = append(next, picked...)
	next = append(next, rest[to:]...)
	m.queueItems = next
	return nil
}

func (m *MemoryCatalog) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueItems = nil
	m.queueIndex = 0
	return nil
}

func (m *MemoryCatalog) Sort(ctx context.Context, field, order string) ([]*Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.queueItems
	if field == "random" {
		rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	} else {
		less := memorySortLess(items, field)
		sort.SliceStable(items, func(i, j int) bool {
			if order == "desc" {
				return less(j, i)
			}
			return less(i, j)
		})
	}
	return append([]*Song(nil), items...), nil
}

func memorySortLess(items []*Song, field string) func(i, j int) bool {
	switch field {
	case "artist":
		return func(i, j int) bool { return items[i].Artist < items[j].Artist }
	case "album":
		return func(i, j int) bool { return items[i].Album < items[j].Album }
	case "duration":
		return func(i, j int) bool { return items[i].DurationSeconds < items[j].DurationSeconds }
	default:
		return func(i, j int) bool { return items[i].Title < items[j].Title }
	}
}

func (m *MemoryCatalog) AddByPath(ctx context.Context, path string) ([]*Song, error) {
	m.mu.Lock()
	songs := append([]*Song(nil), m.byPath[path]...)
	m.mu.Unlock()
	uuids := make([]string, len(songs))
	for i, s := range songs {
		uuids[i] = s.UUID
	}
	return m.Add(ctx, uuids)
}

func (m *MemoryCatalog) AddByFilter(ctx context.Context, filter string) ([]*Song, error) {
	m.mu.RLock()
	var matched []string
	for id, s := range m.library {
		if filter == "" || s.Artist == filter || s.Album == filter {
			matched = append(matched, id)
		}
	}
	m.mu.RUnlock()
	return m.Add(ctx, matched)
}

func (m *MemoryCatalog) AddByPlaylist(ctx context.Context, id string, shuffle bool) ([]*Song, error) {
	m.mu.Lock()
	songs := append([]*Song(nil), m.playlists[id]...)
	m.mu.Unlock()
	if shuffle {
		rand.Shuffle(len(songs), func(i, j int) { songs[i], songs[j] = songs[j], songs[i] })
	}
	uuids := make([]string, len(songs))
	for i, s := range songs {
		uuids[i] = s.UUID
	}
	return m.Add(ctx, uuids)
}

func (m *MemoryCatalog) SaveAsPlaylist(ctx context.Context, name, desc string, public bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.playlists[id] = append([]*Song(nil), m.queueItems...)
	return id, nil
}

func (m *MemoryCatalog) StartScaFromQueue(ctx context.Context) ([]*Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scaEnabled = true
	m.scaPool = append([]*Song(nil), m.queueItems...)
	m.queueItems = append([]*Song(nil), m.scaPool...)
	m.queueIndex = 0
	return append([]*Song(nil), m.queueItems...), nil
}

func (m *MemoryCatalog) StartScaFromPlaylist(ctx context.Context, id string) ([]*Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scaEnabled = true
	m.scaPool = append([]*Song(nil), m.playlists[id]...)
	m.queueItems = append([]*Song(nil), m.scaPool...)
	m.queueIndex = 0
	return append([]*Song(nil), m.queueItems...), nil
}

func (m *MemoryCatalog) StartRadio(ctx context.Context, seedUUID, filter *string) ([]*Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pool []*Song
	for _, s := range m.library {
		if filter != nil && *filter != "" && s.Artist != *filter {
			continue
		}
		pool = append(pool, s)
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	m.scaEnabled = true
	m.scaPool = pool
	m.queueItems = append([]*Song(nil), pool...)
	m.queueIndex = 0
	return append([]*Song(nil), m.queueItems...), nil
}

func (m *MemoryCatalog) StopSca(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scaEnabled = false
	m.scaPool = nil
	return nil
}

func (m *MemoryCatalog) PopulateQueue(ctx context.Context, n int) ([]*Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.scaEnabled || len(m.scaPool) == 0 {
		return nil, nil
	}
	var out []*Song
	for i := 0; i < n; i++ {
		out = append(out, m.scaPool[rand.Intn(len(m.scaPool))])
	}
	m.queueItems = append(m.queueItems, out...)
	return out, nil
}

func (m *MemoryCatalog) RecordHistory(ctx context.Context, uuid string, seconds float64, wasSkipped bool, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, historyRecord{uuid: uuid, seconds: seconds, wasSkipped: wasSkipped, source: source, at: time.Now()})
	return nil
}

func (m *MemoryCatalog) WorkOfflineMode(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workOffline
}

func (m *MemoryCatalog) IsOnline(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

func (m *MemoryCatalog) OfflineSongUUIDs(ctx context.Context) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.offlineUUIDs))
	for k, v := range m.offlineUUIDs {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryCatalog) LastQueueSyncTime(ctx context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync, nil
}

func (m *MemoryCatalog) AudioURL(ctx context.Context, id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	url, ok := m.cachedURLs[id]
	return url, ok
}

func (m *MemoryCatalog) StreamURL(ctx context.Context, id, songType string) (string, error) {
	return fmt.Sprintf("%s/stream/%s?type=%s", m.streamBase, id, songType), nil
}

func (m *MemoryCatalog) GetSong(ctx context.Context, id string) (*Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.library[id]
	if !ok {
		return nil, &ErrNotFound{UUID: id}
	}
	return s, nil
}
