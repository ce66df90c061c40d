/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/settings"
	"github.com/friendsincode/audioengine/internal/telemetry"
)

// ErrQueueEmpty is returned by operations that require a current song.
var ErrQueueEmpty = errors.New("queue: empty")

// AutoplayFunc is invoked when a mutation fills a previously-empty queue,
// so the caller (engine) can start playback from index 0 without this
// package depending on internal/playback.
type AutoplayFunc func(ctx context.Context, song *Song)

// Machine drives the current-queue state machine: each operation has a
// normal/temp implementation pair selected by temp-queue-mode, grounded on
// the director's handleEntry switch dispatch.
type Machine struct {
	mu sync.Mutex

	snap *snapshot

	repo      Repository
	store     *settings.Store
	bus       *events.Bus
	sessionID string
	logger    zerolog.Logger

	autoplay AutoplayFunc

	lastAwayAt          time.Time
	lastFocusRefreshAt  time.Time
	syncing             bool
	isExitingTempQueue  bool
	tempExitAt          time.Time
}

// New creates a queue machine bound to one session.
func New(sessionID string, repo Repository, store *settings.Store, bus *events.Bus, autoplay AutoplayFunc, logger zerolog.Logger) *Machine {
	return &Machine{
		snap:      newSnapshot(),
		repo:      repo,
		store:     store,
		bus:       bus,
		sessionID: sessionID,
		autoplay:  autoplay,
		logger:    logger.With().Str("component", "queue").Logger(),
	}
}

// State returns a snapshot of the observable queue state.
func (m *Machine) State() State {
	return m.snap.state()
}

func (m *Machine) inTempMode() bool {
	m.snap.mu.RLock()
	defer m.snap.mu.RUnlock()
	return m.snap.tempQueueMode
}

// dispatch runs normal or temp depending on temp-queue-mode, recording a
// queue-operation telemetry counter and publishing the version-changed
// event on success (§5 "Queue-version is incremented ... before returning").
func (m *Machine) dispatch(ctx context.Context, op string, normal, temp func(ctx context.Context) error) error {
	mode := "normal"
	fn := normal
	if m.inTempMode() {
		mode = "temp"
		fn = temp
	}
	err := fn(ctx)
	telemetry.QueueOperations.WithLabelValues(op, mode).Inc()
	if err != nil {
		m.logger.Warn().Err(err).Str("op", op).Str("mode", mode).Msg("queue operation failed")
		return err
	}
	telemetry.QueueVersion.WithLabelValues(m.sessionID).Set(float64(m.snap.state().Version))
	m.bus.Publish(events.EventQueueVersionChanged, events.Payload{"version": m.snap.state().Version})
	return nil
}

// reloadFromRepo replaces the live queue with the server's authoritative
// state (normal-mode "reloads the authoritative queue state").
func (m *Machine) reloadFromRepo(ctx context.Context) error {
	items, err := m.repo.List(ctx, 0)
	if err != nil {
		return err
	}
	m.snap.mu.Lock()
	wasEmpty := len(m.snap.items) == 0
	currentUUID := ""
	if m.snap.index >= 0 && m.snap.index < len(m.snap.items) {
		currentUUID = m.snap.items[m.snap.index].UUID
	}
	m.snap.items = items
	if currentUUID != "" {
		for i, song := range items {
			if song.UUID == currentUUID {
				m.snap.index = i
				break
			}
		}
	}
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	m.maybeAutoplay(ctx, wasEmpty)
	return nil
}

func (m *Machine) maybeAutoplay(ctx context.Context, wasEmpty bool) {
	if !wasEmpty || m.autoplay == nil {
		return
	}
	m.snap.mu.Lock()
	if len(m.snap.items) == 0 {
		m.snap.mu.Unlock()
		return
	}
	m.snap.index = 0
	song := m.snap.items[0]
	m.snap.mu.Unlock()
	m.autoplay(ctx, song)
}

// AddToQueue appends songs by UUID.
func (m *Machine) AddToQueue(ctx context.Context, uuids []string) error {
	return m.dispatch(ctx, "addToQueue",
		func(ctx context.Context) error {
			_, err := m.repo.Add(ctx, uuids)
			if err != nil {
				return err
			}
			return m.reloadFromRepo(ctx)
		},
		func(ctx context.Context) error {
			songs, err := m.repo.Add(ctx, uuids)
			if err != nil {
				return err
			}
			return m.appendLocal(ctx, songs)
		},
	)
}

// AddByPath adds every song under a catalog path.
func (m *Machine) AddByPath(ctx context.Context, path string) error {
	return m.dispatch(ctx, "addByPath",
		func(ctx context.Context) error {
			if _, err := m.repo.AddByPath(ctx, path); err != nil {
				return err
			}
			return m.reloadFromRepo(ctx)
		},
		func(ctx context.Context) error {
			songs, err := m.repo.AddByPath(ctx, path)
			if err != nil {
				return err
			}
			return m.appendLocal(ctx, songs)
		},
	)
}

// AddByFilter adds every song matching a catalog filter expression.
func (m *Machine) AddByFilter(ctx context.Context, filter string) error {
	return m.dispatch(ctx, "addByFilter",
		func(ctx context.Context) error {
			if _, err := m.repo.AddByFilter(ctx, filter); err != nil {
				return err
			}
			return m.reloadFromRepo(ctx)
		},
		func(ctx context.Context) error {
			songs, err := m.repo.AddByFilter(ctx, filter)
			if err != nil {
				return err
			}
			return m.appendLocal(ctx, songs)
		},
	)
}

// AddByPlaylist adds every song from a playlist, optionally shuffled.
func (m *Machine) AddByPlaylist(ctx context.Context, id string, shuffle bool) error {
	return m.dispatch(ctx, "addByPlaylist",
		func(ctx context.Context) error {
			if _, err := m.repo.AddByPlaylist(ctx, id, shuffle); err != nil {
				return err
			}
			return m.reloadFromRepo(ctx)
		},
		func(ctx context.Context) error {
			songs, err := m.repo.AddByPlaylist(ctx, id, shuffle)
			if err != nil {
				return err
			}
			return m.appendLocal(ctx, songs)
		},
	)
}

func (m *Machine) appendLocal(ctx context.Context, songs []*Song) error {
	m.snap.mu.Lock()
	wasEmpty := len(m.snap.items) == 0
	m.snap.items = append(m.snap.items, songs...)
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	if err := m.persistTempSnapshot(ctx); err != nil {
		return err
	}
	m.maybeAutoplay(ctx, wasEmpty)
	return nil
}

// ClearQueue empties the queue.
func (m *Machine) ClearQueue(ctx context.Context) error {
	return m.dispatch(ctx, "clearQueue",
		func(ctx context.Context) error {
			if err := m.repo.Clear(ctx); err != nil {
				return err
			}
			m.snap.mu.Lock()
			m.snap.items = nil
			m.snap.index = 0
			m.snap.bumpVersion()
			m.snap.mu.Unlock()
			m.ClearShuffleHistory(ctx)
			return nil
		},
		func(ctx context.Context) error {
			m.snap.mu.Lock()
			m.snap.items = nil
			m.snap.index = 0
			m.snap.bumpVersion()
			m.snap.mu.Unlock()
			m.ClearShuffleHistory(ctx)
			return m.persistTempSnapshot(ctx)
		},
	)
}

// PlayAtIndex moves the current-song pointer to i.
func (m *Machine) PlayAtIndex(ctx context.Context, i int) error {
	return m.dispatch(ctx, "playAtIndex",
		func(ctx context.Context) error {
			if err := m.repo.SetIndex(ctx, i); err != nil {
				return err
			}
			return m.setIndexLocal(ctx, i)
		},
		func(ctx context.Context) error {
			return m.setIndexLocal(ctx, i)
		},
	)
}

// AdvanceIndexToUUID moves the current-song pointer to whichever item
// carries uuid, without touching the repo or shuffle history. It is the
// reconciliation hook for state changes that happen inside the playback
// controller (a completed crossfade) rather than through one of this
// machine's own advance/jump operations, keeping invariant P1
// (currentSong.uuid == queue[index].uuid) true afterward. A no-op if uuid
// is already current or not found.
func (m *Machine) AdvanceIndexToUUID(ctx context.Context, uuid string) {
	m.snap.mu.Lock()
	idx := -1
	for i, s := range m.snap.items {
		if s.UUID == uuid {
			idx = i
			break
		}
	}
	if idx < 0 || idx == m.snap.index {
		m.snap.mu.Unlock()
		return
	}
	m.snap.index = idx
	m.snap.peekedValid = false
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	_ = m.persistTempSnapshot(ctx)
}

func (m *Machine) setIndexLocal(ctx context.Context, i int) error {
	m.snap.mu.Lock()
	if i < 0 || i >= len(m.snap.items) {
		m.snap.mu.Unlock()
		return ErrQueueEmpty
	}
	m.snap.index = i
	m.snap.bumpVersion()
	m.snap.mu.Unlock()
	return m.persistTempSnapshot(ctx)
}

// RemoveFromQueue removes the song at index i.
func (m *Machine) RemoveFromQueue(ctx context.Context, i int) error {
	return m.RemoveFromQueueBatch(ctx, []int{i})
}

// RemoveFromQueueBatch removes the songs at the given indices.
func (m *Machine) RemoveFromQueueBatch(ctx context.Context, indices []int) error {
	return m.dispatch(ctx, "removeFromQueueBatch",
		func(ctx context.Context) error {
			if err := m.repo.Remove(ctx, indices); err != nil {
				return err
			}
			return m.reloadFromRepo(ctx)
		},
		func(ctx context.Context) error {
			m.removeLocal(indices)
			return m.persistTempSnapshot(ctx)
		},
	)
}

func (m *Machine) removeLocal(indices []int) {
	remove := make(map[int]bool, len(indices))
	for _, i := range indices {
		remove[i] = true
	}
	m.snap.mu.Lock()
	defer m.snap.mu.Unlock()
	currentUUID := ""
	if m.snap.index >= 0 && m.snap.index < len(m.snap.items) {
		currentUUID = m.snap.items[m.snap.index].UUID
	}
	next := make([]*Song, 0, len(m.snap.items))
	for i, song := range m.snap.items {
		if !remove[i] {
			next = append(next, song)
		}
	}
	m.snap.items = next
	for i, song := range next {
		if song.UUID == currentUUID {
			m.snap.index = i
			break
		}
	}
	if m.snap.index >= len(next) {
		m.snap.index = len(next) - 1
	}
	if m.snap.index < 0 {
		m.snap.index = 0
	}
	m.snap.bumpVersion()
}

// ReorderQueue moves the song at from to position to.
func (m *Machine) ReorderQueue(ctx context.Context, from, to int) error {
	return m.ReorderQueueBatch(ctx, []int{from}, to)
}

// ReorderQueueBatch moves a set of indices to a target index, preserving
// their relative order; the current song's new position follows it.
func (m *Machine) ReorderQueueBatch(ctx context.Context, indices []int, to int) error {
	return m.dispatch(ctx, "reorderQueueBatch",
		func(ctx context.Context) error {
			if err := m.repo.ReorderBatch(ctx, indices, to); err != nil {
				return err
			}
			return m.reloadFromRepo(ctx)
		},
		func(ctx context.Context) error {
			m.reorderLocal(indices, to)
			return m.persistTempSnapshot(ctx)
		},
	)
}

func (m *Machine) reorderLocal(indices []int, to int) {
	m.snap.mu.Lock()
	defer m.snap.mu.Unlock()

	moved := make(map[int]bool, len(indices))
	for _, i := range indices {
		moved[i] = true
	}
	currentUUID := ""
	if m.snap.index >= 0 && m.snap.index < len(m.snap.items) {
		currentUUID = m.snap.items[m.snap.index].UUID
	}

	var movedItems, rest []*Song
	var movedOrigIdx []int
	for i, song := range m.snap.items {
		if moved[i] {
			movedItems = append(movedItems, song)
			movedOrigIdx = append(movedOrigIdx, i)
		} else {
			rest = append(rest, song)
		}
	}

	// Adjust target for items already removed ahead of it.
	adjustedTo := to
	for _, i := range movedOrigIdx {
		if i < to {
			adjustedTo--
		}
	}
	if adjustedTo < 0 {
		adjustedTo = 0
	}
	if adjustedTo > len(rest) {
		adjustedTo = len(rest)
	}

	next := make([]*Song, 0, len(m.snap.items))
	next = append(next, rest[:adjustedTo]...)
	next = append(next, movedItems...)
	next = append(next, rest[adjustedTo:]...)
	m.snap.items = next

	for i, song := range next {
		if song.UUID == currentUUID {
			m.snap.index = i
			break
		}
	}
	m.snap.bumpVersion()
}

// SortQueue sorts the queue by field/order; index resets to 0 afterward.
func (m *Machine) SortQueue(ctx context.Context, field, order string) error {
	return m.dispatch(ctx, "sortQueue",
		func(ctx context.Context) error {
			if _, err := m.repo.Sort(ctx, field, order); err != nil {
				return err
			}
			if err := m.reloadFromRepo(ctx); err != nil {
				return err
			}
			m.snap.mu.Lock()
			m.snap.index = 0
			m.snap.mu.Unlock()
			return nil
		},
		func(ctx context.Context) error {
			m.sortLocal(field, order)
			return m.persistTempSnapshot(ctx)
		},
	)
}

func (m *Machine) sortLocal(field, order string) {
	m.snap.mu.Lock()
	defer m.snap.mu.Unlock()
	items := m.snap.items
	if field == "random" {
		rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	} else {
		less := sortLess(items, field)
		sort.SliceStable(items, func(i, j int) bool {
			if order == "desc" {
				return less(j, i)
			}
			return less(i, j)
		})
	}
	m.snap.index = 0
	m.snap.bumpVersion()
}

func sortLess(items []*Song, field string) func(i, j int) bool {
	switch field {
	case "artist":
		return func(i, j int) bool { return items[i].Artist < items[j].Artist }
	case "album":
		return func(i, j int) bool { return items[i].Album < items[j].Album }
	case "title":
		return func(i, j int) bool { return items[i].Title < items[j].Title }
	case "duration":
		return func(i, j int) bool { return items[i].DurationSeconds < items[j].DurationSeconds }
	case "track":
		return func(i, j int) bool { return items[i].Track < items[j].Track }
	case "year":
		return func(i, j int) bool { return items[i].Year < items[j].Year }
	default:
		return func(i, j int) bool { return items[i].Title < items[j].Title }
	}
}

func (m *Machine) persistTempSnapshot(ctx context.Context) error {
	if !m.inTempMode() {
		return nil
	}
	s := m.snap.state()
	items := make([]settings.Song, len(s.Items))
	for i, song := range s.Items {
		items[i] = *song
	}
	return m.store.SaveTempQueueState(ctx, m.sessionID, settings.TempQueueSnapshot{
		Items:      items,
		QueueIndex: s.Index,
		SCAEnabled: s.SCAEnabled,
		PlayMode:   s.PlayMode,
	})
}
