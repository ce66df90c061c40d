/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/queue"
	"github.com/friendsincode/audioengine/internal/settings"
)

// fakeCatalog is the minimal repository.Catalog a session needs: an
// in-memory song list plus no-op offline-state answers.
type fakeCatalog struct {
	songs map[string]*queue.Song
	list  []*queue.Song
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{songs: make(map[string]*queue.Song)}
}

func (f *fakeCatalog) song(uuid string) *queue.Song {
	if s, ok := f.songs[uuid]; ok {
		return s
	}
	s := &queue.Song{UUID: uuid, Title: "Track " + uuid, Type: "track", DurationSeconds: 30, Seekable: true}
	f.songs[uuid] = s
	return s
}

func (f *fakeCatalog) List(ctx context.Context, limit int) ([]*queue.Song, error) { return f.list, nil }
func (f *fakeCatalog) Add(ctx context.Context, uuids []string) ([]*queue.Song, error) {
	var added []*queue.Song
	for _, u := range uuids {
		s := f.song(u)
		f.list = append(f.list, s)
		added = append(added, s)
	}
	return added, nil
}
func (f *fakeCatalog) Remove(ctx context.Context, positions []int) error {
	remove := map[int]bool{}
	for _, i := range positions {
		remove[i] = true
	}
	var next []*queue.Song
	for i, s := range f.list {
		if !remove[i] {
			next = append(next, s)
		}
	}
	f.list = next
	return nil
}
func (f *fakeCatalog) SetIndex(ctx context.Context, i int) error                     { return nil }
func (f *fakeCatalog) Reorder(ctx context.Context, from, to int) error               { return nil }
func (f *fakeCatalog) ReorderBatch(ctx context.Context, indices []int, to int) error { return nil }
func (f *fakeCatalog) Clear(ctx context.Context) error                               { f.list = nil; return nil }
func (f *fakeCatalog) Sort(ctx context.Context, field, order string) ([]*queue.Song, error) {
	return f.list, nil
}
func (f *fakeCatalog) AddByPath(ctx context.Context, path string) ([]*queue.Song, error) {
	return f.Add(ctx, []string{"path-song"})
}
func (f *fakeCatalog) AddByFilter(ctx context.Context, filter string) ([]*queue.Song, error) {
	return f.Add(ctx, []string{"filter-song"})
}
func (f *fakeCatalog) AddByPlaylist(ctx context.Context, id string, shuffle bool) ([]*queue.Song, error) {
	return f.Add(ctx, []string{"playlist-song"})
}
func (f *fakeCatalog) SaveAsPlaylist(ctx context.Context, name, desc string, public bool) (string, error) {
	return "playlist-1", nil
}
func (f *fakeCatalog) StartScaFromQueue(ctx context.Context) ([]*queue.Song, error) {
	return []*queue.Song{f.song("sca-1")}, nil
}
func (f *fakeCatalog) StartScaFromPlaylist(ctx context.Context, id string) ([]*queue.Song, error) {
	return []*queue.Song{f.song("sca-1")}, nil
}
func (f *fakeCatalog) StartRadio(ctx context.Context, seedUUID, filter *string) ([]*queue.Song, error) {
	return []*queue.Song{f.song("radio-1")}, nil
}
func (f *fakeCatalog) StopSca(ctx context.Context) error { return nil }
func (f *fakeCatalog) PopulateQueue(ctx context.Context, n int) ([]*queue.Song, error) {
	return nil, nil
}
func (f *fakeCatalog) RecordHistory(ctx context.Context, uuid string, seconds float64, wasSkipped bool, source string) error {
	return nil
}
func (f *fakeCatalog) WorkOfflineMode(ctx context.Context) bool { return false }
func (f *fakeCatalog) IsOnline(ctx context.Context) bool        { return true }
func (f *fakeCatalog) OfflineSongUUIDs(ctx context.Context) (map[string]bool, error) {
	return nil, nil
}
func (f *fakeCatalog) LastQueueSyncTime(ctx context.Context) (time.Time, error) {
	return time.Time{}, nil
}
func (f *fakeCatalog) AudioURL(ctx context.Context, uuid string) (string, bool) { return "", false }
func (f *fakeCatalog) StreamURL(ctx context.Context, uuid, songType string) (string, error) {
	return "https://stream.example/" + uuid, nil
}
func (f *fakeCatalog) GetSong(ctx context.Context, uuid string) (*queue.Song, error) {
	return f.song(uuid), nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeCatalog) {
	t.Helper()
	catalog := newFakeCatalog()
	store := settings.New(settings.NewMemoryKV(), settings.NewMemoryStructuredStore())
	bus := events.NewBus()
	e, err := New(context.Background(), "sess-1", catalog, store, bus, zerolog.Nop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	return e, catalog
}

func TestEngine_StateMergesPlaybackQueueAndEffects(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.AddToQueue(context.Background(), []string{"a", "b"}, false); err != nil {
		t.Fatalf("add to queue: %v", err)
	}

	s := e.State()
	if s.CurrentSong == nil || s.CurrentSong.UUID != "a" {
		t.Fatalf("expected current song a from autoplay, got %+v", s.CurrentSong)
	}
	if len(s.Queue.Items) != 2 {
		t.Fatalf("expected 2 queue items, got %d", len(s.Queue.Items))
	}
	if s.Queue.Index != 0 {
		t.Fatalf("expected queue index 0, got %d", s.Queue.Index)
	}
	if !s.IsPlaying {
		t.Fatalf("expected playing after autoplay")
	}
}

func TestEngine_ExitTempQueueModePreloadsPrimarySlot(t *testing.T) {
	e, _ := newTestEngine(t)
	_ = e.AddToQueue(context.Background(), []string{"a", "b"}, false)
	_ = e.PlayAtIndex(context.Background(), 1)

	if err := e.EnterTempQueueMode(context.Background()); err != nil {
		t.Fatalf("enter temp queue: %v", err)
	}
	_ = e.AddToQueue(context.Background(), []string{"temp-1"}, true)

	if err := e.ExitTempQueueMode(context.Background()); err != nil {
		t.Fatalf("exit temp queue: %v", err)
	}

	restored := e.queueMach.State().CurrentSong()
	if restored == nil || restored.UUID != "b" {
		t.Fatalf("expected restored current song b, got %+v", restored)
	}
	primary := e.playbackCtl.Observable()
	if primary.CurrentSong == nil || primary.CurrentSong.UUID != "b" {
		t.Fatalf("expected primary slot preloaded with song b, got %+v", primary.CurrentSong)
	}
	if primary.IsPlaying {
		t.Fatalf("expected resume-state preload to not start playback")
	}
}

// TestEngine_CrossfadeReconcilesQueueIndex is the scenario-1 regression test:
// when the playback controller advances to a new song on its own (a
// completed crossfade), State() must keep reporting a queue index whose
// song matches the new current song.
func TestEngine_CrossfadeReconcilesQueueIndex(t *testing.T) {
	e, _ := newTestEngine(t)
	_ = e.AddToQueue(context.Background(), []string{"a", "b", "c"}, false)

	if err := e.effectsCtl.SetCrossfadeEnabled(context.Background(), true); err != nil {
		t.Fatalf("enable crossfade: %v", err)
	}
	if err := e.effectsCtl.SetCrossfadeDuration(context.Background(), 1); err != nil {
		t.Fatalf("set crossfade duration: %v", err)
	}

	next := e.queueMach.PeekNext()
	if next == nil || next.UUID != "b" {
		t.Fatalf("expected peeked next song b, got %+v", next)
	}

	if err := e.playbackCtl.StartCrossfade(context.Background(), next); err != nil {
		t.Fatalf("start crossfade: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s := e.State()
		if s.CurrentSong != nil && s.Queue.Index >= 0 && s.Queue.Index < len(s.Queue.Items) &&
			s.CurrentSong.UUID == s.Queue.Items[s.Queue.Index].UUID {
			return
		}
		time.Sleep(time.Millisecond)
	}

	s := e.State()
	t.Fatalf("expected current song %q to match queue[%d] after crossfade, queue=%+v",
		stateSongUUID(s), s.Queue.Index, s.Queue.Items)
}

func stateSongUUID(s State) string {
	if s.CurrentSong == nil {
		return "<nil>"
	}
	return s.CurrentSong.UUID
}

func TestEngine_TickAdvancesOnTrackEnd(t *testing.T) {
	e, _ := newTestEngine(t)
	_ = e.AddToQueue(context.Background(), []string{"a", "b"}, false)

	if err := e.Seek(30 * time.Second); err != nil {
		t.Fatalf("seek to end: %v", err)
	}

	e.Tick(context.Background())

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if e.State().CurrentSong != nil && e.State().CurrentSong.UUID == "b" {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected track-end tick to advance to song b, got %+v", e.State().CurrentSong)
}

func TestEngine_TickRepeatOneReplaysSameSong(t *testing.T) {
	e, _ := newTestEngine(t)
	_ = e.AddToQueue(context.Background(), []string{"a", "b"}, false)
	if err := e.SetRepeatMode(context.Background(), queue.PlayModeRepeatOne); err != nil {
		t.Fatalf("set repeat one: %v", err)
	}
	if err := e.Seek(30 * time.Second); err != nil {
		t.Fatalf("seek to end: %v", err)
	}

	e.Tick(context.Background())

	if got := e.State().Queue.Index; got != 0 {
		t.Fatalf("expected index to stay at 0 under repeat-one, got %d", got)
	}
}
