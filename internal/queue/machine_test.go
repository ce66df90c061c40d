package queue

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/settings"
)

type fakeRepo struct {
	songs map[string]*Song
	list  []*Song
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{songs: make(map[string]*Song)}
}

func (r *fakeRepo) song(uuid string) *Song {
	if s, ok := r.songs[uuid]; ok {
		return s
	}
	s := &Song{UUID: uuid, Title: "Track " + uuid, DurationSeconds: 180}
	r.songs[uuid] = s
	return s
}

func (r *fakeRepo) List(ctx context.Context, limit int) ([]*Song, error) { return r.list, nil }
func (r *fakeRepo) Add(ctx context.Context, uuids []string) ([]*Song, error) {
	var added []*Song
	for _, u := range uuids {
		s := r.song(u)
		r.list = append(r.list, s)
		added = append(added, s)
	}
	return added, nil
}
func (r *fakeRepo) Remove(ctx context.Context, positions []int) error {
	remove := map[int]bool{}
	for _, i := range positions {
		remove[i] = true
	}
	var next []*Song
	for i, s := range r.list {
		if !remove[i] {
			next = append(next, s)
		}
	}
	r.list = next
	return nil
}
func (r *fakeRepo) SetIndex(ctx context.Context, i int) error                  { return nil }
func (r *fakeRepo) Reorder(ctx context.Context, from, to int) error           { return nil }
func (r *fakeRepo) ReorderBatch(ctx context.Context, indices []int, to int) error { return nil }
func (r *fakeRepo) Clear(ctx context.Context) error                           { r.list = nil; return nil }
func (r *fakeRepo) Sort(ctx context.Context, field, order string) ([]*Song, error) { return r.list, nil }
func (r *fakeRepo) AddByPath(ctx context.Context, path string) ([]*Song, error) {
	return r.Add(ctx, []string{"path-song"})
}
func (r *fakeRepo) AddByFilter(ctx context.Context, filter string) ([]*Song, error) {
	return r.Add(ctx, []string{"filter-song"})
}
func (r *fakeRepo) AddByPlaylist(ctx context.Context, id string, shuffle bool) ([]*Song, error) {
	return r.Add(ctx, []string{"playlist-song"})
}
func (r *fakeRepo) SaveAsPlaylist(ctx context.Context, name, desc string, public bool) (string, error) {
	return "playlist-1", nil
}
func (r *fakeRepo) StartScaFromQueue(ctx context.Context) ([]*Song, error) {
	return []*Song{r.song("sca-1"), r.song("sca-2")}, nil
}
func (r *fakeRepo) StartScaFromPlaylist(ctx context.Context, id string) ([]*Song, error) {
	return []*Song{r.song("sca-1")}, nil
}
func (r *fakeRepo) StartRadio(ctx context.Context, seedUUID, filter *string) ([]*Song, error) {
	return []*Song{r.song("radio-1")}, nil
}
func (r *fakeRepo) StopSca(ctx context.Context) error { return nil }
func (r *fakeRepo) PopulateQueue(ctx context.Context, n int) ([]*Song, error) {
	return nil, nil
}
func (r *fakeRepo) RecordHistory(ctx context.Context, uuid string, seconds float64, wasSkipped bool, source string) error {
	return nil
}

func newTestMachine(t *testing.T) (*Machine, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	store := settings.New(settings.NewMemoryKV(), settings.NewMemoryStructuredStore())
	bus := events.NewBus()
	m := New("sess-1", repo, store, bus, nil, zerolog.Nop())
	return m, repo
}

func TestMachine_AddToQueueNormalReloadsFromRepo(t *testing.T) {
	m, _ := newTestMachine(t)
	if err := m.AddToQueue(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	s := m.State()
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(s.Items))
	}
}

func TestMachine_PlayAtIndexBounds(t *testing.T) {
	m, _ := newTestMachine(t)
	_ = m.AddToQueue(context.Background(), []string{"a", "b"})
	if err := m.PlayAtIndex(context.Background(), 1); err != nil {
		t.Fatalf("play at index: %v", err)
	}
	if m.State().Index != 1 {
		t.Fatalf("expected index 1, got %d", m.State().Index)
	}
	if err := m.PlayAtIndex(context.Background(), 5); err != ErrQueueEmpty {
		t.Fatalf("expected ErrQueueEmpty for out-of-range index, got %v", err)
	}
}

func TestMachine_RemoveFromQueueBatchPreservesCurrentSong(t *testing.T) {
	m, _ := newTestMachine(t)
	_ = m.AddToQueue(context.Background(), []string{"a", "b", "c"})
	_ = m.PlayAtIndex(context.Background(), 2) // "c"
	if err := m.RemoveFromQueueBatch(context.Background(), []int{0}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	s := m.State()
	if s.CurrentSong().UUID != "c" {
		t.Fatalf("expected current song to remain c, got %+v", s.CurrentSong())
	}
}

func TestMachine_SortQueueResetsIndex(t *testing.T) {
	m, _ := newTestMachine(t)
	_ = m.AddToQueue(context.Background(), []string{"b", "a"})
	_ = m.PlayAtIndex(context.Background(), 1)
	if err := m.SortQueue(context.Background(), "title", "asc"); err != nil {
		t.Fatalf("sort: %v", err)
	}
	if m.State().Index != 0 {
		t.Fatalf("expected index reset to 0 after sort, got %d", m.State().Index)
	}
}

func TestMachine_ClearQueueEmptiesAndResetsShuffleHistory(t *testing.T) {
	m, _ := newTestMachine(t)
	_ = m.AddToQueue(context.Background(), []string{"a", "b"})
	m.recordShuffleVisit(context.Background(), "a")
	if err := m.ClearQueue(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(m.State().Items) != 0 {
		t.Fatalf("expected empty queue after clear")
	}
	if len(m.snap.shuffleHist) != 0 {
		t.Fatalf("expected shuffle history reset after clear, got %v", m.snap.shuffleHist)
	}
	hist, err := m.store.GetShuffleHistory(context.Background(), "sess-1")
	if err != nil || len(hist.SongUUIDs) != 0 {
		t.Fatalf("expected stored shuffle history cleared, got %v (err %v)", hist.SongUUIDs, err)
	}
}

func TestMachine_AutoplayFiresWhenQueueWasEmpty(t *testing.T) {
	repo := newFakeRepo()
	store := settings.New(settings.NewMemoryKV(), settings.NewMemoryStructuredStore())
	bus := events.NewBus()
	var playedUUID string
	m := New("sess-1", repo, store, bus, func(ctx context.Context, song *Song) {
		playedUUID = song.UUID
	}, zerolog.Nop())

	if err := m.AddToQueue(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if playedUUID != "a" {
		t.Fatalf("expected autoplay fired with song a, got %q", playedUUID)
	}
}

func TestMachine_TempQueueEnterExitRoundTrip(t *testing.T) {
	m, _ := newTestMachine(t)
	_ = m.AddToQueue(context.Background(), []string{"a", "b"})
	_ = m.PlayAtIndex(context.Background(), 1)

	var stopped bool
	if err := m.EnterTempQueueMode(context.Background(), func() { stopped = true }); err != nil {
		t.Fatalf("enter temp queue: %v", err)
	}
	if !stopped {
		t.Fatalf("expected stop callback invoked")
	}
	if len(m.State().Items) != 0 {
		t.Fatalf("expected empty live queue in temp mode")
	}

	if err := m.AddToQueue(context.Background(), []string{"temp-1"}); err != nil {
		t.Fatalf("add in temp mode: %v", err)
	}
	if len(m.State().Items) != 1 {
		t.Fatalf("expected 1 item in temp queue")
	}

	if err := m.ExitTempQueueMode(context.Background(), func() {}); err != nil {
		t.Fatalf("exit temp queue: %v", err)
	}
	s := m.State()
	if len(s.Items) != 2 || s.Index != 1 {
		t.Fatalf("expected restored queue of 2 items at index 1, got %+v", s)
	}
}

func TestMachine_FocusRefreshGatedByRecentAway(t *testing.T) {
	m, _ := newTestMachine(t)
	m.MarkAway()
	if m.ShouldFocusRefresh(m.lastAwayAt) {
		t.Fatalf("expected focus refresh suppressed immediately after going away")
	}
}

func TestMachine_StartScaFromQueueSetsEnabledFlag(t *testing.T) {
	m, _ := newTestMachine(t)
	song, err := m.StartScaFromQueue(context.Background())
	if err != nil {
		t.Fatalf("start sca: %v", err)
	}
	if song == nil || song.UUID != "sca-1" {
		t.Fatalf("expected first sca song, got %+v", song)
	}
	if !m.State().SCAEnabled {
		t.Fatalf("expected sca enabled")
	}
}

func TestMachine_HandleExhaustionStopsScaWhenEmpty(t *testing.T) {
	m, _ := newTestMachine(t)
	_, _ = m.StartScaFromQueue(context.Background())
	if err := m.HandleExhaustion(context.Background()); err != nil {
		t.Fatalf("handle exhaustion: %v", err)
	}
	if m.State().SCAEnabled {
		t.Fatalf("expected sca disabled after empty populate")
	}
}

func TestMachine_NextShuffleThenPreviousRetracesHistory(t *testing.T) {
	m, _ := newTestMachine(t)
	_ = m.AddToQueue(context.Background(), []string{"a", "b", "c"})
	_ = m.SetShuffle(context.Background(), true)
	_ = m.PlayAtIndex(context.Background(), 0)

	next, err := m.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next == nil {
		t.Fatalf("expected a next song")
	}

	prev, err := m.Previous(context.Background())
	if err != nil {
		t.Fatalf("previous: %v", err)
	}
	if prev == nil || prev.UUID != "a" {
		t.Fatalf("expected previous to retrace to a, got %+v", prev)
	}
}
