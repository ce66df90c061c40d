package settings

import (
	"context"
	"testing"
)

func newTestStore() *Store {
	return New(NewMemoryKV(), NewMemoryStructuredStore())
}

func TestStore_LocalSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	got, err := store.GetLocal(ctx, "sess1")
	if err != nil {
		t.Fatalf("GetLocal before set: %v", err)
	}
	if got.Volume != 0 {
		t.Fatalf("expected zero-value default, got %+v", got)
	}

	want := LocalSettings{Volume: 0.8, Muted: false, CurrentSongUUID: "song-1", CurrentTime: 12.5}
	if err := store.SetLocal(ctx, "sess1", want); err != nil {
		t.Fatalf("SetLocal: %v", err)
	}

	got, err = store.GetLocal(ctx, "sess1")
	if err != nil {
		t.Fatalf("GetLocal after set: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestStore_LocalSettingsIsolatedBySession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if err := store.SetLocal(ctx, "sess1", LocalSettings{Volume: 0.5}); err != nil {
		t.Fatalf("SetLocal sess1: %v", err)
	}

	got, err := store.GetLocal(ctx, "sess2")
	if err != nil {
		t.Fatalf("GetLocal sess2: %v", err)
	}
	if got.Volume != 0 {
		t.Fatalf("expected sess2 to be unaffected by sess1's write, got %+v", got)
	}
}

func TestStore_EQRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	want := EQSettings{Enabled: true, Gains: [10]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}
	if err := store.SetEQ(ctx, "sess1", want); err != nil {
		t.Fatalf("SetEQ: %v", err)
	}

	got, err := store.GetEQ(ctx, "sess1")
	if err != nil {
		t.Fatalf("GetEQ: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestStore_ShuffleHistoryClear(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if err := store.SetShuffleHistory(ctx, "sess1", ShuffleHistory{SongUUIDs: []string{"a", "b"}}); err != nil {
		t.Fatalf("SetShuffleHistory: %v", err)
	}

	if err := store.ClearShuffleHistory(ctx, "sess1"); err != nil {
		t.Fatalf("ClearShuffleHistory: %v", err)
	}

	got, err := store.GetShuffleHistory(ctx, "sess1")
	if err != nil {
		t.Fatalf("GetShuffleHistory: %v", err)
	}
	if len(got.SongUUIDs) != 0 {
		t.Fatalf("expected empty history after clear, got %v", got.SongUUIDs)
	}
}

func TestStore_LowLatencyAlwaysDefaultsFalse(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	got, err := store.GetLowLatencyAlways(ctx, "sess1")
	if err != nil {
		t.Fatalf("GetLowLatencyAlways: %v", err)
	}
	if got {
		t.Fatal("expected default false")
	}

	if err := store.SetLowLatencyAlways(ctx, "sess1", true); err != nil {
		t.Fatalf("SetLowLatencyAlways: %v", err)
	}
	got, err = store.GetLowLatencyAlways(ctx, "sess1")
	if err != nil {
		t.Fatalf("GetLowLatencyAlways after set: %v", err)
	}
	if !got {
		t.Fatal("expected true after set")
	}
}

func TestStore_TempQueueLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if _, found, err := store.GetTempQueueState(ctx, "sess1"); err != nil || found {
		t.Fatalf("expected no snapshot initially, found=%v err=%v", found, err)
	}

	snapshot := TempQueueSnapshot{
		Items:      []Song{{UUID: "a"}, {UUID: "b"}, {UUID: "c"}},
		QueueIndex: 1,
		SCAEnabled: false,
		PlayMode:   PlayModeSequential,
	}
	if err := store.SaveTempQueueState(ctx, "sess1", snapshot); err != nil {
		t.Fatalf("SaveTempQueueState: %v", err)
	}

	got, found, err := store.GetTempQueueState(ctx, "sess1")
	if err != nil || !found {
		t.Fatalf("expected snapshot to exist, found=%v err=%v", found, err)
	}
	if got.QueueIndex != 1 || len(got.Items) != 3 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	if err := store.ClearTempQueueState(ctx, "sess1"); err != nil {
		t.Fatalf("ClearTempQueueState: %v", err)
	}

	if _, found, err := store.GetTempQueueState(ctx, "sess1"); err != nil || found {
		t.Fatalf("expected snapshot removed after clear, found=%v err=%v", found, err)
	}
}
