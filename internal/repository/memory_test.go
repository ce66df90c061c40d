/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package repository

import (
	"context"
	"testing"
)

func TestMemoryCatalog_AddByPathReturnsSeededSongs(t *testing.T) {
	cat := NewMemoryCatalog("https://stream.example")
	cat.SeedPath("/music/folder", &Song{UUID: "a", Title: "A"}, &Song{UUID: "b", Title: "B"})

	songs, err := cat.AddByPath(context.Background(), "/music/folder")
	if err != nil {
		t.Fatalf("add by path: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(songs))
	}
	list, _ := cat.List(context.Background(), 0)
	if len(list) != 2 {
		t.Fatalf("expected queue to hold 2 songs, got %d", len(list))
	}
}

func TestMemoryCatalog_AudioURLFallsBackToStream(t *testing.T) {
	cat := NewMemoryCatalog("https://stream.example")
	cat.Seed(&Song{UUID: "x", Type: "mp3"})

	if _, ok := cat.AudioURL(context.Background(), "x"); ok {
		t.Fatalf("expected no cached audio url")
	}
	url, err := cat.StreamURL(context.Background(), "x", "mp3")
	if err != nil {
		t.Fatalf("stream url: %v", err)
	}
	if url == "" {
		t.Fatalf("expected non-empty stream url")
	}
}

func TestMemoryCatalog_AudioURLPrefersCached(t *testing.T) {
	cat := NewMemoryCatalog("https://stream.example")
	cat.SeedCachedURL("y", "blob://cached-y")

	url, ok := cat.AudioURL(context.Background(), "y")
	if !ok || url != "blob://cached-y" {
		t.Fatalf("expected cached url, got %q ok=%v", url, ok)
	}
}

func TestMemoryCatalog_SortByTitleAscending(t *testing.T) {
	cat := NewMemoryCatalog("https://stream.example")
	cat.Seed(&Song{UUID: "1", Title: "Zebra"}, &Song{UUID: "2", Title: "Apple"})
	_, _ = cat.Add(context.Background(), []string{"1", "2"})

	sorted, err := cat.Sort(context.Background(), "title", "asc")
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if sorted[0].UUID != "2" || sorted[1].UUID != "1" {
		t.Fatalf("expected Apple before Zebra, got %+v", sorted)
	}
}

func TestMemoryCatalog_StartScaFromQueueEnablesAndPopulates(t *testing.T) {
	cat := NewMemoryCatalog("https://stream.example")
	_, _ = cat.Add(context.Background(), []string{"a", "b"})

	items, err := cat.StartScaFromQueue(context.Background())
	if err != nil {
		t.Fatalf("start sca: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 seeded items, got %d", len(items))
	}
	more, err := cat.PopulateQueue(context.Background(), 3)
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	if len(more) != 3 {
		t.Fatalf("expected 3 populated songs, got %d", len(more))
	}
}

func TestMemoryCatalog_StopScaEmptiesPoolSoPopulateReturnsNothing(t *testing.T) {
	cat := NewMemoryCatalog("https://stream.example")
	_, _ = cat.Add(context.Background(), []string{"a"})
	_, _ = cat.StartScaFromQueue(context.Background())

	if err := cat.StopSca(context.Background()); err != nil {
		t.Fatalf("stop sca: %v", err)
	}
	songs, err := cat.PopulateQueue(context.Background(), 2)
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	if len(songs) != 0 {
		t.Fatalf("expected no songs once sca stopped, got %d", len(songs))
	}
}

func TestMemoryCatalog_OfflineStateReflectsSetOffline(t *testing.T) {
	cat := NewMemoryCatalog("https://stream.example")
	cat.SetOffline(true, false)

	if !cat.WorkOfflineMode(context.Background()) {
		t.Fatalf("expected work-offline mode true")
	}
	if cat.IsOnline(context.Background()) {
		t.Fatalf("expected online false")
	}
}

func TestMemoryCatalog_GetSongNotFound(t *testing.T) {
	cat := NewMemoryCatalog("https://stream.example")
	if _, err := cat.GetSong(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not-found error")
	}
}
