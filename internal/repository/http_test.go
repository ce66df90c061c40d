/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPCatalog_ListDecodesItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/queue" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(apiEnvelope{Items: []*Song{{UUID: "a"}, {UUID: "b"}}})
	}))
	defer srv.Close()

	cat := NewHTTPCatalog(srv.URL)
	items, err := cat.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestHTTPCatalog_ErrorEnvelopePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(apiEnvelope{Error: "catalog unavailable"})
	}))
	defer srv.Close()

	cat := NewHTTPCatalog(srv.URL)
	if _, err := cat.Add(context.Background(), []string{"a"}); err == nil {
		t.Fatalf("expected error from envelope")
	}
}

func TestHTTPCatalog_SaveAsPlaylistReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(apiEnvelope{PlaylistID: "pl-123"})
	}))
	defer srv.Close()

	cat := NewHTTPCatalog(srv.URL)
	id, err := cat.SaveAsPlaylist(context.Background(), "mix", "", true)
	if err != nil {
		t.Fatalf("save as playlist: %v", err)
	}
	if id != "pl-123" {
		t.Fatalf("expected playlist id pl-123, got %q", id)
	}
}

func TestHTTPCatalog_AudioURLFalseOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cat := NewHTTPCatalog(srv.URL)
	if _, ok := cat.AudioURL(context.Background(), "missing"); ok {
		t.Fatalf("expected ok=false on 404")
	}
}
