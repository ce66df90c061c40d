/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/audioengine/internal/auth"
	"github.com/friendsincode/audioengine/internal/repository"
	"github.com/friendsincode/audioengine/internal/settings"
)

func newTestAPI(t *testing.T) (*API, string) {
	t.Helper()
	catalog := repository.NewMemoryCatalog("https://stream.example.com")
	catalog.Seed(&repository.Song{UUID: "song-1", Title: "Track One", DurationSeconds: 180, Seekable: true})

	store := settings.New(settings.NewMemoryKV(), settings.NewMemoryStructuredStore())
	secret := []byte("test-signing-key")
	a := New(catalog, store, secret, zerolog.Nop())

	token, err := auth.Issue(secret, auth.Claims{SessionID: "bootstrap", Scopes: []string{"session"}}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return a, token
}

func doRequest(t *testing.T, r chi.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateSessionRequiresAuth(t *testing.T) {
	a, _ := newTestAPI(t)
	r := chi.NewRouter()
	a.Routes(r)

	rr := doRequest(t, r, http.MethodPost, "/api/v1/sessions/", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rr.Code)
	}
}

func TestCreateSessionAndPlay(t *testing.T) {
	a, token := newTestAPI(t)
	r := chi.NewRouter()
	a.Routes(r)

	rr := doRequest(t, r, http.MethodPost, "/api/v1/sessions/", token, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating session, got %d: %s", rr.Code, rr.Body.String())
	}
	var created struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.SessionID == "" {
		t.Fatal("expected a session id")
	}

	playPath := "/api/v1/sessions/" + created.SessionID + "/play"
	rr = doRequest(t, r, http.MethodPost, playPath, token, map[string]string{"uuid": "song-1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 playing song, got %d: %s", rr.Code, rr.Body.String())
	}

	statePath := "/api/v1/sessions/" + created.SessionID
	rr = doRequest(t, r, http.MethodGet, statePath, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching state, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAttachTokenIssueAndRevoke(t *testing.T) {
	a, token := newTestAPI(t)
	r := chi.NewRouter()
	a.Routes(r)

	rr := doRequest(t, r, http.MethodPost, "/api/v1/sessions/", token, nil)
	var created struct {
		SessionID string `json:"session_id"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &created)

	attachPath := "/api/v1/sessions/" + created.SessionID + "/attach-tokens/"
	rr = doRequest(t, r, http.MethodPost, attachPath, token, map[string]int{"hours": 1})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 issuing attach token, got %d: %s", rr.Code, rr.Body.String())
	}
	var issued struct {
		Token string `json:"token"`
		ID    string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &issued); err != nil {
		t.Fatalf("decode attach token response: %v", err)
	}
	if issued.Token == "" || issued.ID == "" {
		t.Fatal("expected a token and id")
	}

	rr = doRequest(t, r, http.MethodDelete, attachPath+issued.ID, token, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 revoking attach token, got %d", rr.Code)
	}
}

func TestGetStateUnknownSessionNotFound(t *testing.T) {
	a, token := newTestAPI(t)
	r := chi.NewRouter()
	a.Routes(r)

	rr := doRequest(t, r, http.MethodGet, "/api/v1/sessions/does-not-exist", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rr.Code)
	}
}
