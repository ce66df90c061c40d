/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPCatalog implements Catalog against a remote catalog/queue service
// over plain JSON HTTP, grounded on the request/response shape spec §6
// describes ("All return either {items?, ...} or {error}").
type HTTPCatalog struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCatalog returns a Catalog backed by the remote service at baseURL.
func NewHTTPCatalog(baseURL string) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type apiEnvelope struct {
	Items      []*Song `json:"items,omitempty"`
	NextCursor string  `json:"nextCursor,omitempty"`
	QueueIndex *int    `json:"queueIndex,omitempty"`
	ScaEnabled *bool   `json:"scaEnabled,omitempty"`
	PlayMode   string  `json:"playMode,omitempty"`
	HasMore    bool    `json:"hasMore,omitempty"`
	SessionID  string  `json:"session_id,omitempty"`
	Seed       string  `json:"seed,omitempty"`
	Song       *Song   `json:"song,omitempty"`
	PlaylistID string  `json:"playlistId,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func (h *HTTPCatalog) call(ctx context.Context, method, path string, body any, out *apiEnvelope) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("repository: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("repository: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("repository: request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("repository: decode response: %w", err)
	}
	if out.Error != "" {
		return fmt.Errorf("repository: %s", out.Error)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("repository: server returned status %d", resp.StatusCode)
	}
	return nil
}

func (h *HTTPCatalog) List(ctx context.Context, limit int) ([]*Song, error) {
	var out apiEnvelope
	path := fmt.Sprintf("/queue?limit=%d", limit)
	if err := h.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) Add(ctx context.Context, uuids []string) ([]*Song, error) {
	var out apiEnvelope
	if err := h.call(ctx, http.MethodPost, "/queue/add", map[string]any{"uuids": uuids}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) Remove(ctx context.Context, positions []int) error {
	var out apiEnvelope
	return h.call(ctx, http.MethodPost, "/queue/remove", map[string]any{"positions": positions}, &out)
}

func (h *HTTPCatalog) SetIndex(ctx context.Context, i int) error {
	var out apiEnvelope
	return h.call(ctx, http.MethodPost, "/queue/index", map[string]any{"index": i}, &out)
}

func (h *HTTPCatalog) Reorder(ctx context.Context, from, to int) error {
	var out apiEnvelope
	return h.call(ctx, http.MethodPost, "/queue/reorder", map[string]any{"from": from, "to": to}, &out)
}

func (h *HTTPCatalog) ReorderBatch(ctx context.Context, indices []int, to int) error {
	var out apiEnvelope
	return h.call(ctx, http.MethodPost, "/queue/reorder-batch", map[string]any{"indices": indices, "to": to}, &out)
}

func (h *HTTPCatalog) Clear(ctx context.Context) error {
	var out apiEnvelope
	return h.call(ctx, http.MethodPost, "/queue/clear", nil, &out)
}

func (h *HTTPCatalog) Sort(ctx context.Context, field, order string) ([]*Song, error) {
	var out apiEnvelope
	if err := h.call(ctx, http.MethodPost, "/queue/sort", map[string]any{"field": field, "order": order}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) AddByPath(ctx context.Context, path string) ([]*Song, error) {
	var out apiEnvelope
	if err := h.call(ctx, http.MethodPost, "/queue/add-by-path", map[string]any{"path": path}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) AddByFilter(ctx context.Context, filter string) ([]*Song, error) {
	var out apiEnvelope
	if err := h.call(ctx, http.MethodPost, "/queue/add-by-filter", map[string]any{"filter": filter}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) AddByPlaylist(ctx context.Context, id string, shuffle bool) ([]*Song, error) {
	var out apiEnvelope
	body := map[string]any{"id": id, "shuffle": shuffle}
	if err := h.call(ctx, http.MethodPost, "/queue/add-by-playlist", body, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) SaveAsPlaylist(ctx context.Context, name, desc string, public bool) (string, error) {
	var out apiEnvelope
	body := map[string]any{"name": name, "desc": desc, "public": public}
	if err := h.call(ctx, http.MethodPost, "/playlists", body, &out); err != nil {
		return "", err
	}
	return out.PlaylistID, nil
}

func (h *HTTPCatalog) StartScaFromQueue(ctx context.Context) ([]*Song, error) {
	var out apiEnvelope
	if err := h.call(ctx, http.MethodPost, "/sca/start-from-queue", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) StartScaFromPlaylist(ctx context.Context, id string) ([]*Song, error) {
	var out apiEnvelope
	if err := h.call(ctx, http.MethodPost, "/sca/start-from-playlist", map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) StartRadio(ctx context.Context, seedUUID, filter *string) ([]*Song, error) {
	var out apiEnvelope
	if err := h.call(ctx, http.MethodPost, "/radio/start", map[string]any{"seed": seedUUID, "filter": filter}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) StopSca(ctx context.Context) error {
	var out apiEnvelope
	return h.call(ctx, http.MethodPost, "/sca/stop", nil, &out)
}

func (h *HTTPCatalog) PopulateQueue(ctx context.Context, n int) ([]*Song, error) {
	var out apiEnvelope
	if err := h.call(ctx, http.MethodPost, "/sca/populate", map[string]any{"n": n}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (h *HTTPCatalog) RecordHistory(ctx context.Context, uuid string, seconds float64, wasSkipped bool, source string) error {
	var out apiEnvelope
	body := map[string]any{"uuid": uuid, "seconds": seconds, "wasSkipped": wasSkipped, "source": source}
	return h.call(ctx, http.MethodPost, "/history", body, &out)
}

type offlineStateResponse struct {
	WorkOfflineMode   bool      `json:"workOfflineMode"`
	IsOnline          bool      `json:"isOnline"`
	OfflineSongUUIDs  []string  `json:"offlineSongUuids"`
	LastQueueSyncTime time.Time `json:"lastQueueSyncTime"`
}

func (h *HTTPCatalog) offlineState(ctx context.Context) (offlineStateResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/offline-state", nil)
	if err != nil {
		return offlineStateResponse{}, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return offlineStateResponse{}, err
	}
	defer resp.Body.Close()
	var out offlineStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return offlineStateResponse{}, err
	}
	return out, nil
}

func (h *HTTPCatalog) WorkOfflineMode(ctx context.Context) bool {
	s, err := h.offlineState(ctx)
	return err == nil && s.WorkOfflineMode
}

func (h *HTTPCatalog) IsOnline(ctx context.Context) bool {
	s, err := h.offlineState(ctx)
	return err != nil || s.IsOnline
}

func (h *HTTPCatalog) OfflineSongUUIDs(ctx context.Context) (map[string]bool, error) {
	s, err := h.offlineState(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(s.OfflineSongUUIDs))
	for _, id := range s.OfflineSongUUIDs {
		out[id] = true
	}
	return out, nil
}

func (h *HTTPCatalog) LastQueueSyncTime(ctx context.Context) (time.Time, error) {
	s, err := h.offlineState(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return s.LastQueueSyncTime, nil
}

func (h *HTTPCatalog) AudioURL(ctx context.Context, id string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/songs/"+url.PathEscape(id)+"/audio-url", nil)
	if err != nil {
		return "", false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", false
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.URL == "" {
		return "", false
	}
	return out.URL, true
}

func (h *HTTPCatalog) StreamURL(ctx context.Context, id, songType string) (string, error) {
	path := fmt.Sprintf("/songs/%s/stream-url?type=%s", url.PathEscape(id), url.QueryEscape(songType))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (h *HTTPCatalog) GetSong(ctx context.Context, id string) (*Song, error) {
	var out apiEnvelope
	if err := h.call(ctx, http.MethodGet, "/songs/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if out.Song == nil {
		return nil, &ErrNotFound{UUID: id}
	}
	return out.Song, nil
}
