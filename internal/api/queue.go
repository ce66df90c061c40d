/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/audioengine/internal/queue"
)

// mountQueueRoutes wires spec §6's Queue, Modes, and SCA/radio operation
// groups under /sessions/{sessionID}/queue.
func (a *API) mountQueueRoutes(r chi.Router) {
	r.Route("/queue", func(r chi.Router) {
		r.Post("/add", a.handleAddToQueue)
		r.Post("/add-by-path", a.handleAddByPath)
		r.Post("/add-by-filter", a.handleAddByFilter)
		r.Post("/add-by-playlist", a.handleAddByPlaylist)
		r.Post("/clear", a.handleClearQueue)
		r.Post("/play-at-index", a.handlePlayAtIndex)
		r.Post("/remove", a.handleRemoveFromQueue)
		r.Post("/remove-batch", a.handleRemoveFromQueueBatch)
		r.Post("/reorder", a.handleReorderQueue)
		r.Post("/reorder-batch", a.handleReorderQueueBatch)
		r.Post("/sort", a.handleSortQueue)
		r.Post("/save-as-playlist", a.handleSaveQueueAsPlaylist)
		r.Post("/reload", a.handleReloadQueue)

		r.Post("/shuffle/toggle", a.handleToggleShuffle)
		r.Post("/shuffle", a.handleSetShuffle)
		r.Post("/repeat-mode/cycle", a.handleCycleRepeatMode)
		r.Post("/repeat-mode", a.handleSetRepeatMode)

		r.Post("/temp-queue/toggle", a.handleToggleTempQueueMode)
		r.Post("/temp-queue/enter", a.handleEnterTempQueueMode)
		r.Post("/temp-queue/exit", a.handleExitTempQueueMode)

		r.Post("/sca/start-from-queue", a.handleStartScaFromQueue)
		r.Post("/sca/start-from-playlist", a.handleStartScaFromPlaylist)
		r.Post("/sca/start-radio", a.handleStartRadio)
		r.Post("/sca/stop", a.handleStopSca)
	})
}

func (a *API) handleAddToQueue(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		UUIDs   []string `json:"uuids"`
		PlayNow bool     `json:"playNow"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.AddToQueue(r.Context(), body.UUIDs, body.PlayNow); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleAddByPath(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Path string `json:"path"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.AddByPath(r.Context(), body.Path); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleAddByFilter(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Filter string `json:"filter"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.AddByFilter(r.Context(), body.Filter); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleAddByPlaylist(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		ID      string `json:"id"`
		Shuffle bool   `json:"shuffle"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.AddByPlaylist(r.Context(), body.ID, body.Shuffle); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.ClearQueue(r.Context()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handlePlayAtIndex(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Index int `json:"index"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.PlayAtIndex(r.Context(), body.Index); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleRemoveFromQueue(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Index int `json:"index"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.RemoveFromQueue(r.Context(), body.Index); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleRemoveFromQueueBatch(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Indices []int `json:"indices"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.RemoveFromQueueBatch(r.Context(), body.Indices); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleReorderQueue(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.ReorderQueue(r.Context(), body.From, body.To); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleReorderQueueBatch(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Indices []int `json:"indices"`
		To      int   `json:"to"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.ReorderQueueBatch(r.Context(), body.Indices, body.To); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleSortQueue(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Field string `json:"field"`
		Order string `json:"order"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.SortQueue(r.Context(), body.Field, body.Order); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleSaveQueueAsPlaylist(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Name   string `json:"name"`
		Desc   string `json:"description"`
		Public bool   `json:"public"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	id, err := eng.SaveQueueAsPlaylist(r.Context(), body.Name, body.Desc, body.Public)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"playlist_id": id})
}

func (a *API) handleReloadQueue(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.ReloadQueue(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleToggleShuffle(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.ToggleShuffle(r.Context()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleSetShuffle(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.SetShuffle(r.Context(), body.Enabled); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleCycleRepeatMode(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.CycleRepeatMode(r.Context()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleSetRepeatMode(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Mode string `json:"mode"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.SetRepeatMode(r.Context(), queue.PlayMode(body.Mode)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleToggleTempQueueMode(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.ToggleTempQueueMode(r.Context()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleEnterTempQueueMode(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.EnterTempQueueMode(r.Context()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleExitTempQueueMode(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.ExitTempQueueMode(r.Context()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleStartScaFromQueue(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.StartScaFromQueue(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleStartScaFromPlaylist(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.StartScaFromPlaylist(r.Context(), body.ID); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleStartRadio(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Seed   *string `json:"seed"`
		Filter *string `json:"filter"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.StartRadio(r.Context(), body.Seed, body.Filter); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleStopSca(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.StopSca(r.Context()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}
