/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/audioengine/internal/queue"
)

// mountTransportRoutes wires spec §6's Transport operation group.
func (a *API) mountTransportRoutes(r chi.Router) {
	r.Post("/play", a.handlePlay)
	r.Post("/pause", a.handlePause)
	r.Post("/resume", a.handleResume)
	r.Post("/toggle-play-pause", a.handleTogglePlayPause)
	r.Post("/stop", a.handleStop)
	r.Post("/seek", a.handleSeek)
	r.Post("/next", a.handleNext)
	r.Post("/previous", a.handlePrevious)
	r.Post("/skip", a.handleSkip)
	r.Post("/volume", a.handleSetVolume)
	r.Post("/mute", a.handleToggleMute)
}

func (a *API) handlePlay(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var song queue.Song
	if err := decodeBody(r, &song); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.Play(r.Context(), &song); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handlePause(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	eng.Pause()
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleResume(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.Resume(r.Context()); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleTogglePlayPause(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.TogglePlayPause(r.Context()); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleStop(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	eng.Stop()
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleSeek(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Seconds float64 `json:"seconds"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.Seek(time.Duration(body.Seconds * float64(time.Second))); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleNext(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.Next(r.Context()); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handlePrevious(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.Previous(r.Context()); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleSkip(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := eng.Skip(r.Context()); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Volume float64 `json:"volume"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	eng.SetVolume(body.Volume)
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleToggleMute(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	eng.ToggleMute()
	writeJSON(w, http.StatusOK, eng.State())
}
