/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/audioengine/internal/playback"
)

// mountVisualizerRoutes wires spec §6's Visualizer operation group.
func (a *API) mountVisualizerRoutes(r chi.Router) {
	r.Route("/visualizer", func(r chi.Router) {
		r.Post("/init-eq", a.handleInitEQ)
		r.Post("/analyser", a.handleInsertAnalyser)
		r.Delete("/analyser/{analyserID}", a.handleRemoveAnalyser)
		r.Post("/latency-mode", a.handleSwitchLatencyMode)
		r.Post("/low-latency-always", a.handleSetLowLatencyAlways)
		r.Get("/source-version", a.handleGetAudioSourceVersion)
		r.Get("/input-node", a.handleGetVisualizerInputNode)
		r.Get("/context", a.handleGetAudioContext)
		r.Get("/eq-filters", a.handleGetEQFilters)
	})
}

func (a *API) handleInitEQ(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	node, found := eng.InitEQ(r.Context())
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{"node": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"node": nodeView(node)})
}

func (a *API) handleInsertAnalyser(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	id, err := eng.InsertAnalyser(r.Context())
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"analyser_id": id})
}

func (a *API) handleRemoveAnalyser(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	eng.RemoveAnalyser(chi.URLParam(r, "analyserID"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSwitchLatencyMode(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Hint string `json:"hint"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.SwitchLatencyMode(r.Context(), playback.LatencyHint(body.Hint)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleSetLowLatencyAlways(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Always bool `json:"always"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := eng.SetLowLatencyAlways(r.Context(), body.Always); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleGetAudioSourceVersion(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"version": eng.GetAudioSourceVersion()})
}

func (a *API) handleGetVisualizerInputNode(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	node, found := eng.GetVisualizerInputNode()
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{"node": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"node": nodeView(node)})
}

func (a *API) handleGetAudioContext(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, eng.GetAudioContext())
}

func (a *API) handleGetEQFilters(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, eng.GetEQFilters())
}
