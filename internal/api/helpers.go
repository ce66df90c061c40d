/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/friendsincode/audioengine/internal/graph"
)

// nodeView reduces a graph.Node to its wire-relevant identity for
// visualizer responses, which only ever need "which node is this" rather
// than the node's internal parameter fields.
func nodeView(n graph.Node) map[string]string {
	return map[string]string{"id": n.ID(), "kind": string(n.Kind())}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
