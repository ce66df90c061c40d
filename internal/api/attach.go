/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	ws "nhooyr.io/websocket"

	"github.com/friendsincode/audioengine/internal/telemetry"
)

// mountAttachRoutes adds the primary-session endpoints for minting and
// managing attach tokens. These sit behind the same JWT auth as the rest
// of a session's routes: only the primary holder can issue read-only
// access to secondary consumers.
func (a *API) mountAttachRoutes(r chi.Router) {
	r.Route("/attach-tokens", func(r chi.Router) {
		r.Post("/", a.handleIssueAttachToken)
		r.Get("/", a.handleListAttachTokens)
		r.Delete("/{tokenID}", a.handleRevokeAttachToken)
	})
}

type issueAttachTokenRequest struct {
	Hours int `json:"hours"`
}

func (a *API) handleIssueAttachToken(w http.ResponseWriter, r *http.Request) {
	_, ok := a.session(w, r)
	if !ok {
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	var req issueAttachTokenRequest
	_ = decodeBody(r, &req)
	ttl := time.Duration(req.Hours) * time.Hour
	if req.Hours <= 0 {
		ttl = time.Hour
	}

	plaintext, record, err := a.attachTokens.Issue(sessionID, ttl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue_attach_token_failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token":      plaintext,
		"id":         record.ID,
		"expires_at": record.ExpiresAt,
	})
}

func (a *API) handleListAttachTokens(w http.ResponseWriter, r *http.Request) {
	_, ok := a.session(w, r)
	if !ok {
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	writeJSON(w, http.StatusOK, map[string]any{"tokens": a.attachTokens.List(sessionID)})
}

func (a *API) handleRevokeAttachToken(w http.ResponseWriter, r *http.Request) {
	_, ok := a.session(w, r)
	if !ok {
		return
	}
	tokenID := chi.URLParam(r, "tokenID")
	if err := a.attachTokens.Revoke(tokenID); err != nil {
		writeError(w, http.StatusNotFound, "attach_token_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAttachWebSocket serves the read-only observable-state stream for a
// secondary consumer (a visualizer popout, a mirrored mini-player). It
// authenticates via an attach token instead of the primary JWT, and never
// reads commands off the socket: attach holders cannot drive transport,
// queue, or effects operations.
func (a *API) handleAttachWebSocket(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	sessionID, err := a.attachTokens.Validate(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_attach_token")
		return
	}

	a.mu.RLock()
	eng, ok := a.sessions[sessionID]
	a.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found")
		return
	}

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		a.logger.Error().Err(err).Msg("attach websocket accept failed")
		return
	}
	defer conn.Close(ws.StatusInternalError, "server error")

	telemetry.WebsocketConnectionsActive.Inc()
	defer telemetry.WebsocketConnectionsActive.Dec()

	ctx := r.Context()
	if err := a.sendState(ctx, conn, eng); err != nil {
		return
	}

	ticker := time.NewTicker(statePushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(ws.StatusNormalClosure, "context cancelled")
			return
		case <-ticker.C:
			if _, err := a.attachTokens.Validate(token); err != nil {
				conn.Close(ws.StatusPolicyViolation, "attach token no longer valid")
				return
			}
			if err := a.sendState(ctx, conn, eng); err != nil {
				conn.Close(ws.StatusInternalError, "send failed")
				return
			}
		}
	}
}
