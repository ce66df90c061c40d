/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the engine façade over HTTP and WebSocket so a thin
// browser client (out of scope per spec §1, but the actual consumer) can
// attach, observe state, and invoke operations — grounded on
// internal/api.API / internal/api/webdj_ws.go's router-plus-push-socket
// shape, generalized from one struct holding every station subsystem to
// one struct holding a map of listener sessions.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/audioengine/internal/auth"
	"github.com/friendsincode/audioengine/internal/engine"
	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/eventbus"
	"github.com/friendsincode/audioengine/internal/repository"
	"github.com/friendsincode/audioengine/internal/settings"
)

// API holds the session registry and the shared collaborators every
// session's engine is built from.
type API struct {
	mu       sync.RWMutex
	sessions map[string]*engine.Engine

	catalog   repository.Catalog
	store     *settings.Store
	jwtSecret []byte
	logger    zerolog.Logger

	// clusterBus is optional: when set, session lifecycle events are
	// mirrored to it so other instances behind the same load balancer
	// learn a session closed on this node (sticky-session failover).
	clusterBus *eventbus.NATSBus

	attachTokens *auth.AttachTokenStore
}

// SetClusterBus attaches the cross-instance event bus. Nil disables
// cross-instance notification, leaving each instance's sessions purely
// local.
func (a *API) SetClusterBus(bus *eventbus.NATSBus) {
	a.clusterBus = bus
}

// New creates the API router wrapper.
func New(catalog repository.Catalog, store *settings.Store, jwtSecret []byte, logger zerolog.Logger) *API {
	return &API{
		sessions:     make(map[string]*engine.Engine),
		catalog:      catalog,
		store:        store,
		jwtSecret:    jwtSecret,
		logger:       logger.With().Str("component", "api").Logger(),
		attachTokens: auth.NewAttachTokenStore(),
	}
}

// Routes mounts the façade's HTTP/WS surface under /api/v1, mirroring the
// teacher's unauthenticated-health-plus-authenticated-group split.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		// Attach-token WebSockets sit outside the JWT-guarded group: a
		// secondary consumer authenticates with its own narrower
		// credential instead of the primary session token.
		r.Get("/attach/{token}/ws", a.handleAttachWebSocket)

		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(a.jwtSecret))

			pr.Route("/sessions", func(r chi.Router) {
				r.Post("/", a.handleCreateSession)
				r.Get("/", a.handleListSessions)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", a.handleGetState)
					r.Delete("/", a.handleCloseSession)
					r.Get("/ws", a.handleWebSocket)

					a.mountTransportRoutes(r)
					a.mountQueueRoutes(r)
					a.mountEffectsRoutes(r)
					a.mountVisualizerRoutes(r)
					a.mountAttachRoutes(r)
				})
			})
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session looks up a session by ID, writing a 404 and returning ok=false if
// absent.
func (a *API) session(w http.ResponseWriter, r *http.Request) (*engine.Engine, bool) {
	id := chi.URLParam(r, "sessionID")
	a.mu.RLock()
	eng, ok := a.sessions[id]
	a.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found")
		return nil, false
	}
	return eng, true
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := engine.NewSessionID()
	bus := events.NewBus()
	eng, err := engine.New(r.Context(), id, a.catalog, a.store, bus, a.logger)
	if err != nil {
		a.logger.Error().Err(err).Msg("create session failed")
		writeError(w, http.StatusInternalServerError, "create_session_failed")
		return
	}

	a.mu.Lock()
	a.sessions[id] = eng
	a.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (a *API) handleListSessions(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	ids := make([]string, 0, len(a.sessions))
	for id := range a.sessions {
		ids = append(ids, id)
	}
	a.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (a *API) handleGetState(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (a *API) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	a.mu.Lock()
	eng, ok := a.sessions[id]
	delete(a.sessions, id)
	a.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found")
		return
	}
	eng.Close()
	a.attachTokens.RevokeSession(id)
	if a.clusterBus != nil {
		a.clusterBus.Publish(events.EventSessionClosed, events.Payload{"session_id": id})
	}
	w.WriteHeader(http.StatusNoContent)
}

// Shutdown closes every live session, for use during process shutdown.
func (a *API) Shutdown(_ context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, eng := range a.sessions {
		eng.Close()
		delete(a.sessions, id)
	}
}
