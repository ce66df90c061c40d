/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	ws "nhooyr.io/websocket"

	"github.com/friendsincode/audioengine/internal/engine"
	"github.com/friendsincode/audioengine/internal/telemetry"
)

// wsMessage is a server -> client push, grounded on webdj_ws.go's wsMessage
// shape (type/timestamp/opaque data envelope).
type wsMessage struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// wsCommand is a client -> server command, grounded on webdj_ws.go's
// wsCommand shape (action + opaque data).
type wsCommand struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

const statePushInterval = 250 * time.Millisecond

// handleWebSocket streams observable state to the client and accepts
// commands, mirroring internal/api/webdj_ws.go's subscribe-loop-plus-
// command-channel control flow (ping ticker, read goroutine feeding a
// buffered command channel, single select-driven main loop) generalized
// from a poll-via-subscribe update channel to a tick-driven state push,
// since the engine's Tick-based model has no dedicated "state changed"
// event of its own.
func (a *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		a.logger.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(ws.StatusInternalError, "server error")

	telemetry.WebsocketConnectionsActive.Inc()
	defer telemetry.WebsocketConnectionsActive.Dec()

	ctx := r.Context()
	if err := a.sendState(ctx, conn, eng); err != nil {
		return
	}

	done := make(chan struct{})
	commandCh := make(chan wsCommand, 16)

	go func() {
		defer close(done)
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var cmd wsCommand
			if err := json.Unmarshal(data, &cmd); err != nil {
				continue
			}
			select {
			case commandCh <- cmd:
			default:
			}
		}
	}()

	ticker := time.NewTicker(statePushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(ws.StatusNormalClosure, "context cancelled")
			return
		case <-done:
			conn.Close(ws.StatusNormalClosure, "client disconnected")
			return
		case <-ticker.C:
			eng.Tick(ctx)
			if err := a.sendState(ctx, conn, eng); err != nil {
				conn.Close(ws.StatusInternalError, "send failed")
				return
			}
		case cmd := <-commandCh:
			if err := a.handleWSCommand(ctx, eng, cmd); err != nil {
				a.sendError(ctx, conn, cmd.Action, err.Error())
				continue
			}
			_ = a.sendState(ctx, conn, eng)
		}
	}
}

func (a *API) sendState(ctx context.Context, conn *ws.Conn, eng *engine.Engine) error {
	data, err := json.Marshal(eng.State())
	if err != nil {
		return err
	}
	msg := wsMessage{Type: "state", Timestamp: time.Now(), Data: data}
	bytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, ws.MessageText, bytes)
}

func (a *API) sendError(ctx context.Context, conn *ws.Conn, action, errMsg string) {
	data, _ := json.Marshal(map[string]string{"action": action, "message": errMsg})
	msg := wsMessage{Type: "error", Timestamp: time.Now(), Data: data}
	bytes, _ := json.Marshal(msg)
	_ = conn.Write(ctx, ws.MessageText, bytes)
}
