/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/friendsincode/audioengine/internal/engine"
	"github.com/friendsincode/audioengine/internal/queue"
)

// handleWSCommand dispatches a client command arriving over the
// push-update socket onto the same façade methods the REST handlers use.
// Effect parameter changes arrive as "effect:<op>" and reuse
// dispatchEffectOp from effects.go so the two transports share one source
// of truth for the Table 1 vocabulary.
func (a *API) handleWSCommand(ctx context.Context, eng *engine.Engine, cmd wsCommand) error {
	if op, found := strings.CutPrefix(cmd.Action, "effect:"); found {
		return dispatchEffectOp(ctx, eng.Effects(), op, cmd.Data)
	}

	switch cmd.Action {
	case "play":
		var song queue.Song
		if err := decodeInto(cmd.Data, &song); err != nil {
			return err
		}
		return eng.Play(ctx, &song)
	case "pause":
		eng.Pause()
		return nil
	case "resume":
		return eng.Resume(ctx)
	case "toggle_play_pause":
		return eng.TogglePlayPause(ctx)
	case "stop":
		eng.Stop()
		return nil
	case "seek":
		var body struct {
			Seconds float64 `json:"seconds"`
		}
		if err := decodeInto(cmd.Data, &body); err != nil {
			return err
		}
		return eng.Seek(time.Duration(body.Seconds * float64(time.Second)))
	case "next":
		return eng.Next(ctx)
	case "previous":
		return eng.Previous(ctx)
	case "skip":
		return eng.Skip(ctx)
	case "volume":
		var body struct {
			Volume float64 `json:"volume"`
		}
		if err := decodeInto(cmd.Data, &body); err != nil {
			return err
		}
		eng.SetVolume(body.Volume)
		return nil
	case "mute":
		eng.ToggleMute()
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd.Action)
	}
}
