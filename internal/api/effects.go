/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/audioengine/internal/effects"
	"github.com/friendsincode/audioengine/internal/graph"
)

// mountEffectsRoutes wires spec §6's Effects operation group as a single
// generic dispatch endpoint, the same shape the teacher's WebDJ console
// uses for its mixer commands (action + opaque data payload) — Table 1's
// ~35 setters would otherwise be 35 near-identical handlers.
func (a *API) mountEffectsRoutes(r chi.Router) {
	r.Post("/effects/{op}", a.handleEffectOp)
}

func (a *API) handleEffectOp(w http.ResponseWriter, r *http.Request) {
	eng, ok := a.session(w, r)
	if !ok {
		return
	}
	op := chi.URLParam(r, "op")
	var raw json.RawMessage
	if err := decodeBody(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := dispatchEffectOp(r.Context(), eng.Effects(), op, raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eng.Effects().State())
}

func decodeInto(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// dispatchEffectOp maps a wire-level effect operation name onto the
// effects.Controller's setX vocabulary (Table 1, verbatim).
func dispatchEffectOp(ctx context.Context, c *effects.Controller, op string, raw json.RawMessage) error {
	switch op {
	case "replayGainMode":
		var body struct {
			Mode string `json:"mode"`
		}
		if err := decodeInto(raw, &body); err != nil {
			return err
		}
		return c.SetReplayGainMode(ctx, effects.ReplayGainMode(body.Mode))
	case "replayGainPreamp":
		return withFloat(raw, func(v float64) error { return c.SetReplayGainPreamp(ctx, v) })
	case "replayGainFallback":
		return withFloat(raw, func(v float64) error { return c.SetReplayGainFallback(ctx, v) })
	case "eqBand":
		var body struct {
			Index int     `json:"index"`
			Gain  float64 `json:"gain"`
		}
		if err := decodeInto(raw, &body); err != nil {
			return err
		}
		return c.SetEQBand(ctx, body.Index, body.Gain)
	case "eqEnabled":
		return withBool(raw, func(v bool) error { return c.SetEQEnabled(ctx, v) })
	case "graphicPreamp":
		return withFloat(raw, func(v float64) error { return c.SetGraphicPreamp(ctx, v) })
	case "resetEQ":
		return c.ResetEQ(ctx)
	case "restoreGraphicEQ":
		var body struct {
			Gains [10]float64 `json:"gains"`
		}
		if err := decodeInto(raw, &body); err != nil {
			return err
		}
		return c.RestoreGraphicEQ(ctx, body.Gains)
	case "parametricEQ":
		var body struct {
			Bands   []graph.ParametricBand `json:"bands"`
			Preamp  *float64               `json:"preamp,omitempty"`
		}
		if err := decodeInto(raw, &body); err != nil {
			return err
		}
		return c.SetParametricEQ(ctx, body.Bands, body.Preamp)
	case "crossfeedEnabled":
		return withBool(raw, func(v bool) error { return c.SetCrossfeedEnabled(ctx, v) })
	case "crossfeedLevel":
		return withFloat(raw, func(v float64) error { return c.SetCrossfeedLevel(ctx, v) })
	case "crossfeedDelayMs":
		return withFloat(raw, func(v float64) error { return c.SetCrossfeedDelayMs(ctx, v) })
	case "crossfeedShadowHz":
		return withFloat(raw, func(v float64) error { return c.SetCrossfeedShadowHz(ctx, v) })
	case "crossfeedPreset":
		var body struct {
			Preset string `json:"preset"`
		}
		if err := decodeInto(raw, &body); err != nil {
			return err
		}
		return c.ApplyCrossfeedPreset(ctx, effects.CrossfeedPreset(body.Preset))
	case "loudnessEnabled":
		return withBool(raw, func(v bool) error { return c.SetLoudnessEnabled(ctx, v) })
	case "loudnessReferenceSPL":
		return withFloat(raw, func(v float64) error { return c.SetLoudnessReferenceSPL(ctx, v) })
	case "loudnessStrength":
		return withFloat(raw, func(v float64) error { return c.SetLoudnessStrength(ctx, v) })
	case "gaplessEnabled":
		return withBool(raw, func(v bool) error { return c.SetGaplessEnabled(ctx, v) })
	case "crossfadeEnabled":
		return withBool(raw, func(v bool) error { return c.SetCrossfadeEnabled(ctx, v) })
	case "crossfadeDuration":
		return withFloat(raw, func(v float64) error { return c.SetCrossfadeDuration(ctx, v) })
	case "tempoEnabled":
		return withBool(raw, func(v bool) error { return c.SetTempoEnabled(ctx, v) })
	case "tempoRate":
		return withFloat(raw, func(v float64) error { return c.SetTempoRate(ctx, v) })
	case "tempoPitchLock":
		return withBool(raw, func(v bool) error { return c.SetTempoPitchLock(ctx, v) })
	case "noiseEnabled":
		return withBool(raw, func(v bool) error { return c.SetNoiseEnabled(ctx, v) })
	case "noiseMode":
		var body struct {
			Mode string `json:"mode"`
		}
		if err := decodeInto(raw, &body); err != nil {
			return err
		}
		return c.SetNoiseMode(ctx, effects.NoiseMode(body.Mode))
	case "noiseTilt":
		return withFloat(raw, func(v float64) error { return c.SetNoiseTilt(ctx, v) })
	case "noisePower":
		return withFloat(raw, func(v float64) error { return c.SetNoisePower(ctx, v) })
	case "noiseThreshold":
		return withFloat(raw, func(v float64) error { return c.SetNoiseThreshold(ctx, v) })
	case "noiseAttack":
		return withFloat(raw, func(v float64) error { return c.SetNoiseAttack(ctx, v) })
	case "sleepTimerMode":
		var body struct {
			Mode string `json:"mode"`
		}
		if err := decodeInto(raw, &body); err != nil {
			return err
		}
		return c.SetSleepTimerMode(ctx, effects.SleepTimerMode(body.Mode))
	case "sleepTimerMinutes":
		return withInt(raw, func(v int) error { return c.SetSleepTimerMinutes(ctx, v) })
	case "sleepTimerTargetTime":
		var body struct {
			HHMM string `json:"targetTime"`
		}
		if err := decodeInto(raw, &body); err != nil {
			return err
		}
		return c.SetSleepTimerTargetTime(ctx, body.HHMM)
	case "sleepTimerMinimumMinutes":
		return withInt(raw, func(v int) error { return c.SetSleepTimerMinimumMinutes(ctx, v) })
	default:
		return fmt.Errorf("unknown effect operation %q", op)
	}
}

func withFloat(raw json.RawMessage, fn func(float64) error) error {
	var body struct {
		Value float64 `json:"value"`
	}
	if err := decodeInto(raw, &body); err != nil {
		return err
	}
	return fn(body.Value)
}

func withBool(raw json.RawMessage, fn func(bool) error) error {
	var body struct {
		Value bool `json:"value"`
	}
	if err := decodeInto(raw, &body); err != nil {
		return err
	}
	return fn(body.Value)
}

func withInt(raw json.RawMessage, fn func(int) error) error {
	var body struct {
		Value int `json:"value"`
	}
	if err := decodeInto(raw, &body); err != nil {
		return err
	}
	return fn(body.Value)
}
