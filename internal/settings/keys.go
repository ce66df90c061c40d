/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package settings persists device-local audio settings, shuffle history,
// and the temp-queue snapshot through a narrow key-value and structured
// store contract, mirroring the distinction the engine draws between "small
// settings blobs" (fast KV path) and "the temp-queue snapshot" (larger,
// structured).
package settings

// Persisted settings keys, exactly as named in the source player store.
const (
	KeyLocal             = "music-player-local"
	KeyEQ                = "music-player-eq"
	KeyAudioFX           = "music-player-audio-fx"
	KeyShuffleHistory    = "music-player-shuffle-history"
	KeyLowLatencyAlways  = "music-low-latency-always"
	KeyParametricEQActive = "music-player-parametric-eq-active"
)
