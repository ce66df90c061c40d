/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package settings

import (
	"context"
	"strconv"
)

// Store combines the KV and structured backends into the single
// persistence facade the engine depends on (spec §4.5/§6 "key-value
// persistence" + "structured persistence"). Each session gets its own key
// namespace, since settings/history/temp-queue are all per-listener.
type Store struct {
	kv         KVStore
	structured StructuredStore
}

// New creates a settings Store.
func New(kv KVStore, structured StructuredStore) *Store {
	return &Store{kv: kv, structured: structured}
}

func sessionKey(sessionID, key string) string {
	return sessionID + ":" + key
}

// GetLocal retrieves the "music-player-local" settings, or zero-value
// defaults if never set.
func (s *Store) GetLocal(ctx context.Context, sessionID string) (LocalSettings, error) {
	var local LocalSettings
	if _, err := GetJSON(ctx, s.kv, sessionKey(sessionID, KeyLocal), &local); err != nil {
		return LocalSettings{}, err
	}
	return local, nil
}

// SetLocal persists the "music-player-local" settings.
func (s *Store) SetLocal(ctx context.Context, sessionID string, local LocalSettings) error {
	return PutJSON(ctx, s.kv, sessionKey(sessionID, KeyLocal), local)
}

// GetEQ retrieves the "music-player-eq" settings, or defaults (disabled, all
// gains 0) if never set.
func (s *Store) GetEQ(ctx context.Context, sessionID string) (EQSettings, error) {
	var eq EQSettings
	if _, err := GetJSON(ctx, s.kv, sessionKey(sessionID, KeyEQ), &eq); err != nil {
		return EQSettings{}, err
	}
	return eq, nil
}

// SetEQ persists the "music-player-eq" settings.
func (s *Store) SetEQ(ctx context.Context, sessionID string, eq EQSettings) error {
	return PutJSON(ctx, s.kv, sessionKey(sessionID, KeyEQ), eq)
}

// GetAudioFX retrieves the "music-player-audio-fx" settings.
func (s *Store) GetAudioFX(ctx context.Context, sessionID string) (AudioFXSettings, error) {
	var fx AudioFXSettings
	if _, err := GetJSON(ctx, s.kv, sessionKey(sessionID, KeyAudioFX), &fx); err != nil {
		return AudioFXSettings{}, err
	}
	return fx, nil
}

// SetAudioFX persists the "music-player-audio-fx" settings.
func (s *Store) SetAudioFX(ctx context.Context, sessionID string, fx AudioFXSettings) error {
	return PutJSON(ctx, s.kv, sessionKey(sessionID, KeyAudioFX), fx)
}

// GetShuffleHistory retrieves the "music-player-shuffle-history" list.
func (s *Store) GetShuffleHistory(ctx context.Context, sessionID string) (ShuffleHistory, error) {
	var history ShuffleHistory
	if _, err := GetJSON(ctx, s.kv, sessionKey(sessionID, KeyShuffleHistory), &history); err != nil {
		return ShuffleHistory{}, err
	}
	return history, nil
}

// SetShuffleHistory persists the "music-player-shuffle-history" list.
func (s *Store) SetShuffleHistory(ctx context.Context, sessionID string, history ShuffleHistory) error {
	return PutJSON(ctx, s.kv, sessionKey(sessionID, KeyShuffleHistory), history)
}

// ClearShuffleHistory resets shuffle history to empty, per spec §4.4 "On
// shuffle disable or queue clear, shuffle history is reset and cleared from
// storage."
func (s *Store) ClearShuffleHistory(ctx context.Context, sessionID string) error {
	return s.SetShuffleHistory(ctx, sessionID, ShuffleHistory{})
}

// GetLowLatencyAlways retrieves the "music-low-latency-always" flag.
func (s *Store) GetLowLatencyAlways(ctx context.Context, sessionID string) (bool, error) {
	data, ok, err := s.kv.Get(ctx, sessionKey(sessionID, KeyLowLatencyAlways))
	if err != nil || !ok {
		return false, err
	}
	return strconv.ParseBool(string(data))
}

// SetLowLatencyAlways persists the "music-low-latency-always" flag.
func (s *Store) SetLowLatencyAlways(ctx context.Context, sessionID string, always bool) error {
	return s.kv.Put(ctx, sessionKey(sessionID, KeyLowLatencyAlways), []byte(strconv.FormatBool(always)))
}

// GetParametricEQActive retrieves the optional parametric-EQ-active blob.
func (s *Store) GetParametricEQActive(ctx context.Context, sessionID string) (ParametricEQActive, bool, error) {
	var active ParametricEQActive
	found, err := GetJSON(ctx, s.kv, sessionKey(sessionID, KeyParametricEQActive), &active)
	return active, found, err
}

// SetParametricEQActive persists the optional parametric-EQ-active blob.
func (s *Store) SetParametricEQActive(ctx context.Context, sessionID string, active ParametricEQActive) error {
	return PutJSON(ctx, s.kv, sessionKey(sessionID, KeyParametricEQActive), active)
}

// SaveTempQueueState snapshots the prior queue into the structured store
// before the live queue is replaced by the temp overlay.
func (s *Store) SaveTempQueueState(ctx context.Context, sessionID string, snapshot TempQueueSnapshot) error {
	return s.structured.SaveTempQueue(ctx, sessionID, snapshot)
}

// GetTempQueueState retrieves the temp-queue snapshot, reporting false if
// none exists (temp-queue mode is not active).
func (s *Store) GetTempQueueState(ctx context.Context, sessionID string) (*TempQueueSnapshot, bool, error) {
	snapshot, err := s.structured.LoadTempQueue(ctx, sessionID)
	if err == ErrTempQueueNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return snapshot, true, nil
}

// ClearTempQueueState deletes the temp-queue snapshot after it has been
// restored, per spec §3 "On exit, the snapshot restores the prior state and
// is deleted."
func (s *Store) ClearTempQueueState(ctx context.Context, sessionID string) error {
	return s.structured.ClearTempQueue(ctx, sessionID)
}
