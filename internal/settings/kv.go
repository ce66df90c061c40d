/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package settings

import (
	"context"
	"encoding/json"
	"sync"
)

// KVStore is the narrow "put/get by key" contract spec §5.2 describes for
// all effect parameter blocks, shuffle history, and small settings blobs.
// Values are self-describing JSON; unknown fields are ignored on decode, so
// a caller that decodes into a newer struct shape than was stored still
// gets its known fields and falls back to zero values for the rest.
type KVStore interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// MemoryKV is an in-process KVStore, used by tests and as the default when
// no Redis is configured.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryKV creates an empty in-memory KV store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

// Put stores value under key.
func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.values[key] = cp
	return nil
}

// Get retrieves the value stored under key.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

// PutJSON marshals v and stores it under key.
func PutJSON(ctx context.Context, store KVStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, data)
}

// GetJSON retrieves the value under key and unmarshals it into dest.
// Reports false without error if the key has never been set — callers fall
// back to defaults, per the "unknown keys/values fall back to defaults"
// invariant.
func GetJSON(ctx context.Context, store KVStore, key string, dest any) (bool, error) {
	data, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, nil
	}
	return true, nil
}
