/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package settings

import (
	"context"

	"github.com/friendsincode/audioengine/internal/cache"
)

// RedisKV adapts internal/cache.Cache's circuit-breaker-on-error settings
// methods to the KVStore interface. A disabled cache (Redis unreachable, or
// tripped after an error) reports every Get as a miss rather than failing
// the caller — the engine falls back to in-memory defaults.
type RedisKV struct {
	cache *cache.Cache
}

// NewRedisKV wraps a cache.Cache as a KVStore.
func NewRedisKV(c *cache.Cache) *RedisKV {
	return &RedisKV{cache: c}
}

// Put stores value under key.
func (r *RedisKV) Put(ctx context.Context, key string, value []byte) error {
	return r.cache.SetSetting(ctx, key, value)
}

// Get retrieves the value stored under key.
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found := r.cache.GetSetting(ctx, key)
	return value, found, nil
}
