/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for frequently accessed
// settings keys and shuffle-history entries.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Default TTL values for different cache types.
const (
	DefaultSettingsTTL      = 1 * time.Hour
	DefaultShuffleEntryTTL  = 24 * time.Hour
	DefaultTempQueueTTL     = 12 * time.Hour
)

// Key prefixes for Redis cache.
const (
	KeySetting       = "audioengine:cache:setting:"        // + key
	KeyShuffleEntry  = "audioengine:cache:shuffle:"         // + session_id
	KeyTempQueueMeta = "audioengine:cache:tempqueue:meta:"  // + session_id
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SettingsTTL     time.Duration
	ShuffleEntryTTL time.Duration
	TempQueueTTL    time.Duration

	// DisableOnError trips the circuit breaker on the first Redis error;
	// afterwards reads report a miss and writes return nil without
	// reaching Redis.
	DisableOnError bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:       "localhost:6379",
		SettingsTTL:     DefaultSettingsTTL,
		ShuffleEntryTTL: DefaultShuffleEntryTTL,
		TempQueueTTL:    DefaultTempQueueTTL,
		DisableOnError:  true,
	}
}

// Cache provides Redis-backed caching with graceful fallback. settings.RedisKV
// adapts its settings methods to the settings package's KVStore interface.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}

	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

func (c *Cache) delete(ctx context.Context, key string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	if !c.IsAvailable() {
		return nil
	}

	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

// Settings KV methods. These implement the fast path of
// settings.KVStore: a raw byte value keyed by the settings key name.

// GetSetting retrieves a raw settings value by key.
func (c *Cache) GetSetting(ctx context.Context, key string) ([]byte, bool) {
	var raw json.RawMessage
	found, err := c.get(ctx, KeySetting+key, &raw)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("key", key).Msg("setting cache hit")
	return raw, true
}

// SetSetting caches a raw settings value by key.
func (c *Cache) SetSetting(ctx context.Context, key string, value []byte) error {
	c.logger.Debug().Str("key", key).Msg("caching setting")
	return c.set(ctx, KeySetting+key, json.RawMessage(value), c.config.SettingsTTL)
}

// InvalidateSetting removes a settings value from cache.
func (c *Cache) InvalidateSetting(ctx context.Context, key string) error {
	c.logger.Debug().Str("key", key).Msg("invalidating setting cache")
	return c.delete(ctx, KeySetting+key)
}

// Shuffle history caching methods.

// CachedShuffleHistory is a session's list of played song IDs, cached under
// the shuffle-entry key.
type CachedShuffleHistory struct {
	SessionID string `json:"session_id"`
	PlayedIDs []string `json:"played_ids"`
}

// GetShuffleHistory retrieves the cached shuffle history for a session.
func (c *Cache) GetShuffleHistory(ctx context.Context, sessionID string) (*CachedShuffleHistory, bool) {
	var history CachedShuffleHistory
	found, err := c.get(ctx, KeyShuffleEntry+sessionID, &history)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("session_id", sessionID).Int("count", len(history.PlayedIDs)).Msg("shuffle history cache hit")
	return &history, true
}

// SetShuffleHistory caches the shuffle history for a session.
func (c *Cache) SetShuffleHistory(ctx context.Context, history *CachedShuffleHistory) error {
	c.logger.Debug().Str("session_id", history.SessionID).Msg("caching shuffle history")
	return c.set(ctx, KeyShuffleEntry+history.SessionID, history, c.config.ShuffleEntryTTL)
}

// InvalidateShuffleHistory removes a session's shuffle history from cache.
func (c *Cache) InvalidateShuffleHistory(ctx context.Context, sessionID string) error {
	c.logger.Debug().Str("session_id", sessionID).Msg("invalidating shuffle history cache")
	return c.delete(ctx, KeyShuffleEntry+sessionID)
}

// InvalidateSession removes all cached data for a session (called on
// session close).
func (c *Cache) InvalidateSession(ctx context.Context, sessionID string) error {
	c.logger.Debug().Str("session_id", sessionID).Msg("invalidating all session caches")

	if err := c.InvalidateShuffleHistory(ctx, sessionID); err != nil {
		return err
	}
	if err := c.delete(ctx, KeyTempQueueMeta+sessionID); err != nil {
		return err
	}

	return nil
}

// FlushAll removes all cached data (use sparingly).
func (c *Cache) FlushAll(ctx context.Context) error {
	c.logger.Warn().Msg("flushing all cache data")
	return c.deletePattern(ctx, "audioengine:cache:*")
}
