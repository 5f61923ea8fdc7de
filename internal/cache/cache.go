/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for server status
// snapshots and hot dashboard queries.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/treasureakintoye/ambradio-dashboard/internal/icecast"
	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

// Default TTL values for different cache types
const (
	DefaultStatusTTL      = 30 * time.Second
	DefaultSummaryTTL     = 10 * time.Second
	DefaultStationListTTL = 5 * time.Minute
)

// Key prefixes for Redis cache
const (
	KeyStatus      = "ambradio:cache:icecast_status"
	KeySummary     = "ambradio:cache:stream_summary"
	KeyStationList = "ambradio:cache:stations"
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StatusTTL      time.Duration
	SummaryTTL     time.Duration
	StationListTTL time.Duration

	// If true, disable caching entirely after a Redis error.
	DisableOnError bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		StatusTTL:      DefaultStatusTTL,
		SummaryTTL:     DefaultSummaryTTL,
		StationListTTL: DefaultStationListTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback. A cache
// miss and an unavailable cache look the same to callers.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool
}

// New creates a new cache instance. An unreachable Redis yields a
// disabled cache, not an error.
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

// GetStatus retrieves the cached full server status snapshot.
func (c *Cache) GetStatus(ctx context.Context) (*icecast.Status, bool) {
	var status icecast.Status
	found, err := c.get(ctx, KeyStatus, &status)
	if err != nil || !found {
		return nil, false
	}
	return &status, true
}

// SetStatus stores the latest server status snapshot.
func (c *Cache) SetStatus(ctx context.Context, status *icecast.Status) {
	if err := c.set(ctx, KeyStatus, status, c.config.StatusTTL); err != nil {
		return
	}
	c.logger.Debug().Msg("cached server status")
}

// GetStreamSummary retrieves the cached public stream summary.
func (c *Cache) GetStreamSummary(ctx context.Context) (*icecast.StreamSummary, bool) {
	var summary icecast.StreamSummary
	found, err := c.get(ctx, KeySummary, &summary)
	if err != nil || !found {
		return nil, false
	}
	return &summary, true
}

// SetStreamSummary stores the public stream summary.
func (c *Cache) SetStreamSummary(ctx context.Context, summary *icecast.StreamSummary) {
	if err := c.set(ctx, KeySummary, summary, c.config.SummaryTTL); err != nil {
		return
	}
	c.logger.Debug().Msg("cached stream summary")
}

// GetStationList retrieves the cached list of stations.
func (c *Cache) GetStationList(ctx context.Context) ([]models.Station, bool) {
	var stations []models.Station
	found, err := c.get(ctx, KeyStationList, &stations)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Int("count", len(stations)).Msg("station list cache hit")
	return stations, true
}

// SetStationList stores the list of stations.
func (c *Cache) SetStationList(ctx context.Context, stations []models.Station) {
	if err := c.set(ctx, KeyStationList, stations, c.config.StationListTTL); err != nil {
		return
	}
}

// InvalidateStationList drops the cached station list after a write.
func (c *Cache) InvalidateStationList(ctx context.Context) {
	if err := c.delete(ctx, KeyStationList); err != nil {
		return
	}
	c.logger.Debug().Msg("invalidated station list cache")
}
