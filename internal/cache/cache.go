// Package cache provides the bounded-staleness snapshot cache. Keys are
// the query window parameters; values are whole snapshots. Staleness is
// bounded by the TTL and by explicit invalidation on manual refresh —
// never by merging old and new results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/data-ashita/monitor-dash/internal/models"
)

// SnapshotCache stores computed snapshots keyed by window size.
type SnapshotCache interface {
	// Get returns the cached snapshot for a window, with ok=false on miss.
	Get(ctx context.Context, days int) (*models.Snapshot, bool, error)

	// Set stores a snapshot under the window key for the configured TTL.
	Set(ctx context.Context, days int, snap *models.Snapshot) error

	// Invalidate drops the cached snapshot for a window.
	Invalidate(ctx context.Context, days int) error
}

// RedisCache implements SnapshotCache on Redis with JSON values.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a Redis client with the given snapshot TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func snapshotKey(days int) string {
	return fmt.Sprintf("snapshot:%d", days)
}

// Get returns the cached snapshot for a window, with ok=false on miss.
func (c *RedisCache) Get(ctx context.Context, days int) (*models.Snapshot, bool, error) {
	data, err := c.client.Get(ctx, snapshotKey(days)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, true, nil
}

// Set stores a snapshot under the window key for the configured TTL.
func (c *RedisCache) Set(ctx context.Context, days int, snap *models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(days), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a window.
func (c *RedisCache) Invalidate(ctx context.Context, days int) error {
	if err := c.client.Del(ctx, snapshotKey(days)).Err(); err != nil {
		return fmt.Errorf("invalidate snapshot: %w", err)
	}
	return nil
}

// Noop is used when caching is disabled; every lookup misses.
type Noop struct{}

// Get always misses.
func (Noop) Get(ctx context.Context, days int) (*models.Snapshot, bool, error) {
	return nil, false, nil
}

// Set discards the snapshot.
func (Noop) Set(ctx context.Context, days int, snap *models.Snapshot) error { return nil }

// Invalidate does nothing.
func (Noop) Invalidate(ctx context.Context, days int) error { return nil }
