package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tedrenliv/habit-tracker/internal/progress"
)

// SnapshotCache memoizes computed progress snapshots.
// Keys carry a fingerprint of the inputs, so entries never go stale; the TTL only bounds memory.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a new snapshot cache
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *SnapshotCache) snapshotKey(userID, fingerprint string) string {
	return fmt.Sprintf("progress:snapshot:%s:%s", userID, fingerprint)
}

// Get returns the cached snapshot; ok is false on a miss
func (c *SnapshotCache) Get(ctx context.Context, userID, fingerprint string) (*progress.Snapshot, bool, error) {
	data, err := c.client.Get(ctx, c.snapshotKey(userID, fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap progress.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snap, true, nil
}

// Set stores a snapshot under the user's fingerprint
func (c *SnapshotCache) Set(ctx context.Context, userID, fingerprint string, snap *progress.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.snapshotKey(userID, fingerprint), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	return nil
}
