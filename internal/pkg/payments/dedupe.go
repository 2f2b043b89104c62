package payments

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenCacheKeyPrefix = "payments:event:"

// SeenCache is a short-lived cache of processed event ids in front of the
// durable ledger. It only short-circuits the duplicate check for hot
// retries; the ledger stays the source of truth, so cache errors are
// treated as a miss.
type SeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenCache wraps a redis client as a seen-event cache.
func NewSeenCache(client *redis.Client, ttl time.Duration) *SeenCache {
	return &SeenCache{client: client, ttl: ttl}
}

// Seen reports whether the event id was recently recorded as processed.
func (c *SeenCache) Seen(ctx context.Context, eventID string) bool {
	if c == nil || c.client == nil {
		return false
	}
	n, err := c.client.Exists(ctx, seenCacheKeyPrefix+eventID).Result()
	return err == nil && n > 0
}

// Remember records the event id, best effort.
func (c *SeenCache) Remember(ctx context.Context, eventID string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, seenCacheKeyPrefix+eventID, 1, c.ttl).Err()
}
