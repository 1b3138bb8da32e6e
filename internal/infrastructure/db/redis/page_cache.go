package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageCachePrefix = "listing:"
	defaultPageTTL  = 20 * time.Second
	scanBatch       = 100
)

// PageCache stores rendered listing results as JSON in Redis.
// Key format: listing:<path>?page=<n>
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a PageCache wrapping the given Redis client. A
// non-positive ttl falls back to 20 seconds.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = defaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get decodes the entry for key into dest. found is false on a miss.
func (c *PageCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, pageCachePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("page cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("page cache decode: %w", err)
	}
	return true, nil
}

// Set stores value under key until the TTL expires.
func (c *PageCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("page cache encode: %w", err)
	}
	return c.client.Set(ctx, pageCachePrefix+key, raw, c.ttl).Err()
}

// Clear removes every cached listing.
func (c *PageCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, pageCachePrefix+"*", scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= scanBatch {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("page cache clear: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("page cache scan: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("page cache clear: %w", err)
		}
	}
	return nil
}
