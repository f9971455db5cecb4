package tier

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "orgcore:tier:tenant:"

// RedisCache implements Cache on a Redis client. Serialization failures and
// Redis errors are logged and treated as cache misses.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed tier cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a cached tier for a tenant.
func (c *RedisCache) Get(ctx context.Context, tenantID string) (*PriceTier, bool) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+tenantID).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.WarnContext(ctx, "tier cache read failed", "tenant_id", tenantID, "error", err.Error())
		}
		return nil, false
	}

	var t PriceTier
	if err := json.Unmarshal(data, &t); err != nil {
		slog.WarnContext(ctx, "tier cache entry corrupt, dropping", "tenant_id", tenantID, "error", err.Error())
		c.Invalidate(ctx, tenantID)
		return nil, false
	}

	return &t, true
}

// Set stores a tier for a tenant with the given TTL.
func (c *RedisCache) Set(ctx context.Context, tenantID string, t *PriceTier, ttl time.Duration) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+tenantID, data, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "tier cache write failed", "tenant_id", tenantID, "error", err.Error())
	}
}

// Invalidate removes a tenant's cached tier.
func (c *RedisCache) Invalidate(ctx context.Context, tenantID string) {
	if err := c.client.Del(ctx, cacheKeyPrefix+tenantID).Err(); err != nil {
		slog.WarnContext(ctx, "tier cache invalidation failed", "tenant_id", tenantID, "error", err.Error())
	}
}
