package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache is a read-through cache for product lookups. It is optional: a nil
// *Cache is a no-op, so the service works identically without Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client with the given entry TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(id string) string { return "product:" + id }

// Get returns the cached product, if any. Cache errors degrade to misses.
func (c *Cache) Get(ctx context.Context, id string) (*Product, bool) {
	if c == nil {
		return nil, false
	}
	value, err := c.client.Get(ctx, cacheKey(id)).Result()
	if err != nil {
		return nil, false
	}
	var p Product
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Set stores the product with the configured TTL.
func (c *Cache) Set(ctx context.Context, p *Product) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(p.ID.String()), payload, c.ttl)
}

// Invalidate drops a product from the cache after any stock or price
// mutation.
func (c *Cache) Invalidate(ctx context.Context, ids ...string) {
	if c == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}
	c.client.Del(ctx, keys...)
}
