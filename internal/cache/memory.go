package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process Cache backed by go-cache.
type MemoryCache[V any] struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache. A ttl of 0 on Set uses defaultTTL.
func NewMemoryCache[V any](defaultTTL, cleanupInterval time.Duration) *MemoryCache[V] {
	return &MemoryCache[V]{cache: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache[V]) Get(key string) (V, bool) {
	if val, found := c.cache.Get(key); found {
		if v, ok := val.(V); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func (c *MemoryCache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
}

func (c *MemoryCache[V]) Delete(key string) { c.cache.Delete(key) }

func (c *MemoryCache[V]) Clear() { c.cache.Flush() }

func (c *MemoryCache[V]) Len() int { return c.cache.ItemCount() }
