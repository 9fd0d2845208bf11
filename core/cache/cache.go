package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Config holds configuration for in-process read caches.
type Config struct {
	// TTLSeconds is how long a loaded value stays fresh. Zero disables caching.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"60"`
}

// TTL returns the configured lifetime as a duration.
func (c Config) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// LoadFunc produces the value for a key on a cache miss.
type LoadFunc[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	value T
	built time.Time
}

// Cache is a keyed TTL cache. Concurrent misses for the same key share one load.
type Cache[T any] struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]entry[T]
	sf      singleflight.Group
}

// New creates a cache whose entries expire after ttl.
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
}

func (c *Cache[T]) expired(e entry[T]) bool {
	if c.ttl <= 0 {
		return true // No caching
	}
	return c.now().Sub(e.built) > c.ttl
}

func (c *Cache[T]) lookup(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.expired(e) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// GetOrLoad returns the cached value for key, calling load when it is missing or stale.
// Errors are not cached.
func (c *Cache[T]) GetOrLoad(ctx context.Context, key string, load LoadFunc[T]) (T, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do(key, func() (any, error) {
		// Another caller may have filled the entry while we waited.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry[T]{value: v, built: c.now()}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Invalidate drops the entry for key.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}
