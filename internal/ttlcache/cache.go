// Package ttlcache provides a bounded in-memory cache whose entries expire
// after a fixed TTL.
package ttlcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/mo"
)

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache stores values for ttl. Expired entries are never returned; they are
// evicted lazily on access or replaced by the next Set.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	items *lru.Cache[K, entry[V]]
	ttl   time.Duration
	now   Clock
}

// New creates a cache holding at most size entries.
func New[K comparable, V any](size int, ttl time.Duration, now Clock) (*Cache[K, V], error) {
	if size <= 0 {
		size = 1024
	}
	if now == nil {
		now = time.Now
	}
	items, err := lru.New[K, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{items: items, ttl: ttl, now: now}, nil
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) mo.Option[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items.Get(key)
	if !ok {
		return mo.None[V]()
	}
	if !c.now().Before(e.expiresAt) {
		c.items.Remove(key)
		return mo.None[V]()
	}
	return mo.Some(e.value)
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Add(key, entry[V]{value: value, expiresAt: c.now().Add(c.ttl)})
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Remove(key)
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}
