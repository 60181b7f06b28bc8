// Package cache provides an in-process TTL cache. It is an explicit component:
// callers construct one instance and pass it by reference, and the TTL is a
// constructor parameter rather than ambient state.
package cache

import (
	"sync"
	"time"

	"github.com/moznion/go-optional"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL cache keyed by string. Concurrent population races are
// last-writer-wins; values must be pure functions of their key for that to be
// correct.
type Cache[V any] struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry[V]
	now     func() time.Time
}

// New creates a Cache whose entries expire ttl after being set.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Get returns the cached value for key, or None when the key is absent or its
// entry has expired. Expired entries are dropped on read.
func (c *Cache[V]) Get(key string) optional.Option[V] {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return optional.None[V]()
	}

	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, still := c.entries[key]; still && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		return optional.None[V]()
	}

	return optional.Some(e.value)
}

// Set stores value under key with the cache's configured TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Remove drops the entry for key if present.
func (c *Cache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Reset drops all entries.
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
}

// Len returns the number of stored entries, including ones that have expired
// but not yet been dropped.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
