package suggest

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ============================================================================
// SUGGESTION CACHE — Fingerprint-keyed, bounded, optionally expiring
// ============================================================================

// Cache is a concurrency-safe LRU keyed by schema fingerprint (plus the
// selection key in combination mode). A zero ttl never expires entries.
type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewCache builds a cache holding at most size entries; size <= 0 is
// unbounded.
func NewCache[V any](size int, ttl time.Duration) *Cache[V] {
	if size < 0 {
		size = 0
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Put stores value under key, evicting the least recently used entry when full.
func (c *Cache[V]) Put(key string, value V) {
	c.lru.Add(key, value)
}

// Evict removes key and reports whether it was present.
func (c *Cache[V]) Evict(key string) bool {
	return c.lru.Remove(key)
}

// EvictPrefix removes every key starting with prefix and returns the count.
func (c *Cache[V]) EvictPrefix(prefix string) int {
	n := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) && c.lru.Remove(k) {
			n++
		}
	}
	return n
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.lru.Purge()
}

// Len is the number of live entries.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
