// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"container/list"
	"sync"
	"time"
)

// Default bounds for NewLRU when the caller passes zero.
const (
	DefaultLRUCapacity = 10000
	DefaultLRUTTL      = 5 * time.Minute
)

type lruEntry struct {
	key     string
	expires time.Time
}

// LRU is a bounded set of keys with TTL, used to drop redelivered messages.
// Get, Seen and eviction are O(1). Expired keys are removed lazily or by
// CleanupExpired. The least recently touched key is evicted at capacity.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration

	items map[string]*list.Element
	// Front is the most recently touched key.
	order *list.List

	hits      int64
	misses    int64
	evictions int64
}

// NewLRU creates an LRU holding at most capacity keys for ttl each.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = DefaultLRUCapacity
	}
	if ttl <= 0 {
		ttl = DefaultLRUTTL
	}
	return &LRU{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Seen records key and reports whether it was already present and unexpired.
// A hit refreshes the key's recency but not its expiry.
func (c *LRU) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if el, ok := c.items[key]; ok {
		if now.Before(el.Value.(*lruEntry).expires) {
			c.order.MoveToFront(el)
			c.hits++
			return true
		}
		c.removeLocked(el)
	}

	c.items[key] = c.order.PushFront(&lruEntry{key: key, expires: now.Add(c.ttl)})
	for len(c.items) > c.capacity {
		c.removeLocked(c.order.Back())
		c.evictions++
	}
	c.misses++
	return false
}

// Contains reports whether key is present and unexpired without touching it.
func (c *LRU) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	return ok && time.Now().Before(el.Value.(*lruEntry).expires)
}

// Remove forgets key. It reports whether the key was present.
func (c *LRU) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if ok {
		c.removeLocked(el)
	}
	return ok
}

// Len counts stored keys, including expired ones not yet removed.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes every key.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

// CleanupExpired removes every expired key and returns how many it removed.
func (c *LRU) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*lruEntry).expires) {
			c.removeLocked(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Stats returns hit, miss and capacity eviction counts and the current size.
func (c *LRU) Stats() (hits, misses, evictions int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions, len(c.items)
}

// removeLocked unlinks el. Caller holds c.mu.
func (c *LRU) removeLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*lruEntry).key)
}
