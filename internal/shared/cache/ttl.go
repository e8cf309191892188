package cache

import (
	"sync"
	"time"
)

// TTL is a small in-process cache with per-entry expiry. Reads served from it
// may be stale up to the TTL chosen by the caller; mutating code paths call
// Purge to drop everything.
type TTL struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

type entry struct {
	value   any
	expires time.Time
}

// NewTTL constructs an empty cache; the now func is overridable for tests.
func NewTTL(now func() time.Time) *TTL {
	if now == nil {
		now = time.Now
	}
	return &TTL{
		items: make(map[string]entry),
		now:   now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTL) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.now().After(item.expires) {
		delete(c.items, key)
		return nil, false
	}
	return item.value, true
}

// Set stores value under key for the given ttl.
func (c *TTL) Set(key string, value any, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = entry{value: value, expires: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Purge drops all entries.
func (c *TTL) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[string]entry)
	c.mu.Unlock()
}
