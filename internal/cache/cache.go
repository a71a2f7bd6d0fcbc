package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a TTL map with sliding expiry: every hit pushes the entry's
// expiry out by ttl again.
type Cache[V any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry[V]
	now func() time.Time
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache[V]{
		ttl: ttl,
		m:   make(map[string]entry[V]),
		now: time.Now,
	}
}

// GetOrCreate returns the live value for key, storing create() when there is
// none. created reports which happened.
func (c *Cache[V]) GetOrCreate(key string, create func() V) (val V, created bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if ok && !now.After(e.exp) {
		e.exp = now.Add(c.ttl)
		c.m[key] = e
		return e.val, false
	}

	v := create()
	c.m[key] = entry[V]{val: v, exp: now.Add(c.ttl)}
	return v, true
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet swept.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.m)
}

// Sweep drops expired entries and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done. onSweep, if set,
// gets the number removed and the number left after each pass.
func (c *Cache[V]) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed, remaining int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := c.Sweep()
			if onSweep != nil {
				onSweep(removed, c.Len())
			}
		}
	}
}
