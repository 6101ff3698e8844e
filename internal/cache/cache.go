// Package cache holds computed responses that are expensive to rebuild, keyed by string.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is an in-process TTL cache. It satisfies the same contract as RedisCache so a
// single process can run without Redis.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	val []byte
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().Before(e.exp) {
		return e.val, true, nil
	}

	c.mu.Lock()
	// a Set may have landed between the two locks
	if cur, ok := c.m[key]; ok && !time.Now().Before(cur.exp) {
		delete(c.m, key)
	}
	c.mu.Unlock()

	return nil, false, nil
}

// Set stores a copy of val so callers may reuse their buffer.
func (c *Cache) Set(_ context.Context, key string, val []byte) error {
	stored := append([]byte(nil), val...)

	c.mu.Lock()
	c.m[key] = entry{val: stored, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}
