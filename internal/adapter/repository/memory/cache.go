// Package memory provides the in-process result cache backend.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache implements resultcache.Backend with a mutex-guarded map. Expired
// entries are purged lazily on access and by a periodic sweep.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is replaceable in tests
	now func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCache creates a Cache and starts its sweep loop.
func NewCache(sweepInterval time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if sweepInterval > 0 {
		go c.sweep(sweepInterval)
	}
	return c
}

// Get returns the value for key, or nil when absent or expired. An expired
// entry is removed on the way out.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// recheck: the entry may have been replaced since the read lock
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, nil
	}

	return e.value, nil
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Delete removes the given keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// DeletePrefix removes every key starting with prefix.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
	return nil
}

// Close stops the sweep loop.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
