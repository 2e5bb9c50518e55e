// Package cache provides AnalysisCache implementations
package cache

import (
	"context"
	"sync"

	"causalgate/ports"
)

// DefaultMaxEntries bounds a MemoryCache when no size is given
const DefaultMaxEntries = 4096

// MemoryCache is a bounded in-process cache. When full it evicts the oldest
// inserted key.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string][]byte
	order      []string
	maxEntries int
}

var _ ports.AnalysisCache = (*MemoryCache)(nil)

// NewMemoryCache creates a cache holding at most maxEntries values
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{entries: make(map[string][]byte), maxEntries: maxEntries}
}

// Get returns a copy of the cached value
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Set stores a copy of value
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		for len(c.order) >= c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = append([]byte(nil), value...)
}

// Evict removes key if present
func (c *MemoryCache) Evict(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of cached entries
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
