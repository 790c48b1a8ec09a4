package cache

import (
	"sync"
	"time"
)

// entry wraps a cached vector with expiry and insertion order tracking.
type entry struct {
	vector    []float32
	expiry    time.Time
	insertIdx int64
}

// EmbeddingCache caches embedding vectors to avoid re-embedding unchanged
// documents. Keys are "model:contentHash".
// Thread-safe with sync.RWMutex.
type EmbeddingCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
}

// New creates a new EmbeddingCache with the given TTL and max entry count.
func New(ttl time.Duration, maxEntries int) *EmbeddingCache {
	return &EmbeddingCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// MakeKey builds a cache key from a model reference and a content hash.
func MakeKey(model, contentHash string) string {
	return model + ":" + contentHash
}

// Get returns a cached vector if found and not expired.
func (c *EmbeddingCache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && time.Now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.vector, true
}

// Set stores a vector in the cache. Evicts the oldest entry if at capacity.
func (c *EmbeddingCache) Set(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		vector:    vector,
		expiry:    time.Now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	// If key already exists, update in place (no capacity change)
	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	// Evict oldest if at capacity
	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *EmbeddingCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
