package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryEntries bounds each TTL class of a [MemoryCache] created by
// the CLI and the server.
const DefaultMemoryEntries = 1024

// MemoryCache is an in-process cache. Entries are grouped by TTL into
// expirable LRUs, each holding at most limit entries and sweeping expired
// entries in the background, so keys that are never read again still get
// freed.
type MemoryCache struct {
	mu      sync.Mutex
	limit   int
	classes map[time.Duration]*expirable.LRU[string, []byte]
}

// NewMemoryCache creates a cache holding at most limit entries per TTL
// class. A limit of zero or less means unbounded.
func NewMemoryCache(limit int) *MemoryCache {
	return &MemoryCache{
		limit:   max(0, limit),
		classes: make(map[time.Duration]*expirable.LRU[string, []byte]),
	}
}

// Get returns a copy of the stored bytes.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, lru := range c.classes {
		if data, ok := lru.Get(key); ok {
			return append([]byte(nil), data...), true, nil
		}
	}
	return nil, false, nil
}

// Set stores a copy of data. Storing a key again with another TTL moves it
// to that TTL's class.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ttl = max(0, ttl)
	for d, lru := range c.classes {
		if d != ttl {
			lru.Remove(key)
		}
	}
	lru, ok := c.classes[ttl]
	if !ok {
		// A non-positive TTL makes the LRU keep entries until evicted by size.
		lru = expirable.NewLRU[string, []byte](c.limit, nil, ttl)
		c.classes[ttl] = lru
	}
	lru.Add(key, append([]byte(nil), data...))
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, lru := range c.classes {
		lru.Remove(key)
	}
	return nil
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, lru := range c.classes {
		n += lru.Len()
	}
	return n
}

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, lru := range c.classes {
		lru.Purge()
	}
	return nil
}

var _ Cache = (*MemoryCache)(nil)
