package exchange

import (
	"sync"
	"time"
)

type cacheEntry struct {
	rate      float64
	fetchedAt time.Time
}

// Cache is an in-memory, process-wide store of exchange rates keyed by
// currency pair. Entries are advisory and short-lived, so concurrent
// writers to the same key may race with last-write-wins semantics.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewCache creates a cache whose entries stay fresh for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached rate for the pair if its age is under the ttl.
func (c *Cache) Get(base, target string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pairKey(base, target)]
	if !ok {
		return 0, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return 0, false
	}
	return entry.rate, true
}

// Put stores a freshly fetched rate, resetting the entry's age.
func (c *Cache) Put(base, target string, rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[pairKey(base, target)] = cacheEntry{rate: rate, fetchedAt: c.now()}
}

func pairKey(base, target string) string {
	return base + ":" + target
}
