package resolve

import (
	"sync"
	"time"

	"revlens/internal/hosting"
)

// Cache is the TTL store for resolved change requests, keyed by
// providerID:commitID. The provider prefix is mandatory: the same commit
// hash can legitimately exist in two hosted projects (mirrors), and the
// providers must never share a slot. A stored nil is a valid answer
// ("this commit has no change request") and is distinct from a miss.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	value     *hosting.ChangeRequest
	expiresAt time.Time
}

// NewCache creates a cache with the given TTL. A TTL of zero or below
// disables caching entirely: Set becomes a no-op and Get always misses.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(providerID, commitID string) string {
	return providerID + ":" + commitID
}

// Get returns the cached value for a (provider, commit) pair. The second
// return distinguishes a cached nil from a miss. Expired entries are
// evicted lazily on read.
func (c *Cache) Get(providerID, commitID string) (*hosting.ChangeRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(providerID, commitID)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores a resolution result, nil included, with expiry now+TTL.
func (c *Cache) Set(providerID, commitID string, value *hosting.ChangeRequest) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(providerID, commitID)] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Clear evicts every entry regardless of remaining TTL. Wired to the
// repository mutation signal: a checkout, fetch, pull or commit can change
// what any cached commit maps to, so the whole cache goes.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of live entries, expired ones included until
// their lazy eviction.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
