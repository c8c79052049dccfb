package shortlink

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"curtail/internal/logging"
)

type cacheEntry struct {
	link     Link
	cachedAt time.Time
}

// Cache is a read-through TTL cache for resolved links. A non-positive TTL
// disables it (all operations become no-ops).
type Cache struct {
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates a cache holding resolved links for the given TTL.
func NewCache(ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		ttl:     ttl,
		logger:  logging.NewComponentLogger(logger, "linkcache"),
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Lookup returns the cached link for a code if it is still fresh. Entries past
// their TTL or past the link's own expiry count as misses.
func (c *Cache) Lookup(code string) (Link, bool) {
	code = strings.TrimSpace(code)
	if code == "" || c.ttl <= 0 {
		return Link{}, false
	}

	c.mu.RLock()
	entry, found := c.entries[code]
	c.mu.RUnlock()
	if !found {
		return Link{}, false
	}

	now := c.now()
	if now.Sub(entry.cachedAt) > c.ttl || entry.link.Expired(now) {
		return Link{}, false
	}
	return entry.link, true
}

// Store caches a resolved link.
func (c *Cache) Store(link Link) {
	if link.Code == "" || c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[link.Code] = cacheEntry{link: link, cachedAt: c.now()}
	c.mu.Unlock()

	c.logger.Debug("cached link", slog.String("code", link.Code))
}

// Invalidate drops a code from the cache.
func (c *Cache) Invalidate(code string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	delete(c.entries, code)
	c.mu.Unlock()
}

// Purge removes entries that are stale or whose links have expired, returning
// how many were dropped.
func (c *Cache) Purge(now time.Time) int {
	if c.ttl <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for code, entry := range c.entries {
		if now.Sub(entry.cachedAt) > c.ttl || entry.link.Expired(now) {
			delete(c.entries, code)
			dropped++
		}
	}
	if dropped > 0 {
		c.logger.Debug("purged link cache", slog.Int("dropped", dropped))
	}
	return dropped
}

// Len returns the number of cached entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
