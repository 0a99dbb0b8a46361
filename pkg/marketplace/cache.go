package marketplace

import (
	"strings"
	"sync"
	"time"

	"github.com/sw33tLie/cardscope/pkg/card"
)

// searchCache is a small expiring cache of search results. Expiry is checked
// lazily at read time; there is no background sweep. The mutex matters
// because the CLI may fan out a filtered and an unfiltered search.
type searchCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	cards    []card.MarketplaceCard
	storedAt time.Time
}

func newSearchCache(ttl time.Duration) *searchCache {
	return &searchCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *searchCache) get(key string) ([]card.MarketplaceCard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.cards, true
}

func (c *searchCache) put(key string, cards []card.MarketplaceCard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{cards: cards, storedAt: c.now()}
}

func (c *searchCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func cacheKey(query, category string) string {
	if category == "" {
		category = "all"
	}
	return strings.ToLower(strings.TrimSpace(query)) + "-" + strings.ToLower(category)
}
