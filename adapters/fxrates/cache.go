package fxrates

import (
	"context"
	"sync"
	"time"

	"goimpact/ports"
)

type cacheEntry struct {
	rate float64
	ok   bool
	err  error
}

// Cache memoises answers of the wrapped provider, misses included, for the life of the
// process. Errors are cached too so a dead pair is not retried per cost row.
type Cache struct {
	next    ports.RateProvider
	observe func(result string)

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache wraps next. observe, if non-nil, is called with "hit" or "fetched".
func NewCache(next ports.RateProvider, observe func(result string)) *Cache {
	return &Cache{next: next, observe: observe, entries: make(map[string]cacheEntry)}
}

func (c *Cache) Rate(ctx context.Context, pair ports.CurrencyPair, date time.Time) (float64, bool, error) {
	key := tableKey(pair, date)

	c.mu.Lock()
	e, found := c.entries[key]
	c.mu.Unlock()
	if found {
		c.record("hit")
		return e.rate, e.ok, e.err
	}

	rate, ok, err := c.next.Rate(ctx, pair, date)
	if ctx.Err() != nil {
		return rate, ok, err
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{rate: rate, ok: ok, err: err}
	c.mu.Unlock()
	c.record("fetched")
	return rate, ok, err
}

// Len is the number of cached keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) record(result string) {
	if c.observe != nil {
		c.observe(result)
	}
}
