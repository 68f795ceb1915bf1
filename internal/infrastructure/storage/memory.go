package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vitos/eth_take_profit/internal/domain"
)

// fresh reports whether q is still within ttl at now. ttl <= 0 disables caching.
func fresh(q domain.PriceQuote, now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	age := now.Sub(q.FetchedAt)
	return age >= 0 && age < ttl
}

type MemoryPriceCache struct {
	mu     sync.RWMutex
	quotes map[string]domain.PriceQuote
	ttl    time.Duration
}

func NewMemoryPriceCache(ttl time.Duration) *MemoryPriceCache {
	return &MemoryPriceCache{
		quotes: make(map[string]domain.PriceQuote),
		ttl:    ttl,
	}
}

func (c *MemoryPriceCache) Get(_ context.Context, asset string, now time.Time) (domain.PriceQuote, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[strings.ToLower(asset)]
	if !ok || !fresh(q, now, c.ttl) {
		return domain.PriceQuote{}, false, nil
	}
	return q, true, nil
}

func (c *MemoryPriceCache) Put(_ context.Context, quote domain.PriceQuote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[strings.ToLower(quote.Asset)] = quote
	return nil
}
