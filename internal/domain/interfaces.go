package domain

import (
	"context"
	"time"
)

// PriceSource returns the current market price of an asset in USD.
// Failures are reported as *FetchError. A source never returns a price <= 0 without an error.
type PriceSource interface {
	Name() string
	GetCurrentPrice(ctx context.Context, asset string) (float64, error)
}

// PriceQuote is a price snapshot as kept by a PriceCache.
type PriceQuote struct {
	Asset     string    `json:"asset"`
	Price     float64   `json:"price"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PriceCache stores the last quote per asset. Get reports ok=false when there
// is no entry or the entry is older than the cache TTL at now.
type PriceCache interface {
	Get(ctx context.Context, asset string, now time.Time) (PriceQuote, bool, error)
	Put(ctx context.Context, quote PriceQuote) error
}
