package pricefeed

import (
	"context"
	"time"

	"github.com/vitos/eth_take_profit/internal/domain"
	"go.uber.org/zap"
)

// quoteGetter is a source that reports which provider served the price.
type quoteGetter interface {
	GetQuote(ctx context.Context, asset string) (float64, string, error)
}

// CachedSource serves quotes from a PriceCache while they are fresh and falls
// through to the wrapped source otherwise. Cache failures count as a miss.
type CachedSource struct {
	source  domain.PriceSource
	cache   domain.PriceCache
	metrics *Metrics
	logger  *zap.Logger
	timeNow func() time.Time
}

func NewCachedSource(source domain.PriceSource, cache domain.PriceCache, metrics *Metrics, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{
		source:  source,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		timeNow: time.Now,
	}
}

func (c *CachedSource) Name() string { return c.source.Name() }

// Quote returns a price snapshot with its provenance.
func (c *CachedSource) Quote(ctx context.Context, asset string) (domain.PriceQuote, error) {
	now := c.timeNow()

	q, ok, err := c.cache.Get(ctx, asset, now)
	switch {
	case err != nil:
		c.metrics.cache("error")
		c.logger.Warn("Price cache read failed", zap.String("asset", asset), zap.Error(err))
	case ok:
		c.metrics.cache("hit")
		return q, nil
	default:
		c.metrics.cache("miss")
	}

	price, source, err := c.fetch(ctx, asset)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	q = domain.PriceQuote{Asset: asset, Price: price, Source: source, FetchedAt: now}
	if err := c.cache.Put(ctx, q); err != nil {
		c.logger.Warn("Price cache write failed", zap.String("asset", asset), zap.Error(err))
	}
	return q, nil
}

func (c *CachedSource) fetch(ctx context.Context, asset string) (float64, string, error) {
	if f, ok := c.source.(quoteGetter); ok {
		return f.GetQuote(ctx, asset)
	}
	price, err := c.source.GetCurrentPrice(ctx, asset)
	c.metrics.fetch(c.source.Name(), err)
	return price, c.source.Name(), err
}

func (c *CachedSource) GetCurrentPrice(ctx context.Context, asset string) (float64, error) {
	q, err := c.Quote(ctx, asset)
	return q.Price, err
}
