package pricefeed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/eth_take_profit/internal/domain"
	"github.com/vitos/eth_take_profit/internal/infrastructure/pricefeed"
	"github.com/vitos/eth_take_profit/internal/infrastructure/storage"
)

type stubSource struct {
	name  string
	price float64
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) GetCurrentPrice(ctx context.Context, asset string) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, &domain.FetchError{Source: s.name, Asset: asset, Err: s.err}
	}
	return s.price, nil
}

func TestFallbackSource_FirstSuccessWins(t *testing.T) {
	down := &stubSource{name: "coingecko", err: errors.New("connection refused")}
	up := &stubSource{name: "coincap", price: 3100}
	unused := &stubSource{name: "bybit", price: 9999}

	metrics := pricefeed.NewMetrics(prometheus.NewRegistry())
	fb := pricefeed.NewFallbackSource(nil, metrics, down, up, unused)

	price, source, err := fb.GetQuote(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 3100.0, price)
	assert.Equal(t, "coincap", source)
	assert.Equal(t, 0, unused.calls)
	assert.Equal(t, "coingecko>coincap>bybit", fb.Name())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Fetches.WithLabelValues("coingecko", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Fetches.WithLabelValues("coincap", "ok")))
}

func TestFallbackSource_AllFail(t *testing.T) {
	fb := pricefeed.NewFallbackSource(nil, nil,
		&stubSource{name: "a", err: errors.New("boom")},
		&stubSource{name: "b", err: errors.New("bang")},
	)

	price, err := fb.GetCurrentPrice(context.Background(), "ethereum")
	assert.Zero(t, price)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "bang")

	_, err = pricefeed.NewFallbackSource(nil, nil).GetCurrentPrice(context.Background(), "ethereum")
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestBreakerSource_OpensAfterConsecutiveFailures(t *testing.T) {
	src := &stubSource{name: "coingecko", err: errors.New("503")}
	br := pricefeed.NewBreakerSource(src, pricefeed.BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := br.GetCurrentPrice(context.Background(), "ethereum")
		assert.ErrorIs(t, err, domain.ErrFetch)
	}
	assert.Equal(t, "open", br.State())

	_, err := br.GetCurrentPrice(context.Background(), "ethereum")
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, src.calls, "open breaker must not reach the source")
}

func TestBreakerSource_PassesPriceThrough(t *testing.T) {
	br := pricefeed.NewBreakerSource(&stubSource{name: "coincap", price: 2999.99}, pricefeed.BreakerSettings{})
	price, err := br.GetCurrentPrice(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 2999.99, price)
	assert.Equal(t, "closed", br.State())
}

func TestCachedSource_ServesFreshQuote(t *testing.T) {
	src := &stubSource{name: "coingecko", price: 3500}
	metrics := pricefeed.NewMetrics(prometheus.NewRegistry())
	cached := pricefeed.NewCachedSource(src, storage.NewMemoryPriceCache(time.Minute), metrics, nil)

	q1, err := cached.Quote(context.Background(), "ethereum")
	require.NoError(t, err)
	q2, err := cached.Quote(context.Background(), "ethereum")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, q1, q2)
	assert.Equal(t, "coingecko", q2.Source)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Cache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Cache.WithLabelValues("hit")))
}

func TestCachedSource_FailedFetchIsNotCached(t *testing.T) {
	src := &stubSource{name: "coingecko", err: errors.New("timeout")}
	cache := storage.NewMemoryPriceCache(time.Minute)
	cached := pricefeed.NewCachedSource(src, cache, nil, nil)

	price, err := cached.GetCurrentPrice(context.Background(), "ethereum")
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.Zero(t, price)

	_, ok, _ := cache.Get(context.Background(), "ethereum", time.Now())
	assert.False(t, ok)
}

func TestCachedSource_UsesFallbackProvenance(t *testing.T) {
	fb := pricefeed.NewFallbackSource(nil, nil,
		&stubSource{name: "coingecko", err: errors.New("429")},
		&stubSource{name: "bybit", price: 3600},
	)
	cached := pricefeed.NewCachedSource(fb, storage.NewMemoryPriceCache(time.Minute), nil, nil)

	q, err := cached.Quote(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, "bybit", q.Source)
	assert.Equal(t, 3600.0, q.Price)
}

type failingCache struct {
	puts int
}

func (c *failingCache) Get(ctx context.Context, asset string, now time.Time) (domain.PriceQuote, bool, error) {
	return domain.PriceQuote{}, false, errors.New("redis: connection refused")
}

func (c *failingCache) Put(ctx context.Context, quote domain.PriceQuote) error {
	c.puts++
	return nil
}

func TestCachedSource_CacheReadErrorIsAMiss(t *testing.T) {
	src := &stubSource{name: "coincap", price: 3333.33}
	cache := &failingCache{}
	metrics := pricefeed.NewMetrics(prometheus.NewRegistry())
	cached := pricefeed.NewCachedSource(src, cache, metrics, nil)

	q, err := cached.Quote(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 3333.33, q.Price)
	assert.Equal(t, "coincap", q.Source)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, cache.puts)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Cache.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Cache.WithLabelValues("miss")))
}

type quotingSource struct {
	stubSource
	provider string
}

func (s *quotingSource) GetQuote(ctx context.Context, asset string) (float64, string, error) {
	price, err := s.GetCurrentPrice(ctx, asset)
	return price, s.provider, err
}

func TestCachedSource_KeepsProvenanceOfAnyQuoteSource(t *testing.T) {
	src := &quotingSource{stubSource: stubSource{name: "pool", price: 3700}, provider: "bybit-ws"}
	cached := pricefeed.NewCachedSource(src, storage.NewMemoryPriceCache(time.Minute), nil, nil)

	q, err := cached.Quote(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, "bybit-ws", q.Source)
	assert.Equal(t, 3700.0, q.Price)
}
