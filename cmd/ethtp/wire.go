package main

import (
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vitos/eth_take_profit/internal/config"
	"github.com/vitos/eth_take_profit/internal/domain"
	"github.com/vitos/eth_take_profit/internal/infrastructure/pricefeed"
	"github.com/vitos/eth_take_profit/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// newProviders builds one breaker-guarded source per configured provider, in order.
func newProviders(cfg *config.Config) []domain.PriceSource {
	breaker := pricefeed.BreakerSettings{
		ConsecutiveFailures: cfg.PriceFeed.Breaker.ConsecutiveFailures,
		OpenTimeout:         time.Duration(cfg.PriceFeed.Breaker.OpenTimeoutSeconds) * time.Second,
	}

	var sources []domain.PriceSource
	for _, p := range cfg.PriceFeed.Providers {
		var src domain.PriceSource
		switch p.Name {
		case "coingecko":
			src = pricefeed.NewCoinGeckoSource(p.BaseURL, p.APIKey, cfg.Timeout(), cfg.PriceFeed.RateLimitPerMin)
		case "coincap":
			src = pricefeed.NewCoinCapSource(p.BaseURL, p.APIKey, cfg.Timeout())
		case "bybit":
			src = pricefeed.NewBybitSource(p.BaseURL, cfg.Timeout())
		case "bybit-ws":
			src = pricefeed.NewBybitTickerSource(p.BaseURL, cfg.Timeout())
		default:
			continue
		}
		sources = append(sources, pricefeed.NewBreakerSource(src, breaker))
	}
	return sources
}

// newPriceCache opens the configured cache backend. The returned closer is never nil.
func newPriceCache(cfg *config.Config) (domain.PriceCache, io.Closer, error) {
	ttl := cfg.CacheTTL()
	switch cfg.Cache.Backend {
	case "sqlite":
		c, err := storage.NewSQLitePriceCache(cfg.Cache.SQLitePath, ttl)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init sqlite cache: %w", err)
		}
		return c, c, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPass,
			DB:       cfg.Cache.RedisDB,
		})
		return storage.NewRedisPriceCache(client, ttl), client, nil
	}
	return storage.NewMemoryPriceCache(ttl), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newPriceSource assembles cache -> fallback -> breaker -> provider.
func newPriceSource(cfg *config.Config, log *zap.Logger, reg prometheus.Registerer) (*pricefeed.CachedSource, io.Closer, error) {
	cache, closer, err := newPriceCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	metrics := pricefeed.NewMetrics(reg)
	fallback := pricefeed.NewFallbackSource(log, metrics, newProviders(cfg)...)
	return pricefeed.NewCachedSource(fallback, cache, metrics, log), closer, nil
}
