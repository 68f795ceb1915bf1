package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vitos/eth_take_profit/internal/domain"
)

const redisKeyPrefix = "ethtp:price:"

// RedisPriceCache shares quotes between several server instances.
type RedisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPriceCache(client *redis.Client, ttl time.Duration) *RedisPriceCache {
	return &RedisPriceCache{client: client, ttl: ttl}
}

func redisKey(asset string) string {
	return redisKeyPrefix + strings.ToLower(asset)
}

func (c *RedisPriceCache) Get(ctx context.Context, asset string, now time.Time) (domain.PriceQuote, bool, error) {
	val, err := c.client.Get(ctx, redisKey(asset)).Result()
	if err == redis.Nil {
		return domain.PriceQuote{}, false, nil
	}
	if err != nil {
		return domain.PriceQuote{}, false, fmt.Errorf("redis get: %w", err)
	}

	var q domain.PriceQuote
	if err := json.Unmarshal([]byte(val), &q); err != nil {
		return domain.PriceQuote{}, false, fmt.Errorf("decode cached quote: %w", err)
	}
	// Key expiry is coarse (seconds); check the age against our own clock too.
	if !fresh(q, now, c.ttl) {
		return domain.PriceQuote{}, false, nil
	}
	return q, true, nil
}

func (c *RedisPriceCache) Put(ctx context.Context, quote domain.PriceQuote) error {
	if c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, redisKey(quote.Asset), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
