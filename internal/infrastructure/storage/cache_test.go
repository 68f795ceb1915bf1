package storage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/eth_take_profit/internal/domain"
	"github.com/vitos/eth_take_profit/internal/infrastructure/storage"
)

var fetchedAt = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func sampleQuote() domain.PriceQuote {
	return domain.PriceQuote{Asset: "ethereum", Price: 3321.45, Source: "coingecko", FetchedAt: fetchedAt}
}

func exerciseCache(t *testing.T, cache domain.PriceCache) {
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "ethereum", fetchedAt)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, cache.Put(ctx, sampleQuote()))

	q, ok, err := cache.Get(ctx, "Ethereum", fetchedAt.Add(30*time.Second))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3321.45, q.Price)
	assert.Equal(t, "coingecko", q.Source)
	assert.True(t, q.FetchedAt.Equal(fetchedAt))

	_, ok, err = cache.Get(ctx, "ethereum", fetchedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok, "entry at ttl age is stale")

	_, ok, err = cache.Get(ctx, "bitcoin", fetchedAt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryPriceCache(t *testing.T) {
	exerciseCache(t, storage.NewMemoryPriceCache(time.Minute))
}

func TestMemoryPriceCache_ZeroTTLNeverHits(t *testing.T) {
	cache := storage.NewMemoryPriceCache(0)
	require.NoError(t, cache.Put(context.Background(), sampleQuote()))
	_, ok, err := cache.Get(context.Background(), "ethereum", fetchedAt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLitePriceCache(t *testing.T) {
	cache, err := storage.NewSQLitePriceCache(":memory:", time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	exerciseCache(t, cache)

	// Upsert replaces the previous quote.
	newer := sampleQuote()
	newer.Price = 3400
	newer.FetchedAt = fetchedAt.Add(2 * time.Minute)
	require.NoError(t, cache.Put(context.Background(), newer))

	q, ok, err := cache.Get(context.Background(), "ethereum", newer.FetchedAt.Add(time.Second))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3400.0, q.Price)
}

func TestRedisPriceCache_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := storage.NewRedisPriceCache(db, time.Minute)
	ctx := context.Background()

	t.Run("hit returns quote", func(t *testing.T) {
		data, _ := json.Marshal(sampleQuote())
		mock.ExpectGet("ethtp:price:ethereum").SetVal(string(data))

		q, ok, err := cache.Get(ctx, "ethereum", fetchedAt.Add(10*time.Second))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3321.45, q.Price)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss returns not found", func(t *testing.T) {
		mock.ExpectGet("ethtp:price:ethereum").RedisNil()

		_, ok, err := cache.Get(ctx, "ethereum", fetchedAt)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale value is a miss", func(t *testing.T) {
		data, _ := json.Marshal(sampleQuote())
		mock.ExpectGet("ethtp:price:ethereum").SetVal(string(data))

		_, ok, err := cache.Get(ctx, "ethereum", fetchedAt.Add(2*time.Minute))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error returns error", func(t *testing.T) {
		mock.ExpectGet("ethtp:price:ethereum").SetErr(redis.TxFailedErr)

		_, _, err := cache.Get(ctx, "ethereum", fetchedAt)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisPriceCache_Put(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := storage.NewRedisPriceCache(db, time.Minute)

	data, _ := json.Marshal(sampleQuote())
	mock.ExpectSet("ethtp:price:ethereum", string(data), time.Minute).SetVal("OK")

	require.NoError(t, cache.Put(context.Background(), sampleQuote()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
