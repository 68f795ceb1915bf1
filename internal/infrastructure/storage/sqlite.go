package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/eth_take_profit/internal/domain"
)

// SQLitePriceCache keeps the last quote per asset in a local sqlite file so
// that short-lived CLI runs share the fetch TTL.
type SQLitePriceCache struct {
	db  *sql.DB
	ttl time.Duration
}

func NewSQLitePriceCache(dbPath string, ttl time.Duration) (*SQLitePriceCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if dbPath == ":memory:" {
		// every new connection would get its own empty in-memory database
		db.SetMaxOpenConns(1)
	}

	store := &SQLitePriceCache{db: db, ttl: ttl}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLitePriceCache) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS price_cache (
			asset TEXT PRIMARY KEY,
			price REAL NOT NULL,
			source TEXT NOT NULL,
			fetched_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLitePriceCache) Get(ctx context.Context, asset string, now time.Time) (domain.PriceQuote, bool, error) {
	query := `SELECT asset, price, source, fetched_at FROM price_cache WHERE asset = ?`
	row := s.db.QueryRowContext(ctx, query, strings.ToLower(asset))

	var q domain.PriceQuote
	err := row.Scan(&q.Asset, &q.Price, &q.Source, &q.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PriceQuote{}, false, nil
	}
	if err != nil {
		return domain.PriceQuote{}, false, err
	}
	if !fresh(q, now, s.ttl) {
		return domain.PriceQuote{}, false, nil
	}
	return q, true, nil
}

func (s *SQLitePriceCache) Put(ctx context.Context, quote domain.PriceQuote) error {
	query := `INSERT INTO price_cache (asset, price, source, fetched_at)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT(asset) DO UPDATE SET
			  price=excluded.price,
			  source=excluded.source,
			  fetched_at=excluded.fetched_at`
	_, err := s.db.ExecContext(ctx, query,
		strings.ToLower(quote.Asset), quote.Price, quote.Source, quote.FetchedAt.UTC())
	return err
}

func (s *SQLitePriceCache) Close() error {
	return s.db.Close()
}
