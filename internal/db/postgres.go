package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS search_cache (
		cache_key  TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS search_cache_fetched_at_idx ON search_cache (fetched_at);
`

// Postgres wraps a PostgreSQL connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a connection pool and ensures the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// GetSearchResult implements Store.
func (p *Postgres) GetSearchResult(ctx context.Context, key string) (*CacheEntry, error) {
	query := `
		SELECT payload, fetched_at
		FROM search_cache
		WHERE cache_key = $1
	`
	entry := CacheEntry{Key: key}
	err := p.pool.QueryRow(ctx, query, key).Scan(&entry.Payload, &entry.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying search cache: %w", err)
	}
	return &entry, nil
}

// PutSearchResult implements Store.
func (p *Postgres) PutSearchResult(ctx context.Context, entry CacheEntry) error {
	query := `
		INSERT INTO search_cache (cache_key, payload, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at
	`
	if _, err := p.pool.Exec(ctx, query, entry.Key, entry.Payload, entry.FetchedAt); err != nil {
		return fmt.Errorf("upserting search cache: %w", err)
	}
	return nil
}

// DeleteExpired implements Store.
func (p *Postgres) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM search_cache WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting expired cache entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
