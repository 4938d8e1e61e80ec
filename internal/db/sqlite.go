package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS search_cache (
		cache_key  TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS search_cache_fetched_at_idx ON search_cache (fetched_at)`,
}

// SQLite stores the cache in a local database file. Timestamps are kept as
// Unix nanoseconds.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the database at path and ensures the schema
// exists.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	d.SetMaxOpenConns(1)

	if err := d.PingContext(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	for _, stmt := range sqliteSchema {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			d.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLite{db: d}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetSearchResult implements Store.
func (s *SQLite) GetSearchResult(ctx context.Context, key string) (*CacheEntry, error) {
	var (
		payload []byte
		fetched int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM search_cache WHERE cache_key = ?`, key,
	).Scan(&payload, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying search cache: %w", err)
	}
	return &CacheEntry{Key: key, Payload: payload, FetchedAt: time.Unix(0, fetched)}, nil
}

// PutSearchResult implements Store.
func (s *SQLite) PutSearchResult(ctx context.Context, entry CacheEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_cache (cache_key, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		entry.Key, entry.Payload, entry.FetchedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upserting search cache: %w", err)
	}
	return nil
}

// DeleteExpired implements Store.
func (s *SQLite) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_cache WHERE fetched_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("deleting expired cache entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted cache entries: %w", err)
	}
	return n, nil
}
