// Package db persists catalog search results in PostgreSQL or SQLite.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedDSN is returned by Open for a DSN with an unknown scheme.
	ErrUnsupportedDSN = errors.New("unsupported cache DSN")
)

// Store is a search result cache backend.
type Store interface {
	// GetSearchResult returns the entry stored under key, or ErrNotFound.
	GetSearchResult(ctx context.Context, key string) (*CacheEntry, error)
	// PutSearchResult inserts or replaces an entry.
	PutSearchResult(ctx context.Context, entry CacheEntry) error
	// DeleteExpired removes entries fetched before cutoff and reports how
	// many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

// Open connects to the backend named by dsn:
//
//	postgres://... or postgresql://...  PostgreSQL via pgx
//	sqlite:<path>                       SQLite file at path
//	file:<path>?<params>                SQLite URI filename
//
// The search_cache table is created if it does not exist.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgres(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite:"):
		return NewSQLite(ctx, strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "file:"):
		return NewSQLite(ctx, dsn)
	default:
		scheme, _, _ := strings.Cut(dsn, ":")
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedDSN, scheme)
	}
}
