// Package cache persists catalog search results so repeated moods skip the
// network.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/db"
	"github.com/justestif/moodtune/internal/logging"
	"github.com/justestif/moodtune/internal/metrics"
	"github.com/justestif/moodtune/internal/music"
)

// DefaultTTL is the duration after which a cached result is considered stale.
const DefaultTTL = 24 * time.Hour

// Lookup results reported to metrics.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultStale = "stale"
	ResultError = "error"
)

// Upstream is the catalog being cached.
type Upstream interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]music.Track, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]music.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]music.Track, error)
}

// Catalog wraps an Upstream with a db.Store. Track searches and playlist
// item reads go through the store; playlist searches pass through.
type Catalog struct {
	next      Upstream
	store     db.Store
	ttl       time.Duration
	namespace string
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTTL sets how long an entry stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithNamespace prefixes every key, typically with the market, so results
// for different markets never mix.
func WithNamespace(ns string) Option {
	return func(c *Catalog) { c.namespace = ns }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// WithMetrics records hits and misses.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// New creates a Catalog.
func New(next Upstream, store db.Store, opts ...Option) *Catalog {
	c := &Catalog{
		next:  next,
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	return c
}

// SearchTracks returns cached results for query when fresh, otherwise asks
// the upstream and stores a non-empty answer.
func (c *Catalog) SearchTracks(ctx context.Context, query string, limit int) ([]music.Track, error) {
	key := c.key("search_tracks", limit, strings.ToLower(strings.TrimSpace(query)))
	return c.tracks(ctx, key, func() ([]music.Track, error) {
		return c.next.SearchTracks(ctx, query, limit)
	})
}

// SearchPlaylists passes through uncached.
func (c *Catalog) SearchPlaylists(ctx context.Context, query string, limit int) ([]music.Playlist, error) {
	return c.next.SearchPlaylists(ctx, query, limit)
}

// PlaylistTracks returns cached playlist items when fresh.
func (c *Catalog) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]music.Track, error) {
	key := c.key("playlist_tracks", limit, playlistID)
	return c.tracks(ctx, key, func() ([]music.Track, error) {
		return c.next.PlaylistTracks(ctx, playlistID, limit)
	})
}

// Prune removes entries older than the TTL.
func (c *Catalog) Prune(ctx context.Context) (int64, error) {
	n, err := c.store.DeleteExpired(ctx, c.now().Add(-c.ttl))
	if err != nil {
		return 0, fmt.Errorf("pruning search cache: %w", err)
	}
	return n, nil
}

func (c *Catalog) tracks(ctx context.Context, key string, fetch func() ([]music.Track, error)) ([]music.Track, error) {
	if cached, ok := c.lookup(ctx, key); ok {
		return cached, nil
	}

	tracks, err := fetch()
	if err != nil {
		return nil, err
	}
	if len(tracks) > 0 {
		c.persist(ctx, key, tracks)
	}
	return tracks, nil
}

func (c *Catalog) lookup(ctx context.Context, key string) ([]music.Track, bool) {
	entry, err := c.store.GetSearchResult(ctx, key)
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.metrics.CacheLookup(ResultMiss)
		return nil, false
	case err != nil:
		c.metrics.CacheLookup(ResultError)
		c.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	// Lazy invalidation: stale rows are overwritten on the next persist.
	if entry.FetchedAt.Before(c.now().Add(-c.ttl)) {
		c.metrics.CacheLookup(ResultStale)
		return nil, false
	}

	var tracks []music.Track
	if err := json.Unmarshal(entry.Payload, &tracks); err != nil {
		c.metrics.CacheLookup(ResultError)
		c.logger.Warn("cache entry undecodable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	c.metrics.CacheLookup(ResultHit)
	return tracks, true
}

func (c *Catalog) persist(ctx context.Context, key string, tracks []music.Track) {
	payload, err := json.Marshal(tracks)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	entry := db.CacheEntry{Key: key, Payload: payload, FetchedAt: c.now()}
	if err := c.store.PutSearchResult(ctx, entry); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Catalog) key(endpoint string, limit int, arg string) string {
	parts := []string{endpoint, strconv.Itoa(limit), arg}
	if c.namespace != "" {
		parts = append([]string{c.namespace}, parts...)
	}
	return strings.Join(parts, "|")
}
