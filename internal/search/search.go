// Package search finds playable tracks for an emotion label by walking a
// chain of increasingly generic catalog queries.
package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/apperr"
	"github.com/justestif/moodtune/internal/emotion"
	"github.com/justestif/moodtune/internal/metrics"
	"github.com/justestif/moodtune/internal/music"
	"github.com/justestif/moodtune/internal/planner"
	"github.com/justestif/moodtune/internal/retry"
)

const (
	// DefaultMinTracks is the accumulator size at which a tier stops early.
	DefaultMinTracks = 5
	// DefaultMaxTracks caps the returned list.
	DefaultMaxTracks = 10
	// DefaultSearchLimit is the page size of each track search.
	DefaultSearchLimit = 50
	// DefaultPlaylistLimit is the page size of each playlist search.
	DefaultPlaylistLimit = 5
	// DefaultPlaylistTrackLimit is how many tracks are read from a playlist.
	DefaultPlaylistTrackLimit = 50
)

// Catalog is the subset of the music catalog the orchestrator queries.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]music.Track, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]music.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]music.Track, error)
}

// TokenSource yields the catalog bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TermPlanner supplies the search terms for each tier.
type TermPlanner interface {
	Plan(label emotion.Label) []string
	Broad(label emotion.Label) []string
}

// Orchestrator runs the tiered search. It keeps no per-call state and is
// safe for concurrent use.
type Orchestrator struct {
	catalog Catalog
	tokens  TokenSource
	planner TermPlanner
	policy  retry.Policy

	minTracks          int
	maxTracks          int
	searchLimit        int
	playlistLimit      int
	playlistTrackLimit int

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPlanner replaces the built-in term planner.
func WithPlanner(p TermPlanner) Option {
	return func(o *Orchestrator) { o.planner = p }
}

// WithRetryPolicy sets the policy applied to each catalog call.
func WithRetryPolicy(p retry.Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithThreshold sets the early-stop size and the result cap.
func WithThreshold(minTracks, maxTracks int) Option {
	return func(o *Orchestrator) {
		o.minTracks = minTracks
		o.maxTracks = maxTracks
	}
}

// WithSearchLimit sets the page size of track searches.
func WithSearchLimit(n int) Option {
	return func(o *Orchestrator) { o.searchLimit = n }
}

// WithPlaylistLimit sets how many playlists each playlist search returns.
func WithPlaylistLimit(n int) Option {
	return func(o *Orchestrator) { o.playlistLimit = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an Orchestrator over catalog. tokens is consulted once per
// search, before any catalog call, so configuration problems surface first.
func New(catalog Catalog, tokens TokenSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:            catalog,
		tokens:             tokens,
		planner:            planner.New(),
		policy:             retry.DefaultPolicy(),
		minTracks:          DefaultMinTracks,
		maxTracks:          DefaultMaxTracks,
		searchLimit:        DefaultSearchLimit,
		playlistLimit:      DefaultPlaylistLimit,
		playlistTrackLimit: DefaultPlaylistTrackLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.maxTracks < o.minTracks {
		o.maxTracks = o.minTracks
	}
	o.policy = o.policy.WithObserver(o.observeRetry)
	return o
}

// FindTracksForEmotion returns up to the configured maximum of distinct
// tracks for label. It fails with a *apperr.NotFoundError when every tier
// comes up empty. Configuration, authentication and context errors abort
// the search and are returned as is.
func (o *Orchestrator) FindTracksForEmotion(ctx context.Context, label emotion.Label) ([]music.Track, error) {
	if _, err := o.tokens.Token(ctx); err != nil {
		return nil, err
	}

	log := o.logger.With(zap.Stringer("emotion", label))

	for tier := DirectSearch; tier != Exhausted; tier = next(tier) {
		start := time.Now()
		tracks, err := o.run(ctx, tier, label)
		if err != nil {
			o.metrics.SearchTier(tier.String(), metrics.OutcomeError)
			return nil, err
		}
		if len(tracks) > 0 {
			o.metrics.SearchTier(tier.String(), metrics.OutcomeSuccess)
			log.Info("search satisfied",
				zap.Stringer("tier", tier),
				zap.Int("tracks", len(tracks)),
				zap.Duration("elapsed", time.Since(start)))
			return tracks, nil
		}
		o.metrics.SearchTier(tier.String(), metrics.OutcomeEmpty)
		log.Info("tier yielded no tracks, falling back",
			zap.Stringer("tier", tier),
			zap.Stringer("next", next(tier)))
	}

	return nil, &apperr.NotFoundError{Emotion: string(label)}
}

func (o *Orchestrator) run(ctx context.Context, tier Tier, label emotion.Label) ([]music.Track, error) {
	switch tier {
	case DirectSearch:
		return o.accumulate(ctx, o.planner.Plan(label), func(t music.Track) bool {
			return t.HasMetadata() && t.HasAlbumImage()
		})
	case PlaylistSearch:
		return o.fromPlaylists(ctx, o.planner.Broad(label))
	case BroadFallback:
		return o.accumulate(ctx, o.planner.Broad(label), music.Track.HasMetadata)
	default:
		return nil, nil
	}
}

// accumulate searches terms in order, collecting distinct tracks that pass
// keep. It stops as soon as the minimum is reached; otherwise whatever was
// collected is returned once the terms run out.
func (o *Orchestrator) accumulate(ctx context.Context, terms []string, keep func(music.Track) bool) ([]music.Track, error) {
	seen := make(map[string]struct{})
	var acc []music.Track

	for _, term := range terms {
		tracks, err := retry.Value(ctx, o.policy, "search_tracks", func(ctx context.Context) ([]music.Track, error) {
			return o.catalog.SearchTracks(ctx, term, o.searchLimit)
		})
		if err != nil {
			if abortErr := o.abort(ctx, err); abortErr != nil {
				return nil, abortErr
			}
			o.logger.Warn("search term failed, skipping", zap.String("term", term), zap.Error(err))
			continue
		}

		acc = music.Dedup(acc, seen, filter(tracks, keep), o.maxTracks)
		if len(acc) >= o.minTracks {
			return acc, nil
		}
	}
	return acc, nil
}

// fromPlaylists returns the previewable tracks of the first playlist that
// has any.
func (o *Orchestrator) fromPlaylists(ctx context.Context, terms []string) ([]music.Track, error) {
	for _, term := range terms {
		playlists, err := retry.Value(ctx, o.policy, "search_playlists", func(ctx context.Context) ([]music.Playlist, error) {
			return o.catalog.SearchPlaylists(ctx, term, o.playlistLimit)
		})
		if err != nil {
			if abortErr := o.abort(ctx, err); abortErr != nil {
				return nil, abortErr
			}
			o.logger.Warn("playlist search failed, skipping", zap.String("term", term), zap.Error(err))
			continue
		}

		for _, p := range playlists {
			tracks, err := retry.Value(ctx, o.policy, "playlist_tracks", func(ctx context.Context) ([]music.Track, error) {
				return o.catalog.PlaylistTracks(ctx, p.ID, o.playlistTrackLimit)
			})
			if err != nil {
				if abortErr := o.abort(ctx, err); abortErr != nil {
					return nil, abortErr
				}
				o.logger.Warn("playlist fetch failed, skipping",
					zap.String("playlist_id", p.ID), zap.Error(err))
				continue
			}

			kept := music.Dedup(nil, make(map[string]struct{}), filter(tracks, music.Track.Playable), o.maxTracks)
			if len(kept) > 0 {
				o.logger.Debug("using playlist", zap.String("playlist", p.Name), zap.String("term", term))
				return kept, nil
			}
		}
	}
	return nil, nil
}

// abort returns the error that must end the whole search, or nil when the
// failure only costs the current term.
func (o *Orchestrator) abort(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if apperr.IsFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func (o *Orchestrator) observeRetry(op string, attempt int, delay time.Duration, err error) {
	o.metrics.Retry(op)
	o.logger.Warn("retrying catalog call",
		zap.String("op", op),
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", o.policy.MaxAttempts),
		zap.Duration("backoff", delay),
		zap.Error(err))
}

func filter(tracks []music.Track, keep func(music.Track) bool) []music.Track {
	out := make([]music.Track, 0, len(tracks))
	for _, t := range tracks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
