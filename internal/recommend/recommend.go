// Package recommend asks the catalog for tracks similar to earlier results,
// tuned to the energy and valence of a mood.
package recommend

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/apperr"
	"github.com/justestif/moodtune/internal/emotion"
	"github.com/justestif/moodtune/internal/metrics"
	"github.com/justestif/moodtune/internal/music"
	"github.com/justestif/moodtune/internal/retry"
)

const (
	// DefaultMinPopularity filters out obscure tracks.
	DefaultMinPopularity = 50
	// DefaultMaxTracks caps the returned list.
	DefaultMaxTracks = 10

	requestLimit   = 20
	maxSeedTracks  = 2
	seededGenres   = 3
	genreOnlyCount = 5
)

// DefaultGenres is the ordered seed genre list. Seeded requests use the
// first three, genre-only requests the first five.
var DefaultGenres = []string{
	"pop", "rock", "hip-hop", "electronic", "classical", "jazz", "ambient", "indie",
	"dance", "alternative", "metal", "punk", "soul", "r-n-b", "blues", "chill",
}

// Catalog is the recommendation endpoint.
type Catalog interface {
	Recommendations(ctx context.Context, req music.RecommendationRequest) ([]music.Track, error)
}

// Recommender produces playable recommendations. It is stateless per call.
type Recommender struct {
	catalog       Catalog
	policy        retry.Policy
	minPopularity int
	maxTracks     int
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithRetryPolicy sets the policy applied to each catalog call.
func WithRetryPolicy(p retry.Policy) Option {
	return func(r *Recommender) { r.policy = p }
}

// WithMinPopularity sets the popularity floor of both requests.
func WithMinPopularity(n int) Option {
	return func(r *Recommender) { r.minPopularity = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recommender) { r.metrics = m }
}

// New creates a Recommender.
func New(catalog Catalog, opts ...Option) *Recommender {
	r := &Recommender{
		catalog:       catalog,
		policy:        retry.DefaultPolicy(),
		minPopularity: DefaultMinPopularity,
		maxTracks:     DefaultMaxTracks,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.policy = r.policy.WithObserver(func(op string, attempt int, _ time.Duration, err error) {
		r.metrics.Retry(op)
		r.logger.Warn("retrying catalog call",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.policy.MaxAttempts),
			zap.Error(err))
	})
	return r
}

// Recommend returns up to ten playable tracks for label. The first request
// is seeded with up to two of seedIDs plus three genres; if it fails or
// yields nothing, a genre-only request with the same targets and popularity
// floor follows. When both come up empty the result is a
// *apperr.RecommendationError wrapping the last failure.
func (r *Recommender) Recommend(ctx context.Context, seedIDs []string, label emotion.Label) ([]music.Track, error) {
	energy, valence := Targets(label)

	requests := []music.RecommendationRequest{
		{
			SeedTracks:    firstSeeds(seedIDs, maxSeedTracks),
			SeedGenres:    slices.Clone(DefaultGenres[:seededGenres]),
			TargetEnergy:  energy,
			TargetValence: valence,
			MinPopularity: r.minPopularity,
			Limit:         requestLimit,
		},
		{
			SeedGenres:    slices.Clone(DefaultGenres[:genreOnlyCount]),
			TargetEnergy:  energy,
			TargetValence: valence,
			MinPopularity: r.minPopularity,
			Limit:         requestLimit,
		},
	}

	log := r.logger.With(zap.Stringer("emotion", label))

	var lastErr error
	for i, req := range requests {
		tracks, err := retry.Value(ctx, r.policy, "recommendations", func(ctx context.Context) ([]music.Track, error) {
			return r.catalog.Recommendations(ctx, req)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if apperr.IsFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			log.Warn("recommendation strategy failed", zap.Int("strategy", i+1), zap.Error(err))
			lastErr = err
			continue
		}

		seen := make(map[string]struct{})
		kept := music.Dedup(nil, seen, playable(tracks), r.maxTracks)
		if len(kept) > 0 {
			log.Info("recommendations found", zap.Int("strategy", i+1), zap.Int("tracks", len(kept)))
			return kept, nil
		}
		log.Info("recommendation strategy yielded nothing", zap.Int("strategy", i+1))
	}

	return nil, &apperr.RecommendationError{Emotion: string(label), Err: lastErr}
}

func firstSeeds(ids []string, n int) []string {
	seeds := make([]string, 0, n)
	for _, id := range ids {
		if len(seeds) == n {
			break
		}
		if id != "" {
			seeds = append(seeds, id)
		}
	}
	return seeds
}

func playable(tracks []music.Track) []music.Track {
	out := make([]music.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.Playable() {
			out = append(out, t)
		}
	}
	return out
}
