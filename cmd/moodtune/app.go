package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/auth"
	"github.com/justestif/moodtune/internal/cache"
	"github.com/justestif/moodtune/internal/config"
	"github.com/justestif/moodtune/internal/db"
	"github.com/justestif/moodtune/internal/emotion"
	"github.com/justestif/moodtune/internal/metrics"
	"github.com/justestif/moodtune/internal/recommend"
	"github.com/justestif/moodtune/internal/retry"
	"github.com/justestif/moodtune/internal/search"
	"github.com/justestif/moodtune/internal/spotify"
)

// app is the wired pipeline shared by the subcommands.
type app struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	classifier  *emotion.Classifier
	finder      *search.Orchestrator
	recommender *recommend.Recommender

	store db.Store
	cache *cache.Catalog // nil when CACHE_DSN is empty
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	a := &app{
		logger:   logger,
		registry: reg,
		classifier: emotion.NewClassifier(emotion.DefaultLexicon(), emotion.WithObserver(func(s emotion.Score) {
			m.Classification(s.Label.String())
		})),
	}

	authOpts := []auth.Option{
		auth.WithLeeway(cfg.TokenExpiryLeeway),
		auth.WithLogger(logger.Named("auth")),
		auth.WithMetrics(m),
	}
	if cfg.TokenCachePath != "" {
		authOpts = append(authOpts, auth.WithTokenCache(auth.NewTokenCache(cfg.TokenCachePath)))
	}
	tokens := auth.New(cfg.SpotifyID, cfg.SpotifySecret, cfg.SpotifyTokenURL, authOpts...)

	client := spotify.New(tokens,
		spotify.WithBaseURL(cfg.SpotifyAPIURL),
		spotify.WithMarket(cfg.Market),
		spotify.WithLogger(logger.Named("spotify")),
		spotify.WithMetrics(m),
	)

	var catalog search.Catalog = client
	if cfg.CacheDSN != "" {
		store, err := db.Open(ctx, cfg.CacheDSN)
		if err != nil {
			return nil, fmt.Errorf("opening search cache: %w", err)
		}
		a.store = store
		a.cache = cache.New(client, store,
			cache.WithTTL(cfg.CacheTTL),
			cache.WithNamespace(strings.ToUpper(cfg.Market)),
			cache.WithLogger(logger.Named("cache")),
			cache.WithMetrics(m),
		)
		catalog = a.cache
	}

	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.RetryMaxAttempts
	policy.Backoff = retry.Linear(cfg.RetryBaseDelay)

	a.finder = search.New(catalog, tokens,
		search.WithRetryPolicy(policy),
		search.WithThreshold(cfg.MinTracks, cfg.MaxTracks),
		search.WithSearchLimit(cfg.SearchLimit),
		search.WithPlaylistLimit(cfg.PlaylistSearchLimit),
		search.WithLogger(logger.Named("search")),
		search.WithMetrics(m),
	)
	a.recommender = recommend.New(client,
		recommend.WithRetryPolicy(policy),
		recommend.WithMinPopularity(cfg.RecommendMinPopularity),
		recommend.WithLogger(logger.Named("recommend")),
		recommend.WithMetrics(m),
	)

	return a, nil
}

// pruneCache drops expired cache rows. Failures are logged only.
func (a *app) pruneCache(ctx context.Context) {
	if a.cache == nil {
		return
	}
	n, err := a.cache.Prune(ctx)
	if err != nil {
		a.logger.Warn("pruning search cache", zap.Error(err))
		return
	}
	a.logger.Info("pruned search cache", zap.Int64("removed", n))
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing search cache", zap.Error(err))
		}
	}
}
