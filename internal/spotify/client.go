// Package spotify adapts the Spotify Web API to the music catalog types used
// by search and recommendations.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/apperr"
	"github.com/justestif/moodtune/internal/metrics"
	"github.com/justestif/moodtune/internal/music"
)

// DefaultMarket is the market applied to every catalog request.
const DefaultMarket = "US"

const defaultTimeout = 15 * time.Second

// Endpoint names used for logging and metrics.
const (
	EndpointSearchTracks    = "search_tracks"
	EndpointSearchPlaylists = "search_playlists"
	EndpointPlaylistTracks  = "playlist_tracks"
	EndpointRecommendations = "recommendations"
)

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client wraps the Spotify API client with the catalog operations moodtune
// needs.
type Client struct {
	api     *spotify.Client
	market  string
	logger  *zap.Logger
	metrics *metrics.Metrics

	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as a test server.
// The URL must end in a slash.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets the client whose transport carries the requests. Its
// transport is wrapped, never replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMarket sets the market code sent with every request.
func WithMarket(market string) Option {
	return func(c *Client) { c.market = market }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client that authenticates every request with a token from
// tokens.
func New(tokens TokenSource, opts ...Option) *Client {
	c := &Client{market: DefaultMarket}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	hc := &http.Client{Timeout: defaultTimeout}
	if c.httpClient != nil {
		*hc = *c.httpClient
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = &bearerTransport{tokens: tokens, base: base, logger: c.logger}

	var apiOpts []spotify.ClientOption
	if c.baseURL != "" {
		apiOpts = append(apiOpts, spotify.WithBaseURL(c.baseURL))
	}
	c.api = spotify.New(hc, apiOpts...)
	return c
}

// SearchTracks runs a track search.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]music.Track, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypeTrack,
		spotify.Limit(limit),
		spotify.Market(c.market),
	)
	c.metrics.CatalogRequest(EndpointSearchTracks, err)
	if err != nil {
		return nil, classify(ctx, "searching tracks", err)
	}
	if res.Tracks == nil {
		return nil, nil
	}

	tracks := make([]music.Track, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		tracks = append(tracks, convertFullTrack(t))
	}
	return tracks, nil
}

// SearchPlaylists runs a playlist search. Entries without an ID are dropped.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]music.Playlist, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypePlaylist,
		spotify.Limit(limit),
		spotify.Market(c.market),
	)
	c.metrics.CatalogRequest(EndpointSearchPlaylists, err)
	if err != nil {
		return nil, classify(ctx, "searching playlists", err)
	}
	if res.Playlists == nil {
		return nil, nil
	}

	playlists := make([]music.Playlist, 0, len(res.Playlists.Playlists))
	for _, p := range res.Playlists.Playlists {
		if p.ID == "" {
			continue
		}
		playlists = append(playlists, music.Playlist{ID: p.ID.String(), Name: p.Name})
	}
	return playlists, nil
}

// PlaylistTracks returns the tracks of a playlist. Episodes and removed
// tracks are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]music.Track, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID),
		spotify.Limit(limit),
		spotify.Market(c.market),
	)
	c.metrics.CatalogRequest(EndpointPlaylistTracks, err)
	if err != nil {
		return nil, classify(ctx, "fetching playlist tracks", err)
	}

	tracks := make([]music.Track, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track.Track == nil {
			continue
		}
		tracks = append(tracks, convertFullTrack(*item.Track.Track))
	}
	return tracks, nil
}

// Recommendations asks the catalog for tracks near the requested targets.
func (c *Client) Recommendations(ctx context.Context, req music.RecommendationRequest) ([]music.Track, error) {
	seeds := spotify.Seeds{Genres: req.SeedGenres}
	for _, id := range req.SeedTracks {
		seeds.Tracks = append(seeds.Tracks, spotify.ID(id))
	}

	attrs := spotify.NewTrackAttributes().
		TargetEnergy(req.TargetEnergy).
		TargetValence(req.TargetValence)
	if req.MinPopularity > 0 {
		attrs = attrs.MinPopularity(req.MinPopularity)
	}

	opts := []spotify.RequestOption{spotify.Market(c.market)}
	if req.Limit > 0 {
		opts = append(opts, spotify.Limit(req.Limit))
	}

	recs, err := c.api.GetRecommendations(ctx, seeds, attrs, opts...)
	c.metrics.CatalogRequest(EndpointRecommendations, err)
	if err != nil {
		return nil, classify(ctx, "fetching recommendations", err)
	}

	tracks := make([]music.Track, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		tracks = append(tracks, convertSimpleTrack(t))
	}
	return tracks, nil
}

// classify sorts a catalog failure into the error taxonomy. Configuration
// and authentication failures from the token source pass through untouched
// so callers can abort on them, as does the caller's own cancellation.
func classify(ctx context.Context, op string, err error) error {
	if apperr.IsFatal(err) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}

	if status, ok := apiStatus(err); ok {
		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			return &apperr.TransientNetworkError{Op: op, Status: status, Err: err}
		}
		return &APIError{Op: op, Status: status, Err: err}
	}

	// Transport failures, client timeouts included.
	var ne net.Error
	if errors.As(err, &ne) {
		return &apperr.TransientNetworkError{Op: op, Err: err}
	}
	return &APIError{Op: op, Err: err}
}

func apiStatus(err error) (int, bool) {
	var se spotify.Error
	if errors.As(err, &se) {
		return se.Status, true
	}
	var sp *spotify.Error
	if errors.As(err, &sp) && sp != nil {
		return sp.Status, true
	}
	return 0, false
}
