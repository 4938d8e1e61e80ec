// Package config loads moodtune settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// DefaultAPIURL is the Spotify Web API base URL.
const DefaultAPIURL = "https://api.spotify.com/v1/"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime settings. Spotify credentials are optional here;
// their absence is reported when a token is first needed.
type Config struct {
	SpotifyID       string `envconfig:"SPOTIFY_ID"`
	SpotifySecret   string `envconfig:"SPOTIFY_SECRET"`
	SpotifyTokenURL string `envconfig:"SPOTIFY_TOKEN_URL"`
	SpotifyAPIURL   string `envconfig:"SPOTIFY_API_URL"`
	Market          string `envconfig:"SPOTIFY_MARKET" default:"US"`

	Addr string `envconfig:"ADDR" default:"127.0.0.1:8080"`

	MinTracks           int           `envconfig:"SEARCH_MIN_TRACKS" default:"5"`
	MaxTracks           int           `envconfig:"SEARCH_MAX_TRACKS" default:"10"`
	SearchLimit         int           `envconfig:"SEARCH_LIMIT" default:"50"`
	PlaylistSearchLimit int           `envconfig:"PLAYLIST_SEARCH_LIMIT" default:"5"`
	SearchTimeout       time.Duration `envconfig:"SEARCH_TIMEOUT" default:"30s"`

	RetryMaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"5"`
	RetryBaseDelay   time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`

	RecommendMinPopularity int `envconfig:"RECOMMEND_MIN_POPULARITY" default:"50"`

	TokenExpiryLeeway time.Duration `envconfig:"TOKEN_EXPIRY_LEEWAY" default:"10s"`
	TokenCachePath    string        `envconfig:"TOKEN_CACHE_PATH"`

	CacheDSN string        `envconfig:"CACHE_DSN"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"24h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads .env files (all optional, default ".env"), then the process
// environment, fills URL defaults and validates the result.
func Load(dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if cfg.SpotifyTokenURL == "" {
		cfg.SpotifyTokenURL = spotifyauth.TokenURL
	}
	if cfg.SpotifyAPIURL == "" {
		cfg.SpotifyAPIURL = DefaultAPIURL
	}
	if !strings.HasSuffix(cfg.SpotifyAPIURL, "/") {
		cfg.SpotifyAPIURL += "/"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks numeric ranges.
func (c *Config) Validate() error {
	var problems []string

	if c.MinTracks < 1 {
		problems = append(problems, "SEARCH_MIN_TRACKS must be at least 1")
	}
	if c.MaxTracks < c.MinTracks {
		problems = append(problems, "SEARCH_MAX_TRACKS must not be below SEARCH_MIN_TRACKS")
	}
	if c.SearchLimit < 1 || c.SearchLimit > 50 {
		problems = append(problems, "SEARCH_LIMIT must be within 1..50")
	}
	if c.PlaylistSearchLimit < 1 || c.PlaylistSearchLimit > 50 {
		problems = append(problems, "PLAYLIST_SEARCH_LIMIT must be within 1..50")
	}
	if c.SearchTimeout <= 0 {
		problems = append(problems, "SEARCH_TIMEOUT must be positive")
	}
	if c.RetryMaxAttempts < 1 {
		problems = append(problems, "RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.RetryBaseDelay < 0 {
		problems = append(problems, "RETRY_BASE_DELAY must not be negative")
	}
	if c.RecommendMinPopularity < 0 || c.RecommendMinPopularity > 100 {
		problems = append(problems, "RECOMMEND_MIN_POPULARITY must be within 0..100")
	}
	if c.TokenExpiryLeeway < 0 {
		problems = append(problems, "TOKEN_EXPIRY_LEEWAY must not be negative")
	}
	if c.CacheTTL <= 0 {
		problems = append(problems, "CACHE_TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// HasCredentials reports whether both Spotify credentials are set.
func (c *Config) HasCredentials() bool {
	return c.SpotifyID != "" && c.SpotifySecret != ""
}
