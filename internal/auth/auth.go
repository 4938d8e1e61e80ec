// Package auth manages the client credentials bearer token used for catalog
// requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/justestif/moodtune/internal/apperr"
	"github.com/justestif/moodtune/internal/metrics"
)

const (
	// DefaultLeeway is how long before expiry a credential is refreshed.
	DefaultLeeway = 10 * time.Second

	// defaultLifetime applies when the token response carries no expires_in.
	defaultLifetime = time.Hour

	exchangeTimeout = 30 * time.Second
)

// ErrEmptyToken is returned, wrapped in an AuthError, when the token endpoint
// answers without an access token.
var ErrEmptyToken = errors.New("token endpoint returned an empty access token")

// Credential is a bearer token and the instant it stops being usable.
type Credential struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// validAt reports whether the credential can still be used at now, leeway
// included.
func (c *Credential) validAt(now time.Time, leeway time.Duration) bool {
	return c != nil && c.Token != "" && now.Add(leeway).Before(c.ExpiresAt)
}

// Exchanger performs one token exchange against the authorization server.
type Exchanger interface {
	Exchange(ctx context.Context) (*oauth2.Token, error)
}

// clientCredentials exchanges with client id and secret in a Basic header.
type clientCredentials struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
}

func (c *clientCredentials) Exchange(ctx context.Context) (*oauth2.Token, error) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	return c.cfg.Token(ctx)
}

// CredentialManager owns the process-wide catalog credential. Reads are
// concurrent; refreshes are single-flighted so concurrent callers share one
// exchange.
type CredentialManager struct {
	clientID     string
	clientSecret string
	exchanger    Exchanger
	httpClient   *http.Client

	leeway  time.Duration
	now     func() time.Time
	cache   *TokenCache
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu         sync.RWMutex
	cred       *Credential
	diskLoaded bool

	group singleflight.Group
}

// Option configures a CredentialManager.
type Option func(*CredentialManager)

// WithLeeway sets how early a credential is refreshed before it expires.
func WithLeeway(d time.Duration) Option {
	return func(m *CredentialManager) { m.leeway = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *CredentialManager) { m.now = now }
}

// WithExchanger replaces the client credentials exchange.
func WithExchanger(e Exchanger) Option {
	return func(m *CredentialManager) { m.exchanger = e }
}

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(m *CredentialManager) { m.httpClient = c }
}

// WithTokenCache persists credentials to disk so restarts can reuse them.
func WithTokenCache(c *TokenCache) Option {
	return func(m *CredentialManager) { m.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *CredentialManager) { m.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *CredentialManager) { m.metrics = mt }
}

// New creates a CredentialManager. Missing credentials are not an error here;
// they are reported by every Token call.
func New(clientID, clientSecret, tokenURL string, opts ...Option) *CredentialManager {
	m := &CredentialManager{
		clientID:     clientID,
		clientSecret: clientSecret,
		leeway:       DefaultLeeway,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.exchanger == nil {
		m.exchanger = &clientCredentials{
			cfg: clientcredentials.Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenURL:     tokenURL,
				AuthStyle:    oauth2.AuthStyleInHeader,
			},
			httpClient: m.httpClient,
		}
	}
	return m
}

// Token returns a usable bearer token, exchanging for a new one when the
// cached credential is absent or about to expire.
func (m *CredentialManager) Token(ctx context.Context) (string, error) {
	if err := m.checkConfig(); err != nil {
		return "", err
	}

	m.mu.RLock()
	cred := m.cred
	m.mu.RUnlock()
	if cred.validAt(m.now(), m.leeway) {
		return cred.Token, nil
	}

	// The exchange outlives any single caller; a cancelled caller stops
	// waiting while the others still get the result.
	ch := m.group.DoChan("token", func() (any, error) {
		return m.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(*Credential).Token, nil
	}
}

// Invalidate drops the cached credential, in memory and on disk, so the next
// Token call exchanges again.
func (m *CredentialManager) Invalidate() {
	m.mu.Lock()
	m.cred = nil
	m.diskLoaded = true
	m.mu.Unlock()

	if m.cache != nil {
		if err := m.cache.Delete(); err != nil {
			m.logger.Warn("removing cached token", zap.Error(err))
		}
	}
}

func (m *CredentialManager) checkConfig() error {
	var missing []string
	if m.clientID == "" {
		missing = append(missing, "SPOTIFY_ID")
	}
	if m.clientSecret == "" {
		missing = append(missing, "SPOTIFY_SECRET")
	}
	if len(missing) > 0 {
		return &apperr.ConfigError{Missing: missing}
	}
	return nil
}

// refresh runs inside the single flight.
func (m *CredentialManager) refresh(ctx context.Context) (*Credential, error) {
	now := m.now()

	m.mu.RLock()
	cred, diskLoaded := m.cred, m.diskLoaded
	m.mu.RUnlock()

	// Another flight may have finished between the caller's check and ours.
	if cred.validAt(now, m.leeway) {
		return cred, nil
	}

	if m.cache != nil && !diskLoaded {
		stored, err := m.cache.Load()
		if err != nil {
			m.logger.Warn("loading cached token", zap.String("path", m.cache.Path()), zap.Error(err))
		}
		m.mu.Lock()
		m.diskLoaded = true
		if stored.validAt(now, m.leeway) {
			m.cred = stored
		}
		m.mu.Unlock()
		if stored.validAt(now, m.leeway) {
			m.logger.Debug("reusing cached token", zap.Time("expires_at", stored.ExpiresAt))
			return stored, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	tok, err := m.exchanger.Exchange(ctx)
	if err == nil && (tok == nil || tok.AccessToken == "") {
		err = ErrEmptyToken
	}
	m.metrics.TokenExchange(err)
	if err != nil {
		m.logger.Warn("token exchange failed", zap.Error(err))
		return nil, &apperr.AuthError{Err: fmt.Errorf("exchanging client credentials: %w", err)}
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = now.Add(defaultLifetime)
	}
	fresh := &Credential{Token: tok.AccessToken, ExpiresAt: expiresAt}

	m.mu.Lock()
	m.cred = fresh
	m.mu.Unlock()

	m.logger.Info("refreshed catalog token", zap.Time("expires_at", expiresAt))

	if m.cache != nil {
		if err := m.cache.Save(fresh); err != nil {
			m.logger.Warn("caching token", zap.String("path", m.cache.Path()), zap.Error(err))
		}
	}
	return fresh, nil
}
