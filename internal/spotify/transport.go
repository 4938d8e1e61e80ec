package spotify

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// invalidator is implemented by token sources that can drop a token the
// API has rejected.
type invalidator interface {
	Invalidate()
}

// bearerTransport sets the Authorization header from a TokenSource on
// every request.
type bearerTransport struct {
	tokens TokenSource
	base   http.RoundTripper
	logger *zap.Logger
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokens.Token(req.Context())
	if err != nil {
		return nil, fmt.Errorf("getting bearer token: %w", err)
	}

	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.base.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if inv, ok := t.tokens.(invalidator); ok {
			t.logger.Warn("catalog rejected bearer token, invalidating",
				zap.String("path", req.URL.Path))
			inv.Invalidate()
		}
	}
	return resp, nil
}
