// Package apperr defines the error kinds shared by the classification, search
// and recommendation pipeline. Callers inspect them with errors.As.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError is returned when required configuration, such as the catalog
// client credentials, is absent. It is never retried.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) == 0 {
		return "configuration error"
	}
	return "missing configuration: " + strings.Join(e.Missing, ", ")
}

// AuthError is returned when the credential exchange fails or yields no token.
// The current call fails; the next call tries the exchange again.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "authentication failed"
	}
	return "authentication failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransientNetworkError marks a failure worth retrying: timeouts, 5xx
// responses and rate limiting.
type TransientNetworkError struct {
	Op     string
	Status int // HTTP status, 0 for transport failures
	Err    error
}

func (e *TransientNetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: transient failure (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// NotFoundError is returned when every search tier is exhausted without a
// playable track.
type NotFoundError struct {
	Emotion string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no playable tracks found for mood %q", e.Emotion)
}

// RecommendationError is returned when both recommendation strategies come up
// empty.
type RecommendationError struct {
	Emotion string
	Err     error
}

func (e *RecommendationError) Error() string {
	msg := fmt.Sprintf("no playable recommendations for mood %q", e.Emotion)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RecommendationError) Unwrap() error { return e.Err }

// IsTransient reports whether err is, or wraps, a TransientNetworkError.
func IsTransient(err error) bool {
	var te *TransientNetworkError
	return errors.As(err, &te)
}

// IsFatal reports whether err must abort a whole pipeline call instead of
// being absorbed by a fallback: configuration and authentication failures.
func IsFatal(err error) bool {
	var ce *ConfigError
	var ae *AuthError
	return errors.As(err, &ce) || errors.As(err, &ae)
}
