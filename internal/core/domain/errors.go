package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request has no resolvable session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConfiguration indicates a required secret or client id is missing
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedProvider indicates the provider is unknown or not registered
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrInvalidStateFormat indicates the OAuth state is not body.signature
	ErrInvalidStateFormat = errors.New("invalid state format")

	// ErrSignatureMismatch indicates the OAuth state signature does not verify
	ErrSignatureMismatch = errors.New("state signature mismatch")

	// ErrInvalidPayload indicates the OAuth state payload is unusable
	ErrInvalidPayload = errors.New("invalid state payload")

	// ErrTokenExchange indicates the provider rejected an authorization code
	ErrTokenExchange = errors.New("token exchange failed")

	// ErrTokenRefresh indicates the provider rejected a refresh token
	ErrTokenRefresh = errors.New("token refresh failed")

	// ErrProfileFetch indicates the provider profile endpoint failed
	ErrProfileFetch = errors.New("profile fetch failed")

	// ErrMissingRefreshToken indicates no refresh token was granted; re-consent is required
	ErrMissingRefreshToken = errors.New("missing refresh token")

	// ErrAccountNotConnected indicates the user never connected the provider
	ErrAccountNotConnected = errors.New("account not connected")

	// ErrProviderUnavailable indicates the provider timed out or could not be reached
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ProviderOp names the provider call that failed.
type ProviderOp string

const (
	ProviderOpExchange ProviderOp = "exchange"
	ProviderOpRefresh  ProviderOp = "refresh"
	ProviderOpProfile  ProviderOp = "profile"
)

// ProviderError is returned when a provider answers with a non-2xx status.
// Body holds the raw provider response for diagnostics.
type ProviderError struct {
	Provider   ProviderType
	Op         ProviderOp
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Provider, e.Unwrap(), e.StatusCode, e.Body)
}

// Unwrap maps the failed operation to its sentinel so errors.Is works.
func (e *ProviderError) Unwrap() error {
	switch e.Op {
	case ProviderOpExchange:
		return ErrTokenExchange
	case ProviderOpRefresh:
		return ErrTokenRefresh
	default:
		return ErrProfileFetch
	}
}
