package driven

import (
	"context"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// OAuthClient performs the authorization-code flow against one provider.
// Each provider has its own implementation carrying its endpoints, scopes and quirks.
type OAuthClient interface {
	// Provider returns the provider this client talks to.
	Provider() domain.ProviderType

	// BuildAuthorizationURL returns the provider consent URL for a signed state.
	BuildAuthorizationURL(state, redirectURI string) string

	// ExchangeCode trades an authorization code for tokens.
	// Non-2xx answers return a *domain.ProviderError wrapping domain.ErrTokenExchange.
	ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenResponse, error)

	// RefreshAccessToken obtains a new access token.
	// Non-2xx answers return a *domain.ProviderError wrapping domain.ErrTokenRefresh.
	RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.TokenResponse, error)

	// FetchProfile identifies the account behind a token. Implementations may read
	// the profile from an ID token in the response and skip the network call.
	FetchProfile(ctx context.Context, token *domain.TokenResponse) (*domain.Profile, error)
}

// StateCodec signs and verifies OAuth state parameters.
type StateCodec interface {
	Encode(payload domain.StatePayload) (string, error)
	Decode(token string) (*domain.StatePayload, error)
}
