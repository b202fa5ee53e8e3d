package driving

import (
	"context"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// AccountService exposes connected accounts without their tokens.
type AccountService interface {
	// Summary returns the connection status for one provider.
	// A provider the user never connected yields Connected=false, not an error.
	Summary(ctx context.Context, userUID string, provider domain.ProviderType) (*domain.AccountSummary, error)

	// List returns the connection status for every core provider.
	List(ctx context.Context, userUID string) ([]*domain.AccountSummary, error)
}

// TokenService hands out access tokens that are valid for at least the lookahead window.
type TokenService interface {
	// EnsureFreshAccessToken refreshes the account's token when it is about to expire.
	EnsureFreshAccessToken(ctx context.Context, account *domain.ConnectedAccount) (*FreshToken, error)

	// AccessTokenFor loads the account and returns a fresh access token.
	// Returns domain.ErrAccountNotConnected when there is no account.
	AccessTokenFor(ctx context.Context, userUID string, provider domain.ProviderType) (string, error)
}

// FreshToken is the result of EnsureFreshAccessToken.
type FreshToken struct {
	AccessToken       string
	AccountWasUpdated bool
}
