package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/facturas-core/internal/adapters/driven/connectors"
	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

// Ensure TokenGuard implements TokenService
var _ driving.TokenService = (*TokenGuard)(nil)

// DefaultRefreshLookahead is how close to expiry a token gets refreshed.
const DefaultRefreshLookahead = 60 * time.Second

// TokenGuardConfig holds dependencies for TokenGuard.
type TokenGuardConfig struct {
	ConnectorFactory *connectors.Factory
	AccountStore     driven.AccountStore

	// Lookahead defaults to DefaultRefreshLookahead.
	Lookahead time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time

	Logger *slog.Logger
}

// TokenGuard refreshes access tokens on demand.
//
// Check-then-refresh is not serialized. Two requests for the same account
// inside the lookahead window may both refresh and both upsert; the last
// write wins. Providers keep the previous refresh token valid for a while
// after rotation, so either stored token still works.
type TokenGuard struct {
	connectorFactory *connectors.Factory
	accountStore     driven.AccountStore
	lookahead        time.Duration
	now              func() time.Time
	logger           *slog.Logger
}

// NewTokenGuard creates a new token guard.
func NewTokenGuard(cfg TokenGuardConfig) *TokenGuard {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	lookahead := cfg.Lookahead
	if lookahead <= 0 {
		lookahead = DefaultRefreshLookahead
	}

	return &TokenGuard{
		connectorFactory: cfg.ConnectorFactory,
		accountStore:     cfg.AccountStore,
		lookahead:        lookahead,
		now:              now,
		logger:           logger,
	}
}

// EnsureFreshAccessToken returns the stored token while it is valid beyond the
// lookahead window, and otherwise refreshes and persists the account.
// The account is updated in place on refresh.
func (g *TokenGuard) EnsureFreshAccessToken(ctx context.Context, account *domain.ConnectedAccount) (*driving.FreshToken, error) {
	now := g.now()
	if !account.NeedsRefresh(now, g.lookahead) {
		return &driving.FreshToken{AccessToken: account.AccessToken}, nil
	}

	if account.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s account of %s", domain.ErrMissingRefreshToken, account.Provider, account.UserUID)
	}

	client, err := g.connectorFactory.Client(account.Provider)
	if err != nil {
		return nil, err
	}

	tok, err := client.RefreshAccessToken(ctx, account.RefreshToken)
	if err != nil {
		g.logger.Warn("token refresh failed",
			"provider", account.Provider,
			"user_uid", account.UserUID,
			"error", err)
		return nil, err
	}

	account.ApplyToken(tok, now)
	account.UpdatedAt = now
	if err := g.accountStore.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("save refreshed account: %w", err)
	}

	g.logger.Debug("access token refreshed", "provider", account.Provider, "user_uid", account.UserUID)

	return &driving.FreshToken{
		AccessToken:       account.AccessToken,
		AccountWasUpdated: true,
	}, nil
}

// AccessTokenFor loads the user's account for a provider and returns a fresh token.
func (g *TokenGuard) AccessTokenFor(ctx context.Context, userUID string, provider domain.ProviderType) (string, error) {
	account, err := g.accountStore.Get(ctx, userUID, provider)
	if err != nil {
		return "", fmt.Errorf("get account: %w", err)
	}
	if account == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrAccountNotConnected, provider)
	}

	fresh, err := g.EnsureFreshAccessToken(ctx, account)
	if err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}
