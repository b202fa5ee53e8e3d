package driven

import (
	"context"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// AccountStore persists one connected account per (user, provider).
type AccountStore interface {
	// Upsert inserts or replaces the account keyed by (user_uid, provider).
	// An empty RefreshToken never overwrites a stored one.
	Upsert(ctx context.Context, account *domain.ConnectedAccount) error

	// Get returns the account with decrypted tokens.
	// Returns nil, nil when the user never connected the provider.
	Get(ctx context.Context, userUID string, provider domain.ProviderType) (*domain.ConnectedAccount, error)
}
