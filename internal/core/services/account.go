package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

// Ensure accountService implements AccountService
var _ driving.AccountService = (*accountService)(nil)

type accountService struct {
	accountStore driven.AccountStore
}

// NewAccountService creates a new account service.
func NewAccountService(accountStore driven.AccountStore) driving.AccountService {
	return &accountService{accountStore: accountStore}
}

func (s *accountService) Summary(ctx context.Context, userUID string, provider domain.ProviderType) (*domain.AccountSummary, error) {
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, provider)
	}

	account, err := s.accountStore.Get(ctx, userUID, provider)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil {
		return &domain.AccountSummary{Provider: provider}, nil
	}
	return account.ToSummary(), nil
}

func (s *accountService) List(ctx context.Context, userUID string) ([]*domain.AccountSummary, error) {
	providers := domain.CoreProviders()
	summaries := make([]*domain.AccountSummary, 0, len(providers))
	for _, p := range providers {
		summary, err := s.Summary(ctx, userUID, p)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
