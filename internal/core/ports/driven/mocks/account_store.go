package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// MockAccountStore is an in-memory AccountStore with the same merge semantics as Postgres.
type MockAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.ConnectedAccount // key: provider:userUID

	// Custom behavior hooks (optional)
	UpsertErr error
	GetErr    error

	Upserts int
}

// NewMockAccountStore creates a new MockAccountStore
func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{
		accounts: make(map[string]*domain.ConnectedAccount),
	}
}

func accountKey(userUID string, provider domain.ProviderType) string {
	return string(provider) + ":" + userUID
}

func (m *MockAccountStore) Upsert(ctx context.Context, account *domain.ConnectedAccount) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserts++

	cp := *account
	key := accountKey(account.UserUID, account.Provider)
	if existing, ok := m.accounts[key]; ok {
		if cp.RefreshToken == "" {
			cp.RefreshToken = existing.RefreshToken
		}
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	m.accounts[key] = &cp
	return nil
}

func (m *MockAccountStore) Get(ctx context.Context, userUID string, provider domain.ProviderType) (*domain.ConnectedAccount, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[accountKey(userUID, provider)]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}
