package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// MockSessionResolver is an in-memory SessionResolver for testing
type MockSessionResolver struct {
	mu       sync.RWMutex
	sessions map[string]string
}

// NewMockSessionResolver creates a new MockSessionResolver
func NewMockSessionResolver() *MockSessionResolver {
	return &MockSessionResolver{
		sessions: make(map[string]string),
	}
}

func (m *MockSessionResolver) Resolve(ctx context.Context, token string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uid, ok := m.sessions[token]
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return uid, nil
}

func (m *MockSessionResolver) Save(ctx context.Context, token, userUID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = userUID
	return nil
}

func (m *MockSessionResolver) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}
