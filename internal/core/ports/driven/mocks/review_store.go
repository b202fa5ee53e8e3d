package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// MockReviewStore is an in-memory ReviewStore for testing
type MockReviewStore struct {
	mu      sync.RWMutex
	records map[string]*domain.ReviewRecord

	UpsertErr error
}

// NewMockReviewStore creates a new MockReviewStore
func NewMockReviewStore() *MockReviewStore {
	return &MockReviewStore{
		records: make(map[string]*domain.ReviewRecord),
	}
}

func (m *MockReviewStore) Get(ctx context.Context, facturaUID string) (*domain.ReviewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[facturaUID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MockReviewStore) Upsert(ctx context.Context, record *domain.ReviewRecord) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	m.records[record.FacturaUID] = &cp
	return nil
}

func (m *MockReviewStore) ListByFacturaUIDs(ctx context.Context, facturaUIDs []string) ([]*domain.ReviewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ReviewRecord
	for _, uid := range facturaUIDs {
		if rec, ok := m.records[uid]; ok {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}
