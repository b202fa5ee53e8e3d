package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// MockFacturaStore is an in-memory FacturaStore for testing
type MockFacturaStore struct {
	mu   sync.RWMutex
	rows map[domain.Source]map[string]*domain.FacturaRow

	GetErr error
}

// NewMockFacturaStore creates a new MockFacturaStore
func NewMockFacturaStore() *MockFacturaStore {
	return &MockFacturaStore{
		rows: map[domain.Source]map[string]*domain.FacturaRow{
			domain.SourceA: {},
			domain.SourceB: {},
		},
	}
}

// Put stores a row for a source under its factura_uid.
func (m *MockFacturaStore) Put(source domain.Source, facturaUID string, row *domain.FacturaRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid := facturaUID
	row.FacturaUID = &uid
	m.rows[source][facturaUID] = row
}

func (m *MockFacturaStore) GetByUID(ctx context.Context, source domain.Source, facturaUID string) (*domain.FacturaRow, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rows[source][facturaUID], nil
}

func (m *MockFacturaStore) ListUIDs(ctx context.Context, limit, offset int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, bySource := range m.rows {
		for uid := range bySource {
			seen[uid] = struct{}{}
		}
	}
	uids := make([]string, 0, len(seen))
	for uid := range seen {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	if offset >= len(uids) {
		return []string{}, nil
	}
	uids = uids[offset:]
	if limit > 0 && limit < len(uids) {
		uids = uids[:limit]
	}
	return uids, nil
}

// MockCompanyStore is a map-backed CompanyStore for testing
type MockCompanyStore struct {
	TaxIDs map[string]string
}

func (m *MockCompanyStore) TaxID(ctx context.Context, empresaID string) (string, error) {
	return m.TaxIDs[empresaID], nil
}
