package driven

import (
	"context"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// ReviewStore persists reviewer judgments keyed by factura_uid.
type ReviewStore interface {
	// Get returns the review for a factura, or nil, nil if none exists.
	Get(ctx context.Context, facturaUID string) (*domain.ReviewRecord, error)

	// Upsert writes both tool maps wholesale. Last write wins.
	Upsert(ctx context.Context, record *domain.ReviewRecord) error

	// ListByFacturaUIDs returns the existing reviews among the given uids.
	ListByFacturaUIDs(ctx context.Context, facturaUIDs []string) ([]*domain.ReviewRecord, error)
}
