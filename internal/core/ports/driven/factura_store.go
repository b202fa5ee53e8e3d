package driven

import (
	"context"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// FacturaStore reads invoice rows from the two extraction tables. It is read-only.
type FacturaStore interface {
	// GetByUID returns the row for factura_uid from one source, or nil, nil if absent.
	GetByUID(ctx context.Context, source domain.Source, facturaUID string) (*domain.FacturaRow, error)

	// ListUIDs returns the distinct factura_uids present in either source, newest first.
	// A limit of 0 means no limit.
	ListUIDs(ctx context.Context, limit, offset int) ([]string, error)
}

// CompanyStore resolves company tax ids for buyer/seller derivation.
type CompanyStore interface {
	// TaxID returns the CIF of a company, or "" if unknown.
	TaxID(ctx context.Context, empresaID string) (string, error)
}
