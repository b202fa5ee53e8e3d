package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

// Ensure comparisonService implements ComparisonService
var _ driving.ComparisonService = (*comparisonService)(nil)

const (
	defaultListLimit = 50
	maxListLimit     = 200

	// listConcurrency bounds parallel comparisons in one listing.
	listConcurrency = 8
)

// ComparisonServiceConfig holds dependencies for the comparison service.
type ComparisonServiceConfig struct {
	FacturaStore driven.FacturaStore
	CompanyStore driven.CompanyStore
	ReviewStore  driven.ReviewStore
	Logger       *slog.Logger
}

type comparisonService struct {
	facturaStore driven.FacturaStore
	companyStore driven.CompanyStore
	reviewStore  driven.ReviewStore
	fields       []string
	logger       *slog.Logger
}

// NewComparisonService creates a new comparison service.
func NewComparisonService(cfg ComparisonServiceConfig) driving.ComparisonService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &comparisonService{
		facturaStore: cfg.FacturaStore,
		companyStore: cfg.CompanyStore,
		reviewStore:  cfg.ReviewStore,
		fields:       domain.ScoringFields(),
		logger:       logger,
	}
}

// Compare fetches both sources concurrently and diffs them.
func (s *comparisonService) Compare(ctx context.Context, facturaUID string) (*domain.FacturaComparison, error) {
	if strings.TrimSpace(facturaUID) == "" {
		return nil, fmt.Errorf("%w: factura_uid is required", domain.ErrInvalidInput)
	}

	a, b, err := s.fetchPair(ctx, facturaUID)
	if err != nil {
		return nil, err
	}
	if a == nil && b == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, facturaUID)
	}

	return Compare(facturaUID, a, b, s.companyTaxID(ctx, a, b)), nil
}

// List compares a page of invoices and attaches review percentages.
func (s *comparisonService) List(ctx context.Context, req driving.ListComparisonsRequest) (*driving.ComparisonList, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	uids, err := s.facturaStore.ListUIDs(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list facturas: %w", err)
	}

	comparisons := make([]*domain.FacturaComparison, len(uids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, uid := range uids {
		g.Go(func() error {
			a, b, err := s.fetchPair(gctx, uid)
			if err != nil {
				return err
			}
			comparisons[i] = Compare(uid, a, b, s.companyTaxID(gctx, a, b))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reviews, err := loadReviews(ctx, s.reviewStore, uids)
	if err != nil {
		return nil, err
	}
	pcts := ComputeListPercentages(s.fields, uids, reviews)

	items := make([]driving.ComparisonListItem, len(uids))
	for i := range uids {
		items[i] = driving.ComparisonListItem{
			Comparison: comparisons[i],
			PercentA:   pcts.Invoices[i].PercentA,
			PercentB:   pcts.Invoices[i].PercentB,
		}
	}

	return &driving.ComparisonList{
		Items:           items,
		OverallPercentA: pcts.OverallPercentA,
		OverallPercentB: pcts.OverallPercentB,
		Limit:           limit,
		Offset:          offset,
	}, nil
}

// fetchPair reads the invoice from both sources in parallel.
func (s *comparisonService) fetchPair(ctx context.Context, facturaUID string) (a, b *domain.FacturaRow, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		row, err := s.facturaStore.GetByUID(gctx, domain.SourceA, facturaUID)
		if err != nil {
			return fmt.Errorf("get factura %s from source a: %w", facturaUID, err)
		}
		a = row
		return nil
	})
	g.Go(func() error {
		row, err := s.facturaStore.GetByUID(gctx, domain.SourceB, facturaUID)
		if err != nil {
			return fmt.Errorf("get factura %s from source b: %w", facturaUID, err)
		}
		b = row
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// companyTaxID resolves the filer's CIF from whichever row names a company.
// A lookup failure only degrades the derived rows, so it is logged, not returned.
func (s *comparisonService) companyTaxID(ctx context.Context, a, b *domain.FacturaRow) string {
	if s.companyStore == nil {
		return ""
	}
	empresaID := a.StringValue(domain.FieldEmpresaID)
	if empresaID == "" {
		empresaID = b.StringValue(domain.FieldEmpresaID)
	}
	if empresaID == "" {
		return ""
	}

	taxID, err := s.companyStore.TaxID(ctx, empresaID)
	if err != nil {
		s.logger.Warn("company tax id lookup failed", "empresa_id", empresaID, "error", err)
		return ""
	}
	return taxID
}
