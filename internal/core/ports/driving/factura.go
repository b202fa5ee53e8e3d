package driving

import (
	"context"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// ComparisonService compares the two extractions of an invoice.
type ComparisonService interface {
	// Compare loads both rows for a factura_uid and diffs them.
	// Returns domain.ErrNotFound when neither source has the invoice.
	Compare(ctx context.Context, facturaUID string) (*domain.FacturaComparison, error)

	// List compares a page of invoices and attaches their review percentages.
	List(ctx context.Context, req ListComparisonsRequest) (*ComparisonList, error)
}

// ListComparisonsRequest pages through invoices.
type ListComparisonsRequest struct {
	Limit  int
	Offset int
}

// ComparisonListItem is one row of the comparison listing.
type ComparisonListItem struct {
	Comparison *domain.FacturaComparison `json:"comparison"`
	PercentA   *float64                  `json:"percentA"`
	PercentB   *float64                  `json:"percentB"`
}

// ComparisonList is a page of comparisons.
// @Description Page of invoice comparisons with review percentages
type ComparisonList struct {
	Items           []ComparisonListItem `json:"items"`
	OverallPercentA *float64             `json:"overallPercentA"`
	OverallPercentB *float64             `json:"overallPercentB"`
	Limit           int                  `json:"limit"`
	Offset          int                  `json:"offset"`
}

// ReviewService records reviewer judgments.
type ReviewService interface {
	// Get returns the review, with empty maps when none exists.
	Get(ctx context.Context, facturaUID string) (*domain.ReviewRecord, error)

	// Set sanitizes and writes both maps. Invalid entries are dropped.
	Set(ctx context.Context, facturaUID string, toolA, toolB map[string]any) (*domain.ReviewRecord, error)
}

// MetricsService scores extraction accuracy from reviews.
type MetricsService interface {
	// Compute returns per-field metrics and totals across every invoice.
	Compute(ctx context.Context) (*domain.Metrics, error)
}
