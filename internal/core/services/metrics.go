package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

// Ensure metricsService implements MetricsService
var _ driving.MetricsService = (*metricsService)(nil)

type metricsService struct {
	facturaStore driven.FacturaStore
	reviewStore  driven.ReviewStore
	fields       []string
}

// NewMetricsService creates a metrics service scoring domain.ScoringFields.
func NewMetricsService(facturaStore driven.FacturaStore, reviewStore driven.ReviewStore) driving.MetricsService {
	return &metricsService{
		facturaStore: facturaStore,
		reviewStore:  reviewStore,
		fields:       domain.ScoringFields(),
	}
}

// Compute scores every invoice present in either source.
func (s *metricsService) Compute(ctx context.Context) (*domain.Metrics, error) {
	uids, err := s.facturaStore.ListUIDs(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list facturas: %w", err)
	}

	reviews, err := loadReviews(ctx, s.reviewStore, uids)
	if err != nil {
		return nil, err
	}

	return &domain.Metrics{
		Fields: ComputeFieldMetrics(s.fields, uids, reviews),
		Totals: ComputeTotals(s.fields, uids, reviews),
	}, nil
}

// ReviewIndex maps factura_uid to its review.
type ReviewIndex map[string]*domain.ReviewRecord

func loadReviews(ctx context.Context, store driven.ReviewStore, uids []string) (ReviewIndex, error) {
	index := make(ReviewIndex, len(uids))
	if len(uids) == 0 {
		return index, nil
	}
	records, err := store.ListByFacturaUIDs(ctx, uids)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	for _, r := range records {
		index[r.FacturaUID] = r
	}
	return index, nil
}

// ComputeFieldMetrics tallies tool A's judgments per scoring field over every
// reviewed invoice. Worst fields come first.
func ComputeFieldMetrics(scoringFields, facturaUIDs []string, reviews ReviewIndex) []domain.FieldMetric {
	metrics := make([]domain.FieldMetric, len(scoringFields))
	for i, f := range scoringFields {
		metrics[i].Field = f
	}

	for _, uid := range facturaUIDs {
		review, ok := reviews[uid]
		if !ok {
			continue
		}
		for i, f := range scoringFields {
			switch review.ToolA.State(f) {
			case domain.ValidationCorrect:
				metrics[i].Correct++
			case domain.ValidationIncorrect:
				metrics[i].Incorrect++
			default:
				metrics[i].Unset++
			}
			metrics[i].Total++
		}
	}

	for i := range metrics {
		m := &metrics[i]
		m.CoveragePct = percent(m.Correct+m.Incorrect, m.Total)
		m.AccuracyPct = percent(m.Correct, m.Correct+m.Incorrect)
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].AccuracyPct < metrics[j].AccuracyPct
	})
	return metrics
}

// ComputeTotals summarises review progress for tool A.
func ComputeTotals(scoringFields, facturaUIDs []string, reviews ReviewIndex) *domain.MetricsTotals {
	totals := &domain.MetricsTotals{Invoices: len(facturaUIDs)}

	var correct, reviewed int
	for _, uid := range facturaUIDs {
		review, ok := reviews[uid]
		if !ok {
			continue
		}
		totals.WithReview++

		c, inc, _ := review.ToolA.Count(scoringFields)
		correct += c
		reviewed += c + inc

		if review.ToolA.IsComplete(scoringFields) {
			totals.CompleteReviews++
			if inc == 0 {
				totals.Perfect++
			}
		}
	}

	if reviewed > 0 {
		pct := percent(correct, reviewed)
		totals.OverallAccuracyPct = &pct
	}
	return totals
}

// ComputeListPercentages scores each tool per invoice once its review is complete.
// The overall figures weight each invoice by its field count.
func ComputeListPercentages(scoringFields, facturaUIDs []string, reviews ReviewIndex) *domain.ListPercentages {
	result := &domain.ListPercentages{
		Invoices: make([]domain.InvoicePercentages, 0, len(facturaUIDs)),
	}

	var correctA, fieldsA, correctB, fieldsB int
	for _, uid := range facturaUIDs {
		item := domain.InvoicePercentages{FacturaUID: uid}
		if review, ok := reviews[uid]; ok {
			if p, c, ok := toolPercent(review.ToolA, scoringFields); ok {
				item.PercentA = &p
				correctA += c
				fieldsA += len(scoringFields)
			}
			if p, c, ok := toolPercent(review.ToolB, scoringFields); ok {
				item.PercentB = &p
				correctB += c
				fieldsB += len(scoringFields)
			}
		}
		result.Invoices = append(result.Invoices, item)
	}

	if fieldsA > 0 {
		p := percent(correctA, fieldsA)
		result.OverallPercentA = &p
	}
	if fieldsB > 0 {
		p := percent(correctB, fieldsB)
		result.OverallPercentB = &p
	}
	return result
}

func toolPercent(states domain.FieldStates, fields []string) (pct float64, correct int, ok bool) {
	if !states.IsComplete(fields) {
		return 0, 0, false
	}
	correct, _, _ = states.Count(fields)
	return percent(correct, len(fields)), correct, true
}

// percent returns num/den*100 rounded to two decimals, and 0 when den is 0.
func percent(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(num) * 100).
		DivRound(decimal.NewFromInt(int64(den)), 2).
		InexactFloat64()
}
