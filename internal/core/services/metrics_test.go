package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven/mocks"
)

var threeFields = []string{domain.FieldNumero, domain.FieldFecha, domain.FieldImporteTotal}

func reviewOf(uid string, toolA, toolB domain.FieldStates) *domain.ReviewRecord {
	return &domain.ReviewRecord{FacturaUID: uid, ToolA: toolA, ToolB: toolB}
}

func allStates(state domain.ValidationState) domain.FieldStates {
	m := domain.FieldStates{}
	for _, f := range threeFields {
		m[f] = state
	}
	return m
}

func TestComputeTotals_OverallAccuracy(t *testing.T) {
	uids := []string{"f1", "f2"}
	reviews := ReviewIndex{
		"f1": reviewOf("f1", allStates(domain.ValidationCorrect), nil),
		"f2": reviewOf("f2", domain.FieldStates{
			domain.FieldNumero:       domain.ValidationCorrect,
			domain.FieldFecha:        domain.ValidationIncorrect,
			domain.FieldImporteTotal: domain.ValidationIncorrect,
		}, nil),
	}

	totals := ComputeTotals(threeFields, uids, reviews)
	assert.Equal(t, 2, totals.Invoices)
	assert.Equal(t, 2, totals.WithReview)
	assert.Equal(t, 2, totals.CompleteReviews)
	assert.Equal(t, 1, totals.Perfect)
	require.NotNil(t, totals.OverallAccuracyPct)
	assert.Equal(t, 66.67, *totals.OverallAccuracyPct)
}

func TestComputeTotals_NothingReviewed(t *testing.T) {
	totals := ComputeTotals(threeFields, []string{"f1", "f2"}, ReviewIndex{
		"f1": reviewOf("f1", allStates(domain.ValidationUnset), nil),
	})
	assert.Equal(t, 1, totals.WithReview)
	assert.Equal(t, 0, totals.CompleteReviews)
	assert.Nil(t, totals.OverallAccuracyPct)
}

func TestComputeTotals_IncompleteIsNotPerfect(t *testing.T) {
	totals := ComputeTotals(threeFields, []string{"f1"}, ReviewIndex{
		"f1": reviewOf("f1", domain.FieldStates{domain.FieldNumero: domain.ValidationCorrect}, nil),
	})
	assert.Equal(t, 0, totals.CompleteReviews)
	assert.Equal(t, 0, totals.Perfect)
	assert.Equal(t, 100.0, *totals.OverallAccuracyPct)
}

func TestComputeFieldMetrics(t *testing.T) {
	uids := []string{"f1", "f2", "f3"}
	reviews := ReviewIndex{
		"f1": reviewOf("f1", allStates(domain.ValidationCorrect), allStates(domain.ValidationIncorrect)),
		"f2": reviewOf("f2", domain.FieldStates{
			domain.FieldNumero: domain.ValidationCorrect,
			domain.FieldFecha:  domain.ValidationIncorrect,
		}, nil),
	}

	metrics := ComputeFieldMetrics(threeFields, uids, reviews)
	require.Len(t, metrics, 3)

	// Sorted worst first: fecha 50%, numero 100%, importe_total 100% (stable).
	assert.Equal(t, domain.FieldFecha, metrics[0].Field)
	assert.Equal(t, 50.0, metrics[0].AccuracyPct)
	assert.Equal(t, 100.0, metrics[0].CoveragePct)

	assert.Equal(t, domain.FieldNumero, metrics[1].Field)
	assert.Equal(t, domain.FieldImporteTotal, metrics[2].Field)

	total := metrics[2]
	assert.Equal(t, 1, total.Correct)
	assert.Equal(t, 0, total.Incorrect)
	assert.Equal(t, 1, total.Unset)
	assert.Equal(t, 2, total.Total)
	assert.Equal(t, 50.0, total.CoveragePct)
	assert.Equal(t, 100.0, total.AccuracyPct)
}

func TestComputeFieldMetrics_NoReviewsIsZeroNotNaN(t *testing.T) {
	metrics := ComputeFieldMetrics(threeFields, []string{"f1"}, ReviewIndex{})
	for _, m := range metrics {
		assert.Equal(t, 0, m.Total)
		assert.Equal(t, 0.0, m.AccuracyPct)
		assert.Equal(t, 0.0, m.CoveragePct)
	}
}

func TestComputeListPercentages(t *testing.T) {
	uids := []string{"f1", "f2", "f3"}
	reviews := ReviewIndex{
		"f1": reviewOf("f1", allStates(domain.ValidationCorrect), domain.FieldStates{
			domain.FieldNumero:       domain.ValidationCorrect,
			domain.FieldFecha:        domain.ValidationIncorrect,
			domain.FieldImporteTotal: domain.ValidationIncorrect,
		}),
		"f2": reviewOf("f2", domain.FieldStates{
			domain.FieldNumero:       domain.ValidationCorrect,
			domain.FieldFecha:        domain.ValidationCorrect,
			domain.FieldImporteTotal: domain.ValidationIncorrect,
		}, domain.FieldStates{domain.FieldNumero: domain.ValidationCorrect}),
	}

	pcts := ComputeListPercentages(threeFields, uids, reviews)
	require.Len(t, pcts.Invoices, 3)

	assert.Equal(t, 100.0, *pcts.Invoices[0].PercentA)
	assert.Equal(t, 33.33, *pcts.Invoices[0].PercentB)
	assert.Equal(t, 66.67, *pcts.Invoices[1].PercentA)
	assert.Nil(t, pcts.Invoices[1].PercentB, "incomplete review has no percentage")
	assert.Nil(t, pcts.Invoices[2].PercentA)
	assert.Nil(t, pcts.Invoices[2].PercentB)

	// (3+2)/(3+3) for A; only f1 counts for B.
	assert.Equal(t, 83.33, *pcts.OverallPercentA)
	assert.Equal(t, 33.33, *pcts.OverallPercentB)
}

func TestComputeListPercentages_NoCompleteReviews(t *testing.T) {
	pcts := ComputeListPercentages(threeFields, []string{"f1"}, ReviewIndex{})
	assert.Nil(t, pcts.OverallPercentA)
	assert.Nil(t, pcts.OverallPercentB)
}

func TestMetricsService_Compute(t *testing.T) {
	facturas := mocks.NewMockFacturaStore()
	facturas.Put(domain.SourceA, "f1", &domain.FacturaRow{})
	facturas.Put(domain.SourceB, "f2", &domain.FacturaRow{})

	reviews := mocks.NewMockReviewStore()
	ctx := context.Background()
	all := domain.FieldStates{}
	for _, f := range domain.ScoringFields() {
		all[f] = domain.ValidationCorrect
	}
	require.NoError(t, reviews.Upsert(ctx, reviewOf("f1", all, nil)))

	m, err := NewMetricsService(facturas, reviews).Compute(ctx)
	require.NoError(t, err)
	assert.Len(t, m.Fields, len(domain.ScoringFields()))
	assert.Equal(t, 2, m.Totals.Invoices)
	assert.Equal(t, 1, m.Totals.WithReview)
	assert.Equal(t, 1, m.Totals.Perfect)
	assert.Equal(t, 100.0, *m.Totals.OverallAccuracyPct)
}
