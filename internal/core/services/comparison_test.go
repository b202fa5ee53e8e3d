package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

func newComparisonFixture() (driving.ComparisonService, *mocks.MockFacturaStore, *mocks.MockReviewStore) {
	facturas := mocks.NewMockFacturaStore()
	reviews := mocks.NewMockReviewStore()
	svc := NewComparisonService(ComparisonServiceConfig{
		FacturaStore: facturas,
		CompanyStore: &mocks.MockCompanyStore{TaxIDs: map[string]string{"7": "B123"}},
		ReviewStore:  reviews,
	})
	return svc, facturas, reviews
}

func TestComparisonService_Compare(t *testing.T) {
	svc, facturas, _ := newComparisonFixture()
	facturas.Put(domain.SourceA, "f1", baseRow())
	b := baseRow()
	b.ImporteTotal = num(120)
	facturas.Put(domain.SourceB, "f1", b)

	c, err := svc.Compare(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", c.FacturaUID)
	assert.True(t, c.HasTotalDiff)
	assert.Equal(t, domain.StatusBad, c.Status)
	assert.Equal(t, "B123", c.Diff(domain.FieldCifComprador).ValueA)
}

func TestComparisonService_BuyerSellerDerivation(t *testing.T) {
	svc, facturas, _ := newComparisonFixture()
	row := &domain.FacturaRow{
		Tipo:             str("Gastos"),
		EmpresaID:        str("7"),
		UserBusinessName: str("Acme"),
		ClienteProveedor: str("Vendor X"),
	}
	facturas.Put(domain.SourceA, "f1", row)

	c, err := svc.Compare(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceB, c.MissingSide)
	assert.Equal(t, "Acme", c.Diff(domain.FieldNombreComprador).ValueA)
	assert.Equal(t, "B123", c.Diff(domain.FieldCifComprador).ValueA)
	assert.Equal(t, "Vendor X", c.Diff(domain.FieldNombreVendedor).ValueA)
	assert.Equal(t, "11111111X", c.Diff(domain.FieldCifVendedor).ValueA)
}

func TestComparisonService_Compare_Errors(t *testing.T) {
	svc, facturas, _ := newComparisonFixture()

	_, err := svc.Compare(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Compare(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	boom := errors.New("db down")
	facturas.GetErr = boom
	_, err = svc.Compare(context.Background(), "f1")
	assert.ErrorIs(t, err, boom)
}

func TestComparisonService_List(t *testing.T) {
	svc, facturas, reviews := newComparisonFixture()
	for _, uid := range []string{"f1", "f2", "f3"} {
		facturas.Put(domain.SourceA, uid, baseRow())
		facturas.Put(domain.SourceB, uid, baseRow())
	}

	complete := domain.FieldStates{}
	for _, f := range domain.ScoringFields() {
		complete[f] = domain.ValidationCorrect
	}
	require.NoError(t, reviews.Upsert(context.Background(), &domain.ReviewRecord{
		FacturaUID: "f2",
		ToolA:      complete,
	}))

	list, err := svc.List(context.Background(), driving.ListComparisonsRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "f2", list.Items[0].Comparison.FacturaUID)
	assert.Equal(t, "f3", list.Items[1].Comparison.FacturaUID)
	assert.Equal(t, 100.0, *list.Items[0].PercentA)
	assert.Nil(t, list.Items[0].PercentB)
	assert.Nil(t, list.Items[1].PercentA)
	assert.Equal(t, 100.0, *list.OverallPercentA)
	assert.Nil(t, list.OverallPercentB)
	assert.Equal(t, 2, list.Limit)
	assert.Equal(t, 1, list.Offset)
}

func TestComparisonService_ListDefaults(t *testing.T) {
	svc, _, _ := newComparisonFixture()

	list, err := svc.List(context.Background(), driving.ListComparisonsRequest{Limit: 10000, Offset: -3})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, maxListLimit, list.Limit)
	assert.Equal(t, 0, list.Offset)
}
