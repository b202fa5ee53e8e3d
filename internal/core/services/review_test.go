package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven/mocks"
)

func TestReviewService_GetEmpty(t *testing.T) {
	svc := NewReviewService(mocks.NewMockReviewStore(), nil)

	rec, err := svc.Get(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", rec.FacturaUID)
	assert.NotNil(t, rec.ToolA)
	assert.NotNil(t, rec.ToolB)
	assert.Empty(t, rec.ToolA)
	assert.Equal(t, domain.ValidationUnset, rec.ToolA.State(domain.FieldNumero))
}

func TestReviewService_SetSanitizes(t *testing.T) {
	store := mocks.NewMockReviewStore()
	svc := NewReviewService(store, nil)
	ctx := context.Background()

	rec, err := svc.Set(ctx, "f1",
		map[string]any{
			"numero":        "correct",
			"fecha":         "incorrect",
			"iva":           "unset",
			"concepto":      "maybe",
			"importe_total": 1,
			"":              "correct",
			"tipo":          nil,
		},
		map[string]any{
			"numero": "CORRECT",
			"fecha":  "correct",
		},
	)
	require.NoError(t, err)
	assert.Equal(t, domain.FieldStates{
		"numero": domain.ValidationCorrect,
		"fecha":  domain.ValidationIncorrect,
		"iva":    domain.ValidationUnset,
	}, rec.ToolA)
	assert.Equal(t, domain.FieldStates{"fecha": domain.ValidationCorrect}, rec.ToolB)

	stored, err := svc.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, rec.ToolA, stored.ToolA)
	assert.Equal(t, rec.ToolB, stored.ToolB)
}

func TestReviewService_LastWriteWins(t *testing.T) {
	svc := NewReviewService(mocks.NewMockReviewStore(), nil)
	ctx := context.Background()

	_, err := svc.Set(ctx, "f1", map[string]any{"numero": "correct"}, map[string]any{"numero": "correct"})
	require.NoError(t, err)
	_, err = svc.Set(ctx, "f1", map[string]any{"fecha": "incorrect"}, nil)
	require.NoError(t, err)

	rec, err := svc.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, domain.FieldStates{"fecha": domain.ValidationIncorrect}, rec.ToolA)
	assert.Empty(t, rec.ToolB)
}

func TestReviewService_Errors(t *testing.T) {
	store := mocks.NewMockReviewStore()
	svc := NewReviewService(store, nil)

	_, err := svc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Set(context.Background(), "", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	boom := errors.New("boom")
	store.UpsertErr = boom
	_, err = svc.Set(context.Background(), "f1", nil, nil)
	assert.ErrorIs(t, err, boom)
}
