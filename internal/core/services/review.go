package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

// Ensure reviewService implements ReviewService
var _ driving.ReviewService = (*reviewService)(nil)

type reviewService struct {
	reviewStore driven.ReviewStore
	now         func() time.Time
	logger      *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviewStore driven.ReviewStore, logger *slog.Logger) driving.ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &reviewService{
		reviewStore: reviewStore,
		now:         time.Now,
		logger:      logger,
	}
}

// Get returns the stored review or an empty one.
func (s *reviewService) Get(ctx context.Context, facturaUID string) (*domain.ReviewRecord, error) {
	if strings.TrimSpace(facturaUID) == "" {
		return nil, fmt.Errorf("%w: factura_uid is required", domain.ErrInvalidInput)
	}

	record, err := s.reviewStore.Get(ctx, facturaUID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if record == nil {
		return &domain.ReviewRecord{
			FacturaUID: facturaUID,
			ToolA:      domain.FieldStates{},
			ToolB:      domain.FieldStates{},
		}, nil
	}
	if record.ToolA == nil {
		record.ToolA = domain.FieldStates{}
	}
	if record.ToolB == nil {
		record.ToolB = domain.FieldStates{}
	}
	return record, nil
}

// Set replaces both maps. Entries that are not a known state are dropped
// instead of failing the write.
func (s *reviewService) Set(ctx context.Context, facturaUID string, toolA, toolB map[string]any) (*domain.ReviewRecord, error) {
	if strings.TrimSpace(facturaUID) == "" {
		return nil, fmt.Errorf("%w: factura_uid is required", domain.ErrInvalidInput)
	}

	record := &domain.ReviewRecord{
		FacturaUID: facturaUID,
		ToolA:      SanitizeFieldStates(toolA),
		ToolB:      SanitizeFieldStates(toolB),
		UpdatedAt:  s.now(),
	}

	dropped := len(toolA) + len(toolB) - len(record.ToolA) - len(record.ToolB)
	if dropped > 0 {
		s.logger.Debug("dropped invalid review entries", "factura_uid", facturaUID, "count", dropped)
	}

	if err := s.reviewStore.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}
	return record, nil
}

// SanitizeFieldStates keeps entries whose key is non-empty and whose value is
// one of unset, correct or incorrect.
func SanitizeFieldStates(in map[string]any) domain.FieldStates {
	out := make(domain.FieldStates, len(in))
	for field, raw := range in {
		if field == "" {
			continue
		}
		v, ok := raw.(string)
		if !ok {
			continue
		}
		state := domain.ValidationState(v)
		if !state.IsValid() {
			continue
		}
		out[field] = state
	}
	return out
}
