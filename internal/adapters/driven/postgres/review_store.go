package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// Ensure ReviewStore implements the interface.
var _ driven.ReviewStore = (*ReviewStore)(nil)

// ReviewStore implements driven.ReviewStore using factura_comparison_reviews.
type ReviewStore struct {
	db *sql.DB
}

// NewReviewStore creates a new PostgreSQL-backed review store.
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// Get retrieves the review for a factura, or nil when none exists.
func (s *ReviewStore) Get(ctx context.Context, facturaUID string) (*domain.ReviewRecord, error) {
	query := `
		SELECT factura_uid, tool_a, tool_b, updated_at
		FROM factura_comparison_reviews
		WHERE factura_uid = $1
	`

	record, err := scanReview(s.db.QueryRowContext(ctx, query, facturaUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return record, nil
}

// Upsert writes both maps. Concurrent writers overwrite each other.
func (s *ReviewStore) Upsert(ctx context.Context, record *domain.ReviewRecord) error {
	toolA, err := marshalStates(record.ToolA)
	if err != nil {
		return err
	}
	toolB, err := marshalStates(record.ToolB)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO factura_comparison_reviews (factura_uid, tool_a, tool_b, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (factura_uid) DO UPDATE SET
			tool_a = EXCLUDED.tool_a,
			tool_b = EXCLUDED.tool_b,
			updated_at = EXCLUDED.updated_at
	`

	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}

	if _, err := s.db.ExecContext(ctx, query, record.FacturaUID, toolA, toolB, record.UpdatedAt); err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return nil
}

// ListByFacturaUIDs returns the reviews that exist among the given uids.
func (s *ReviewStore) ListByFacturaUIDs(ctx context.Context, facturaUIDs []string) ([]*domain.ReviewRecord, error) {
	if len(facturaUIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT factura_uid, tool_a, tool_b, updated_at
		FROM factura_comparison_reviews
		WHERE factura_uid = ANY($1)
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(facturaUIDs))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var records []*domain.ReviewRecord
	for rows.Next() {
		record, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*domain.ReviewRecord, error) {
	var record domain.ReviewRecord
	var toolA, toolB []byte
	if err := row.Scan(&record.FacturaUID, &toolA, &toolB, &record.UpdatedAt); err != nil {
		return nil, err
	}

	record.ToolA = unmarshalStates(toolA)
	record.ToolB = unmarshalStates(toolB)
	return &record, nil
}

func marshalStates(states domain.FieldStates) (string, error) {
	if states == nil {
		states = domain.FieldStates{}
	}
	b, err := json.Marshal(states)
	if err != nil {
		return "", fmt.Errorf("marshal review states: %w", err)
	}
	return string(b), nil
}

// unmarshalStates reads a stored map leniently. Rows written by older
// dashboards may hold non-string values; those entries are skipped.
func unmarshalStates(raw []byte) domain.FieldStates {
	states := domain.FieldStates{}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return states
	}
	for field, v := range m {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if state := domain.ValidationState(s); state.IsValid() {
			states[field] = state
		}
	}
	return states
}
