package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
)

// Ensure FacturaStore implements the interfaces.
var (
	_ driven.FacturaStore = (*FacturaStore)(nil)
	_ driven.CompanyStore = (*FacturaStore)(nil)
)

// FacturaStore reads invoices from the two pipeline tables and company tax ids.
type FacturaStore struct {
	db *sql.DB
}

// NewFacturaStore creates a new PostgreSQL-backed factura store.
func NewFacturaStore(db *sql.DB) *FacturaStore {
	return &FacturaStore{db: db}
}

// facturaTable maps a source to its table. The GAI table name is mixed-case.
func facturaTable(source domain.Source) (string, error) {
	switch source {
	case domain.SourceA:
		return "facturas", nil
	case domain.SourceB:
		return `"facturas_GAI"`, nil
	}
	return "", fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, source)
}

const facturaColumns = `
	id, numero, fecha::text, tipo, empresa_id::text, cliente_proveedor, concepto,
	importe_sin_iva, iva, estado_pago, estado_proces, drive_file_id,
	drive_file_name, user_businessname, factura_uid, importe_total`

// GetByUID returns the newest row with the factura_uid, or nil when absent.
func (s *FacturaStore) GetByUID(ctx context.Context, source domain.Source, facturaUID string) (*domain.FacturaRow, error) {
	table, err := facturaTable(source)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE factura_uid = $1 ORDER BY id DESC LIMIT 1`, facturaColumns, table)

	var (
		id                                            sql.NullInt64
		numero, fecha, tipo, empresaID                sql.NullString
		clienteProveedor, concepto                    sql.NullString
		importeSinIVA, iva, importeTotal              sql.NullFloat64
		estadoPago, estadoProces                      sql.NullString
		driveFileID, driveFileName, userBusiness, uid sql.NullString
	)
	err = s.db.QueryRowContext(ctx, query, facturaUID).Scan(
		&id, &numero, &fecha, &tipo, &empresaID, &clienteProveedor, &concepto,
		&importeSinIVA, &iva, &estadoPago, &estadoProces, &driveFileID,
		&driveFileName, &userBusiness, &uid, &importeTotal,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get factura from %s: %w", table, err)
	}

	return &domain.FacturaRow{
		ID:               int64Ptr(id),
		Numero:           stringPtr(numero),
		Fecha:            stringPtr(fecha),
		Tipo:             stringPtr(tipo),
		EmpresaID:        stringPtr(empresaID),
		ClienteProveedor: stringPtr(clienteProveedor),
		Concepto:         stringPtr(concepto),
		ImporteSinIVA:    floatPtr(importeSinIVA),
		IVA:              floatPtr(iva),
		EstadoPago:       stringPtr(estadoPago),
		EstadoProces:     stringPtr(estadoProces),
		DriveFileID:      stringPtr(driveFileID),
		DriveFileName:    stringPtr(driveFileName),
		UserBusinessName: stringPtr(userBusiness),
		FacturaUID:       stringPtr(uid),
		ImporteTotal:     floatPtr(importeTotal),
	}, nil
}

// ListUIDs returns distinct factura_uids from both tables, newest first.
func (s *FacturaStore) ListUIDs(ctx context.Context, limit, offset int) ([]string, error) {
	query := `
		SELECT factura_uid FROM (
			SELECT factura_uid, id FROM facturas WHERE factura_uid IS NOT NULL
			UNION ALL
			SELECT factura_uid, id FROM "facturas_GAI" WHERE factura_uid IS NOT NULL
		) u
		GROUP BY factura_uid
		ORDER BY MAX(id) DESC, factura_uid
		LIMIT $1 OFFSET $2
	`

	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, query, nullLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list factura uids: %w", err)
	}
	defer rows.Close()

	uids := []string{}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan factura uid: %w", err)
		}
		uids = append(uids, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate factura uids: %w", err)
	}
	return uids, nil
}

// TaxID returns the CIF of a company, or "" when unknown.
func (s *FacturaStore) TaxID(ctx context.Context, empresaID string) (string, error) {
	var cif sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT cif FROM empresas WHERE id::text = $1`, empresaID).Scan(&cif)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get company tax id: %w", err)
	}
	return cif.String, nil
}
