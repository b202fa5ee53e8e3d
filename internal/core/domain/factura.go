package domain

import "strings"

// Source identifies which extraction pipeline produced a factura row.
type Source string

const (
	// SourceA is the "facturas" pipeline.
	SourceA Source = "a"
	// SourceB is the "facturas_GAI" pipeline.
	SourceB Source = "b"
)

// Factura field names, as stored in both source tables.
const (
	FieldID               = "id"
	FieldNumero           = "numero"
	FieldFecha            = "fecha"
	FieldTipo             = "tipo"
	FieldEmpresaID        = "empresa_id"
	FieldClienteProveedor = "cliente_proveedor"
	FieldConcepto         = "concepto"
	FieldImporteSinIVA    = "importe_sin_iva"
	FieldIVA              = "iva"
	FieldEstadoPago       = "estado_pago"
	FieldEstadoProces     = "estado_proces"
	FieldDriveFileID      = "drive_file_id"
	FieldDriveFileName    = "drive_file_name"
	FieldUserBusinessName = "user_businessname"
	FieldFacturaUID       = "factura_uid"
	FieldImporteTotal     = "importe_total"
)

// Derived buyer/seller fields.
const (
	FieldNombreComprador = "nombre_comprador"
	FieldCifComprador    = "cif_comprador"
	FieldNombreVendedor  = "nombre_vendedor"
	FieldCifVendedor     = "cif_vendedor"
)

// TipoGastos marks an expense invoice: the filer is the buyer.
const TipoGastos = "Gastos"

// UnknownTaxID stands in for the counterparty tax id, which neither pipeline extracts.
const UnknownTaxID = "11111111X"

// FacturaRow is one invoice as extracted by a single pipeline.
// Every field is optional; missing values compare as null.
type FacturaRow struct {
	ID               *int64   `json:"id"`
	Numero           *string  `json:"numero"`
	Fecha            *string  `json:"fecha"`
	Tipo             *string  `json:"tipo"`
	EmpresaID        *string  `json:"empresa_id"`
	ClienteProveedor *string  `json:"cliente_proveedor"`
	Concepto         *string  `json:"concepto"`
	ImporteSinIVA    *float64 `json:"importe_sin_iva"`
	IVA              *float64 `json:"iva"`
	EstadoPago       *string  `json:"estado_pago"`
	EstadoProces     *string  `json:"estado_proces"`
	DriveFileID      *string  `json:"drive_file_id"`
	DriveFileName    *string  `json:"drive_file_name"`
	UserBusinessName *string  `json:"user_businessname"`
	FacturaUID       *string  `json:"factura_uid"`
	ImporteTotal     *float64 `json:"importe_total"`
}

// Value returns the raw value of a field: nil, string, int64 or float64.
// Unknown field names return nil.
func (r *FacturaRow) Value(field string) any {
	if r == nil {
		return nil
	}
	switch field {
	case FieldID:
		return derefInt(r.ID)
	case FieldNumero:
		return derefString(r.Numero)
	case FieldFecha:
		return derefString(r.Fecha)
	case FieldTipo:
		return derefString(r.Tipo)
	case FieldEmpresaID:
		return derefString(r.EmpresaID)
	case FieldClienteProveedor:
		return derefString(r.ClienteProveedor)
	case FieldConcepto:
		return derefString(r.Concepto)
	case FieldImporteSinIVA:
		return derefFloat(r.ImporteSinIVA)
	case FieldIVA:
		return derefFloat(r.IVA)
	case FieldEstadoPago:
		return derefString(r.EstadoPago)
	case FieldEstadoProces:
		return derefString(r.EstadoProces)
	case FieldDriveFileID:
		return derefString(r.DriveFileID)
	case FieldDriveFileName:
		return derefString(r.DriveFileName)
	case FieldUserBusinessName:
		return derefString(r.UserBusinessName)
	case FieldFacturaUID:
		return derefString(r.FacturaUID)
	case FieldImporteTotal:
		return derefFloat(r.ImporteTotal)
	}
	return nil
}

// StringValue returns a string field or "" when absent.
func (r *FacturaRow) StringValue(field string) string {
	s, _ := r.Value(field).(string)
	return s
}

// IsExpense reports whether the invoice was filed as an expense.
// Tipo matches trimmed and case-insensitive, like the tipo field diff.
func (r *FacturaRow) IsExpense() bool {
	return r != nil && r.Tipo != nil && strings.EqualFold(strings.TrimSpace(*r.Tipo), TipoGastos)
}

// Parties are the buyer and seller derived from the filer and counterparty.
type Parties struct {
	NombreComprador string `json:"nombre_comprador"`
	CifComprador    string `json:"cif_comprador"`
	NombreVendedor  string `json:"nombre_vendedor"`
	CifVendedor     string `json:"cif_vendedor"`
}

// DeriveParties works out buyer and seller from the invoice direction.
// For expenses the filer buys from the counterparty; for income the filer sells to it.
func DeriveParties(r *FacturaRow, companyTaxID string) Parties {
	filer := r.StringValue(FieldUserBusinessName)
	counterparty := r.StringValue(FieldClienteProveedor)
	if r.IsExpense() {
		return Parties{
			NombreComprador: filer,
			CifComprador:    companyTaxID,
			NombreVendedor:  counterparty,
			CifVendedor:     UnknownTaxID,
		}
	}
	return Parties{
		NombreComprador: counterparty,
		CifComprador:    UnknownTaxID,
		NombreVendedor:  filer,
		CifVendedor:     companyTaxID,
	}
}

// Value returns a derived party field by name.
func (p Parties) Value(field string) string {
	switch field {
	case FieldNombreComprador:
		return p.NombreComprador
	case FieldCifComprador:
		return p.CifComprador
	case FieldNombreVendedor:
		return p.NombreVendedor
	case FieldCifVendedor:
		return p.CifVendedor
	}
	return ""
}

// ComparisonStatus is the severity of a comparison.
type ComparisonStatus string

const (
	StatusOK   ComparisonStatus = "ok"
	StatusWarn ComparisonStatus = "warn"
	StatusBad  ComparisonStatus = "bad"
)

// FieldDiff is the comparison of one field across both sources.
// Delta is set only when both sides are numeric (b - a).
type FieldDiff struct {
	Field  string   `json:"field"`
	ValueA any      `json:"valueA"`
	ValueB any      `json:"valueB"`
	Equal  bool     `json:"equal"`
	Delta  *float64 `json:"delta"`
}

// FacturaComparison is the derived diff for one factura_uid. It is never persisted.
type FacturaComparison struct {
	FacturaUID   string           `json:"factura_uid"`
	A            *FacturaRow      `json:"a"`
	B            *FacturaRow      `json:"b"`
	Diffs        []FieldDiff      `json:"diffs"`
	DiffCount    int              `json:"diffCount"`
	HasDiffs     bool             `json:"hasDiffs"`
	HasTotalDiff bool             `json:"hasTotalDiff"`
	MissingSide  Source           `json:"missingSide,omitempty"`
	Status       ComparisonStatus `json:"status"`
	Summary      []string         `json:"summary,omitempty"`
}

// Diff returns the diff for a field, or nil if the field was not compared.
func (c *FacturaComparison) Diff(field string) *FieldDiff {
	for i := range c.Diffs {
		if c.Diffs[i].Field == field {
			return &c.Diffs[i]
		}
	}
	return nil
}

// Differs reports whether a compared field is unequal.
func (c *FacturaComparison) Differs(field string) bool {
	d := c.Diff(field)
	return d != nil && !d.Equal
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func derefInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
