package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/facturas-core/internal/core/domain"
)

// numericTolerance absorbs OCR rounding and cent differences.
var numericTolerance = decimal.New(5, -3)

// maxNumericMagnitude bounds strings treated as numbers. Larger values are
// compared as text so decimal arithmetic never expands a huge exponent.
const maxNumericMagnitude = 1e15

// ComparableFields are the stored fields diffed across both sources, in display order.
func ComparableFields() []string {
	return []string{
		domain.FieldNumero,
		domain.FieldFecha,
		domain.FieldTipo,
		domain.FieldClienteProveedor,
		domain.FieldConcepto,
		domain.FieldImporteSinIVA,
		domain.FieldIVA,
		domain.FieldImporteTotal,
		domain.FieldEstadoPago,
		domain.FieldEstadoProces,
		domain.FieldDriveFileName,
	}
}

// DerivedFields are the buyer/seller rows appended after the stored fields.
func DerivedFields() []string {
	return []string{
		domain.FieldNombreComprador,
		domain.FieldCifComprador,
		domain.FieldNombreVendedor,
		domain.FieldCifVendedor,
	}
}

// summaryRule renders one line of the automatic summary.
type summaryRule struct {
	field string
	label string
	money bool
}

// Checked in this order; the first lines are what reviewers look at first.
var summaryRules = []summaryRule{
	{field: domain.FieldImporteTotal, label: "Importe total", money: true},
	{field: domain.FieldIVA, label: "IVA", money: true},
	{field: domain.FieldImporteSinIVA, label: "Base imponible", money: true},
	{field: domain.FieldTipo, label: "Tipo"},
	{field: domain.FieldEstadoPago, label: "Estado de pago"},
	{field: domain.FieldClienteProveedor, label: "Cliente/proveedor"},
	{field: domain.FieldConcepto, label: "Concepto"},
}

// Compare diffs the two extractions of an invoice. Either row may be nil;
// the comparison then records the missing side instead of failing.
// companyTaxID is the filer's CIF used for the derived buyer/seller rows.
func Compare(facturaUID string, a, b *domain.FacturaRow, companyTaxID string) *domain.FacturaComparison {
	fields := ComparableFields()
	derived := DerivedFields()
	c := &domain.FacturaComparison{
		FacturaUID: facturaUID,
		A:          a,
		B:          b,
		Diffs:      make([]domain.FieldDiff, 0, len(fields)+len(derived)),
	}

	switch {
	case a == nil && b != nil:
		c.MissingSide = domain.SourceA
	case b == nil && a != nil:
		c.MissingSide = domain.SourceB
	}

	for _, f := range fields {
		c.Diffs = append(c.Diffs, diffField(f, a.Value(f), b.Value(f)))
	}

	partiesA := derivedValues(a, companyTaxID)
	partiesB := derivedValues(b, companyTaxID)
	for _, f := range derived {
		c.Diffs = append(c.Diffs, diffField(f, partyValue(partiesA, f), partyValue(partiesB, f)))
	}

	for _, d := range c.Diffs {
		if !d.Equal {
			c.DiffCount++
		}
	}
	c.HasDiffs = c.DiffCount > 0
	c.HasTotalDiff = c.Differs(domain.FieldImporteTotal)
	c.Status = ComputeStatus(c)
	c.Summary = BuildAutoSummary(c)
	return c
}

// ComputeStatus classifies a comparison. A total mismatch is always bad.
func ComputeStatus(c *domain.FacturaComparison) domain.ComparisonStatus {
	switch {
	case c.DiffCount == 0:
		return domain.StatusOK
	case c.HasTotalDiff || c.DiffCount >= 4:
		return domain.StatusBad
	default:
		return domain.StatusWarn
	}
}

// BuildAutoSummary explains the differences in priority order, one line per field.
func BuildAutoSummary(c *domain.FacturaComparison) []string {
	var lines []string
	for _, rule := range summaryRules {
		d := c.Diff(rule.field)
		if d == nil || d.Equal {
			continue
		}
		lines = append(lines, rule.line(d))
	}

	if len(lines) == 0 && c.DiffCount > 0 {
		if c.DiffCount == 1 {
			lines = append(lines, "1 diferencia")
		} else {
			lines = append(lines, fmt.Sprintf("%d diferencias", c.DiffCount))
		}
	}
	return lines
}

func (r summaryRule) line(d *domain.FieldDiff) string {
	if r.money && d.Delta != nil {
		return fmt.Sprintf("%s distinto: %s vs %s (Δ %s)",
			r.label, formatValue(d.ValueA), formatValue(d.ValueB),
			decimal.NewFromFloat(*d.Delta).StringFixed(2))
	}
	return fmt.Sprintf("%s distinto: %s vs %s", r.label, formatValue(d.ValueA), formatValue(d.ValueB))
}

// ValuesEqual applies the comparison rule: null only equals null, numbers
// within tolerance, everything else trimmed and case-insensitive.
func ValuesEqual(a, b any) bool {
	na, nb := normalize(a), normalize(b)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	if da, ok := toDecimal(na); ok {
		if db, ok := toDecimal(nb); ok {
			return db.Sub(da).Abs().LessThan(numericTolerance)
		}
	}
	return strings.EqualFold(toString(na), toString(nb))
}

func diffField(field string, a, b any) domain.FieldDiff {
	d := domain.FieldDiff{
		Field:  field,
		ValueA: a,
		ValueB: b,
		Equal:  ValuesEqual(a, b),
	}
	if da, ok := toDecimal(normalize(a)); ok {
		if db, ok := toDecimal(normalize(b)); ok {
			delta := db.Sub(da).InexactFloat64()
			d.Delta = &delta
		}
	}
	return d
}

// normalize maps absent values to nil and trims strings.
// An empty string stays empty and is not null.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return strings.TrimSpace(x)
	case *string:
		if x == nil {
			return nil
		}
		return strings.TrimSpace(*x)
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case string:
		if x == "" {
			return decimal.Decimal{}, false
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxNumericMagnitude {
			return decimal.Decimal{}, false
		}
		// ParseFloat also takes hex floats and "inf"; keep the decimal grammar.
		if _, err := decimal.NewFromString(x); err != nil {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(f), true
	}
	return decimal.Decimal{}, false
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func formatValue(v any) string {
	n := normalize(v)
	if n == nil {
		return "(vacío)"
	}
	if d, ok := toDecimal(n); ok {
		if _, isString := n.(string); !isString {
			return d.StringFixed(2)
		}
	}
	s := toString(n)
	if s == "" {
		return `""`
	}
	return s
}

// derivedValues is nil for a missing row so its derived fields compare as null.
func derivedValues(r *domain.FacturaRow, companyTaxID string) *domain.Parties {
	if r == nil {
		return nil
	}
	p := domain.DeriveParties(r, companyTaxID)
	return &p
}

func partyValue(p *domain.Parties, field string) any {
	if p == nil {
		return nil
	}
	return p.Value(field)
}
