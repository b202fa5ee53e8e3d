package domain

import "time"

// ValidationState is a reviewer's judgment of one extracted field.
type ValidationState string

const (
	ValidationUnset     ValidationState = "unset"
	ValidationCorrect   ValidationState = "correct"
	ValidationIncorrect ValidationState = "incorrect"
)

// IsValid reports whether s is one of the three known states.
func (s ValidationState) IsValid() bool {
	switch s {
	case ValidationUnset, ValidationCorrect, ValidationIncorrect:
		return true
	}
	return false
}

// FieldStates maps a field name to its validation state. Absent keys are unset.
type FieldStates map[string]ValidationState

// State returns the state for a field, defaulting to unset.
func (m FieldStates) State(field string) ValidationState {
	if s, ok := m[field]; ok && s.IsValid() {
		return s
	}
	return ValidationUnset
}

// IsComplete reports whether every listed field has a non-unset state.
func (m FieldStates) IsComplete(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if m.State(f) == ValidationUnset {
			return false
		}
	}
	return true
}

// Count tallies the states of the listed fields.
func (m FieldStates) Count(fields []string) (correct, incorrect, unset int) {
	for _, f := range fields {
		switch m.State(f) {
		case ValidationCorrect:
			correct++
		case ValidationIncorrect:
			incorrect++
		default:
			unset++
		}
	}
	return correct, incorrect, unset
}

// ReviewRecord holds both tools' judgments for one factura_uid.
// The two maps are independent and always written together.
type ReviewRecord struct {
	FacturaUID string      `json:"factura_uid"`
	ToolA      FieldStates `json:"tool_a"`
	ToolB      FieldStates `json:"tool_b"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ScoringFields are the fields reviewers judge and metrics score.
func ScoringFields() []string {
	return []string{
		FieldNumero,
		FieldFecha,
		FieldTipo,
		FieldClienteProveedor,
		FieldConcepto,
		FieldImporteSinIVA,
		FieldIVA,
		FieldImporteTotal,
		FieldEstadoPago,
		FieldNombreComprador,
		FieldCifComprador,
		FieldNombreVendedor,
		FieldCifVendedor,
	}
}
