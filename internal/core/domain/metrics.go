package domain

// FieldMetric is the accuracy and coverage of one scoring field.
type FieldMetric struct {
	Field       string  `json:"field"`
	Correct     int     `json:"correct"`
	Incorrect   int     `json:"incorrect"`
	Unset       int     `json:"unset"`
	Total       int     `json:"total"`
	CoveragePct float64 `json:"coveragePct"`
	AccuracyPct float64 `json:"accuracyPct"`
}

// MetricsTotals summarises review progress across all invoices.
// OverallAccuracyPct is nil when nothing has been reviewed.
type MetricsTotals struct {
	Invoices           int      `json:"invoices"`
	WithReview         int      `json:"withReview"`
	CompleteReviews    int      `json:"completeReviews"`
	Perfect            int      `json:"perfect"`
	OverallAccuracyPct *float64 `json:"overallAccuracyPct"`
}

// InvoicePercentages are per-tool correctness for one invoice.
// A percentage is nil until that tool's review is complete.
type InvoicePercentages struct {
	FacturaUID string   `json:"factura_uid"`
	PercentA   *float64 `json:"percentA"`
	PercentB   *float64 `json:"percentB"`
}

// ListPercentages are the per-invoice percentages plus field-weighted overall means.
type ListPercentages struct {
	Invoices        []InvoicePercentages `json:"invoices"`
	OverallPercentA *float64             `json:"overallPercentA"`
	OverallPercentB *float64             `json:"overallPercentB"`
}

// Metrics is the accuracy dashboard payload.
type Metrics struct {
	Fields []FieldMetric  `json:"fields"`
	Totals *MetricsTotals `json:"totals"`
}
