package analysis

import "invdefects/internal/core"

// CompliancePct is the integrity score a dataset needs to pass an audit.
const CompliancePct = 99.0

// Field names reported in IntegrityReport.MissingByField.
const (
	FieldDate       = "date"
	FieldWarehouse  = "warehouse"
	FieldOperatorID = "operator_id"
	FieldSKU        = "sku"
)

// Integrity measures how many records carry date, warehouse and operator.
// RecordsWithDate is informational; the score only counts complete records.
func Integrity(records []core.TransactionRecord) (core.IntegrityReport, error) {
	if len(records) == 0 {
		return core.IntegrityReport{}, core.NewEmptyDatasetError("integrity report")
	}

	missing := map[string]int{
		FieldDate:       0,
		FieldWarehouse:  0,
		FieldOperatorID: 0,
		FieldSKU:        0,
	}
	complete, withDate := 0, 0
	for _, r := range records {
		if r.Date.IsEmpty() {
			missing[FieldDate]++
		} else {
			withDate++
		}
		if !r.HasWarehouse() {
			missing[FieldWarehouse]++
		}
		if !r.HasOperator() {
			missing[FieldOperatorID]++
		}
		if !r.HasSKU() {
			missing[FieldSKU]++
		}
		if r.HasCoreFields() {
			complete++
		}
	}

	score := round2(percent(complete, len(records)))
	return core.IntegrityReport{
		TotalRecords:                  len(records),
		RecordsWithCompleteCoreFields: complete,
		IntegrityScorePct:             score,
		RecordsWithDate:               withDate,
		MissingByField:                missing,
		MeetsCompliance:               score >= CompliancePct,
	}, nil
}
