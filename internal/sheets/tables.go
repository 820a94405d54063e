package sheets

import (
	"fmt"
	"sort"

	"invdefects/internal/core"
)

// Tab names, in the order they are written.
const (
	TabSummary      = "Summary"
	TabRootCauses   = "Root Causes"
	TabWarehouses   = "Warehouses"
	TabEntryMethods = "Entry Methods"
	TabOperators    = "Operators"
	TabSeverity     = "Severity"
	TabMonthlyTrend = "Monthly Trend"
	TabIntegrity    = "Integrity"
	TabDefects      = "Defects"
)

// Table is one tab of a report workbook: a header row plus values.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Values returns header and rows as a single grid.
func (t Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	out = append(out, header)
	return append(out, t.Rows...)
}

// TabNames lists every tab BuildTables produces.
func TabNames() []string {
	return []string{
		TabSummary, TabRootCauses, TabWarehouses, TabEntryMethods, TabOperators,
		TabSeverity, TabMonthlyTrend, TabIntegrity, TabDefects,
	}
}

// BuildTables lays the bundle out as spreadsheet tabs. Values are written
// as computed; no re-rounding happens here.
func BuildTables(b core.ReportBundle) []Table {
	return []Table{
		summaryTable(b),
		rootCauseTable(b.RootCauses),
		warehouseTable(b.Warehouses),
		entryMethodTable(b.EntryMethods),
		operatorTable(b.Operators),
		severityTable(b.SeverityDistribution),
		trendTable(b.MonthlyTrend),
		integrityTable(b.Integrity),
		defectsTable(b.Severity),
	}
}

func summaryTable(b core.ReportBundle) Table {
	f := b.Findings
	rows := [][]any{
		{"Generated at", b.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Dataset fingerprint", b.Fingerprint},
		{"Total records", b.Overall.TotalRecords},
		{"Total defects", b.Overall.TotalDefects},
		{"Defect rate %", b.Overall.DefectRatePct},
		{"Accuracy rate %", b.Overall.AccuracyRatePct},
		{"Integrity score %", b.Integrity.IntegrityScorePct},
	}
	if f.TopRootCause != "" {
		rows = append(rows, []any{"Top root cause", fmt.Sprintf("%s (%.2f%%)", f.TopRootCause, f.TopRootCausePct)})
	}
	if f.BestWarehouse != "" {
		rows = append(rows,
			[]any{"Best warehouse", fmt.Sprintf("%s (%.2f%% accuracy)", f.BestWarehouse, f.BestWarehouseAccuracy)},
			[]any{"Worst warehouse", fmt.Sprintf("%s (%.2f%% defects)", f.WorstWarehouse, f.WorstWarehouseRate)},
		)
	}
	if f.WorstEntryMethod != "" {
		rows = append(rows, []any{"Recommendation", fmt.Sprintf("Shift volume from %s to %s entry", f.WorstEntryMethod, f.BestEntryMethod)})
	}
	if f.Trend != nil {
		rows = append(rows, []any{"Improvement " + f.Trend.FirstMonth + " to " + f.Trend.LastMonth + " %", f.Trend.ImprovementPct})
	}
	return Table{Name: TabSummary, Header: []string{"Metric", "Value"}, Rows: rows}
}

func rootCauseTable(in []core.DefectTypeSummary) Table {
	t := Table{Name: TabRootCauses, Header: []string{"defect_type", "incident_count", "avg_abs_variance", "percentage_of_total_defects"}}
	for _, r := range in {
		t.Rows = append(t.Rows, []any{r.DefectType, r.IncidentCount, r.AvgAbsVariance, r.PercentageOfTotalDefects})
	}
	return t
}

func warehouseTable(in []core.WarehouseSummary) Table {
	t := Table{Name: TabWarehouses, Header: []string{"warehouse", "total_transactions", "defect_count", "defect_rate_pct", "accuracy_rate_pct"}}
	for _, r := range in {
		t.Rows = append(t.Rows, []any{r.Warehouse, r.TotalTransactions, r.DefectCount, r.DefectRatePct, r.AccuracyRatePct})
	}
	return t
}

func entryMethodTable(in []core.EntryMethodSummary) Table {
	t := Table{Name: TabEntryMethods, Header: []string{"entry_method", "total_transactions", "defect_count", "defect_rate_pct"}}
	for _, r := range in {
		t.Rows = append(t.Rows, []any{r.EntryMethod, r.TotalTransactions, r.DefectCount, r.DefectRatePct})
	}
	return t
}

func operatorTable(in []core.OperatorErrorSummary) Table {
	t := Table{Name: TabOperators, Header: []string{"operator_id", "entry_method", "transactions_processed", "errors", "error_rate_pct"}}
	for _, r := range in {
		t.Rows = append(t.Rows, []any{r.OperatorID, r.EntryMethod, r.TransactionsProcessed, r.Errors, r.ErrorRatePct})
	}
	return t
}

func severityTable(in []core.SeverityBucketSummary) Table {
	t := Table{Name: TabSeverity, Header: []string{"severity", "incident_count", "avg_abs_variance"}}
	for _, r := range in {
		t.Rows = append(t.Rows, []any{string(r.Severity), r.IncidentCount, r.AvgAbsVariance})
	}
	return t
}

func trendTable(in []core.MonthlyTrend) Table {
	t := Table{Name: TabMonthlyTrend, Header: []string{"month", "total_transactions", "defects", "defect_rate_pct"}}
	for _, r := range in {
		t.Rows = append(t.Rows, []any{r.Month, r.TotalTransactions, r.Defects, r.DefectRatePct})
	}
	return t
}

func integrityTable(in core.IntegrityReport) Table {
	t := Table{Name: TabIntegrity, Header: []string{"metric", "value"}}
	t.Rows = [][]any{
		{"total_records", in.TotalRecords},
		{"records_with_complete_core_fields", in.RecordsWithCompleteCoreFields},
		{"integrity_score_pct", in.IntegrityScorePct},
		{"records_with_date", in.RecordsWithDate},
		{"meets_compliance", in.MeetsCompliance},
	}
	fields := make([]string, 0, len(in.MissingByField))
	for f := range in.MissingByField {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		t.Rows = append(t.Rows, []any{"missing_" + f, in.MissingByField[f]})
	}
	return t
}

func defectsTable(in []core.SeverityClassifiedRecord) Table {
	t := Table{Name: TabDefects, Header: []string{"transaction_id", "date", "warehouse", "sku", "operator_id", "entry_method", "qty_variance", "defect_type", "severity_level"}}
	for _, r := range in {
		t.Rows = append(t.Rows, []any{r.TransactionID, r.Date.String(), r.Warehouse, r.SKU, r.OperatorID, r.EntryMethod, r.QtyVariance, r.DefectType, string(r.SeverityLevel)})
	}
	return t
}
