package analysis

import "invdefects/internal/core"

// DeriveFindings picks the headline numbers out of a computed bundle.
// Reports that came back empty leave their findings unset.
func DeriveFindings(b core.ReportBundle) core.Findings {
	var f core.Findings
	if len(b.RootCauses) > 0 {
		f.TopRootCause = b.RootCauses[0].DefectType
		f.TopRootCausePct = round2(b.RootCauses[0].PercentageOfTotalDefects)
	}
	if n := len(b.Warehouses); n > 0 {
		f.BestWarehouse = b.Warehouses[0].Warehouse
		f.BestWarehouseAccuracy = b.Warehouses[0].AccuracyRatePct
		f.WorstWarehouse = b.Warehouses[n-1].Warehouse
		f.WorstWarehouseRate = b.Warehouses[n-1].DefectRatePct
	}
	if n := len(b.EntryMethods); n > 0 {
		f.WorstEntryMethod = b.EntryMethods[0].EntryMethod
		f.BestEntryMethod = b.EntryMethods[n-1].EntryMethod
	}
	if change, err := TrendImprovement(b.MonthlyTrend); err == nil {
		f.Trend = &change
	}
	return f
}
