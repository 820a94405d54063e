package analysis

import (
	"sort"

	"invdefects/internal/core"
)

// WarehousePerformance ranks warehouses by defect rate, best first.
// Defect and accuracy rates are rounded independently from the same
// unrounded rate, so the pair may not add up to exactly 100.
func WarehousePerformance(records []core.TransactionRecord) []core.WarehouseSummary {
	g := newGroups[string, counter]()
	for _, r := range records {
		if !r.HasWarehouse() {
			continue
		}
		g.get(r.Warehouse).add(r.HasDefect)
	}

	out := make([]core.WarehouseSummary, 0, len(g.order))
	g.each(func(warehouse string, c *counter) {
		rate := percent(c.defects, c.total)
		out = append(out, core.WarehouseSummary{
			Warehouse:         warehouse,
			TotalTransactions: c.total,
			DefectCount:       c.defects,
			DefectRatePct:     round2(rate),
			AccuracyRatePct:   round2(100 - rate),
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DefectRatePct < out[j].DefectRatePct
	})
	return out
}
