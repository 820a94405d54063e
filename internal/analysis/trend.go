package analysis

import (
	"sort"

	"invdefects/internal/core"
)

// MonthlyTrend computes the defect rate per YYYY-MM month in chronological
// order. Records without a date are left out.
func MonthlyTrend(records []core.TransactionRecord) []core.MonthlyTrend {
	g := newGroups[string, counter]()
	for _, r := range records {
		if r.Date.IsEmpty() {
			continue
		}
		g.get(r.Date.MonthKey()).add(r.HasDefect)
	}

	out := make([]core.MonthlyTrend, 0, len(g.order))
	g.each(func(month string, c *counter) {
		out = append(out, core.MonthlyTrend{
			Month:             month,
			TotalTransactions: c.total,
			Defects:           c.defects,
			DefectRatePct:     round2(percent(c.defects, c.total)),
		})
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	return out
}

// TrendImprovement compares the first and last month of a trend. A positive
// ImprovementPct means the defect rate went down.
func TrendImprovement(trend []core.MonthlyTrend) (core.TrendChange, error) {
	if len(trend) == 0 {
		return core.TrendChange{}, core.NewEmptyDatasetError("trend improvement")
	}
	first, last := trend[0], trend[len(trend)-1]
	if first.DefectRatePct == 0 {
		return core.TrendChange{}, core.NewEmptyDatasetError("trend improvement")
	}
	return core.TrendChange{
		FirstMonth:     first.Month,
		LastMonth:      last.Month,
		FirstRatePct:   first.DefectRatePct,
		LastRatePct:    last.DefectRatePct,
		ImprovementPct: round2((first.DefectRatePct - last.DefectRatePct) / first.DefectRatePct * 100),
	}, nil
}
