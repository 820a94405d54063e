package analysis

import (
	"sort"

	"invdefects/internal/core"
)

// DefectTypeBreakdown groups the defective records by defect type.
// Averages are rounded to two decimals. Percentages are shares of all grouped
// defects and are left unrounded so they add up to 100; a defect without a
// type is not counted.
func DefectTypeBreakdown(records []core.TransactionRecord) []core.DefectTypeSummary {
	type acc struct {
		count int
		sum   int
	}
	g := newGroups[string, acc]()
	total := 0
	for _, r := range records {
		if !r.HasDefect || !r.HasDefectType() {
			continue
		}
		a := g.get(r.DefectType)
		a.count++
		a.sum += r.AbsVariance()
		total++
	}

	out := make([]core.DefectTypeSummary, 0, len(g.order))
	if total == 0 {
		return out
	}
	g.each(func(defectType string, a *acc) {
		out = append(out, core.DefectTypeSummary{
			DefectType:               defectType,
			IncidentCount:            a.count,
			AvgAbsVariance:           round2(float64(a.sum) / float64(a.count)),
			PercentageOfTotalDefects: percent(a.count, total),
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IncidentCount > out[j].IncidentCount
	})
	return out
}

// EntryMethodImpact compares defect rates across entry methods, highest first.
func EntryMethodImpact(records []core.TransactionRecord) []core.EntryMethodSummary {
	g := newGroups[string, counter]()
	for _, r := range records {
		if !r.HasEntryMethod() {
			continue
		}
		g.get(r.EntryMethod).add(r.HasDefect)
	}

	out := make([]core.EntryMethodSummary, 0, len(g.order))
	g.each(func(method string, c *counter) {
		out = append(out, core.EntryMethodSummary{
			EntryMethod:       method,
			TotalTransactions: c.total,
			DefectCount:       c.defects,
			DefectRatePct:     round2(percent(c.defects, c.total)),
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DefectRatePct > out[j].DefectRatePct
	})
	return out
}

// Overall summarizes the whole table.
func Overall(records []core.TransactionRecord) (core.OverallSummary, error) {
	if len(records) == 0 {
		return core.OverallSummary{}, core.NewEmptyDatasetError("overall summary")
	}
	var c counter
	for _, r := range records {
		c.add(r.HasDefect)
	}
	rate := percent(c.defects, c.total)
	return core.OverallSummary{
		TotalRecords:    c.total,
		TotalDefects:    c.defects,
		DefectRatePct:   round2(rate),
		AccuracyRatePct: round2(100 - rate),
	}, nil
}
