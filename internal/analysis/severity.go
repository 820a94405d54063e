package analysis

import (
	"sort"

	"invdefects/internal/core"
)

// ClassifySeverity keeps the defective records, tags each with its severity
// bucket and orders them by date descending. Records without a date are kept
// and sorted last; ties keep input order.
func ClassifySeverity(records []core.TransactionRecord) []core.SeverityClassifiedRecord {
	out := make([]core.SeverityClassifiedRecord, 0)
	for _, r := range records {
		if !r.HasDefect {
			continue
		}
		out = append(out, core.SeverityClassifiedRecord{
			TransactionRecord: r,
			SeverityLevel:     core.ClassifySeverity(r.AbsVariance()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if a.IsEmpty() || b.IsEmpty() {
			return !a.IsEmpty() && b.IsEmpty()
		}
		return a.After(b.Time)
	})
	return out
}

// SeverityDistribution counts defects per severity bucket, most severe first.
// Buckets without incidents are omitted.
func SeverityDistribution(records []core.TransactionRecord) []core.SeverityBucketSummary {
	type acc struct {
		count int
		sum   int
	}
	buckets := make(map[core.Severity]*acc)
	for _, r := range records {
		if !r.HasDefect {
			continue
		}
		level := core.ClassifySeverity(r.AbsVariance())
		a, ok := buckets[level]
		if !ok {
			a = &acc{}
			buckets[level] = a
		}
		a.count++
		a.sum += r.AbsVariance()
	}

	out := make([]core.SeverityBucketSummary, 0, len(buckets))
	for _, level := range core.SeverityLevels() {
		a, ok := buckets[level]
		if !ok {
			continue
		}
		out = append(out, core.SeverityBucketSummary{
			Severity:       level,
			IncidentCount:  a.count,
			AvgAbsVariance: round2(float64(a.sum) / float64(a.count)),
		})
	}
	return out
}
