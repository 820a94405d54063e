package analysis

import (
	"sort"

	"invdefects/internal/core"
)

const (
	// MinOperatorTransactions is exclusive: an operator needs more than this.
	MinOperatorTransactions = 100
	TopOperators            = 10
)

type operatorKey struct {
	operatorID  string
	entryMethod string
}

// OperatorErrorRates ranks manual-entry operators by error rate, worst
// first, keeping at most TopOperators groups that processed more than
// MinOperatorTransactions records.
func OperatorErrorRates(records []core.TransactionRecord) []core.OperatorErrorSummary {
	g := newGroups[operatorKey, counter]()
	for _, r := range records {
		if r.EntryMethod != core.EntryManual || !r.HasOperator() {
			continue
		}
		g.get(operatorKey{r.OperatorID, r.EntryMethod}).add(r.HasDefect)
	}

	out := make([]core.OperatorErrorSummary, 0)
	g.each(func(k operatorKey, c *counter) {
		if c.total <= MinOperatorTransactions {
			return
		}
		out = append(out, core.OperatorErrorSummary{
			OperatorID:            k.operatorID,
			EntryMethod:           k.entryMethod,
			TransactionsProcessed: c.total,
			Errors:                c.defects,
			ErrorRatePct:          round2(percent(c.defects, c.total)),
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ErrorRatePct > out[j].ErrorRatePct
	})
	if len(out) > TopOperators {
		out = out[:TopOperators]
	}
	return out
}
