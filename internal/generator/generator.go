// Package generator builds a synthetic inventory transaction table with
// deliberate count discrepancies.
package generator

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"invdefects/internal/core"
)

const (
	DefaultRecords = 50000
	DefaultSeed    = 42

	// DefectThreshold is the |variance| above which a count is a defect.
	DefectThreshold = 5
	// DiscrepancyThreshold is the |variance| above which the defect is a
	// count discrepancy regardless of entry method.
	DiscrepancyThreshold = 50
)

const (
	DefectCountDiscrepancy   = "Count Discrepancy"
	DefectManualEntryError   = "Manual Entry Error"
	DefectScannerMalfunction = "Scanner Malfunction"
	DefectSystemError        = "System Error"
)

type Config struct {
	Records   int
	Seed      uint64
	StartDate core.Date
	Days      int // dates fall in [StartDate, StartDate+Days)
}

func DefaultConfig() Config {
	return Config{
		Records:   DefaultRecords,
		Seed:      DefaultSeed,
		StartDate: core.NewDate(2024, 1, 1),
		Days:      180,
	}
}

var warehouses = []string{"WH-A", "WH-B", "WH-C", "WH-D"}

// entry method weights: Manual .4, Scanner .5, System .1
var entryWeights = []struct {
	method string
	upTo   float64
}{
	{core.EntryManual, 0.4},
	{core.EntryScanner, 0.9},
	{core.EntrySystem, 1.0},
}

// Generate returns cfg.Records records. The same Config always yields the
// same table.
func Generate(cfg Config) ([]core.TransactionRecord, error) {
	if cfg.Records < 0 {
		return nil, fmt.Errorf("invalid record count %d", cfg.Records)
	}
	if cfg.Days < 1 {
		return nil, fmt.Errorf("invalid day span %d: must be at least 1", cfg.Days)
	}
	if cfg.StartDate.IsEmpty() {
		return nil, fmt.Errorf("start date is required")
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	out := make([]core.TransactionRecord, cfg.Records)
	for i := range out {
		expected := 1 + rng.IntN(499)
		actual := 1 + rng.IntN(499)
		method := pickEntryMethod(rng.Float64())
		r := core.TransactionRecord{
			TransactionID: strconv.Itoa(i + 1),
			Date:          core.Date{Time: cfg.StartDate.AddDate(0, 0, rng.IntN(cfg.Days))},
			Warehouse:     warehouses[rng.IntN(len(warehouses))],
			SKU:           fmt.Sprintf("SKU-%d", 1000+rng.IntN(8999)),
			ExpectedQty:   expected,
			ActualQty:     actual,
			QtyVariance:   actual - expected,
			Location:      fmt.Sprintf("Aisle-%d-Bin-%d", 1+rng.IntN(19), 1+rng.IntN(49)),
			OperatorID:    fmt.Sprintf("OP-%03d", 1+rng.IntN(50)),
			EntryMethod:   method,
		}
		r.HasDefect = r.AbsVariance() > DefectThreshold
		r.DefectType = DefectType(r)
		out[i] = r
	}
	return out, nil
}

// DefectType names the cause of a defective record, or "" for a clean one.
func DefectType(r core.TransactionRecord) string {
	if !r.HasDefect {
		return ""
	}
	if r.AbsVariance() > DiscrepancyThreshold {
		return DefectCountDiscrepancy
	}
	switch r.EntryMethod {
	case core.EntryManual:
		return DefectManualEntryError
	case core.EntryScanner:
		return DefectScannerMalfunction
	default:
		return DefectSystemError
	}
}

func pickEntryMethod(p float64) string {
	for _, w := range entryWeights {
		if p < w.upTo {
			return w.method
		}
	}
	return core.EntrySystem
}

// EndDate is the last date Generate can produce for cfg.
func (c Config) EndDate() core.Date {
	return core.Date{Time: c.StartDate.AddDate(0, 0, c.Days-1)}
}
