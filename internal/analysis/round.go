// Package analysis computes the defect reports over a materialized table of
// inventory transactions. Every report is a pure function of its input.
package analysis

import "github.com/shopspring/decimal"

// round2 rounds half away from zero on the shortest decimal form of x, so
// 12.345 becomes 12.35 regardless of its binary representation.
func round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// percent returns part*100/whole. Callers guarantee whole > 0.
func percent(part, whole int) float64 {
	return float64(part) * 100.0 / float64(whole)
}
