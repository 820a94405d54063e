package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"invdefects/internal/core"
)

// Observer receives the number of records each report left out because the
// grouping key was missing.
type Observer interface {
	Excluded(report, field string, count int)
}

type ObserverFunc func(report, field string, count int)

func (f ObserverFunc) Excluded(report, field string, count int) { f(report, field, count) }

type options struct {
	observer Observer
	now      func() time.Time
}

type Option func(*options)

// WithObserver reports excluded records to o.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithClock overrides the GeneratedAt timestamp source.
func WithClock(now func() time.Time) Option {
	return func(opts *options) { opts.now = now }
}

// Generate computes every report over the same read-only snapshot. The
// reports are independent and run concurrently.
func Generate(ctx context.Context, records []core.TransactionRecord, opts ...Option) (core.ReportBundle, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if len(records) == 0 {
		return core.ReportBundle{}, core.NewEmptyDatasetError("generate reports")
	}

	var b core.ReportBundle
	g, ctx := errgroup.WithContext(ctx)
	run := func(fn func() error) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn()
		})
	}

	run(func() (err error) {
		b.Overall, err = Overall(records)
		return err
	})
	run(func() (err error) {
		b.Integrity, err = Integrity(records)
		return err
	})
	run(func() error { b.RootCauses = DefectTypeBreakdown(records); return nil })
	run(func() error { b.Warehouses = WarehousePerformance(records); return nil })
	run(func() error { b.EntryMethods = EntryMethodImpact(records); return nil })
	run(func() error { b.Operators = OperatorErrorRates(records); return nil })
	run(func() error { b.SeverityDistribution = SeverityDistribution(records); return nil })
	run(func() error { b.Severity = ClassifySeverity(records); return nil })
	run(func() error { b.MonthlyTrend = MonthlyTrend(records); return nil })
	run(func() error { b.Fingerprint = Fingerprint(records); return nil })

	if err := g.Wait(); err != nil {
		return core.ReportBundle{}, fmt.Errorf("generate reports: %w", err)
	}

	b.Findings = DeriveFindings(b)
	b.GeneratedAt = o.now().UTC()
	if o.observer != nil {
		reportExclusions(o.observer, records)
	}
	return b, nil
}

// reportExclusions tells the observer how many records each grouped report
// skipped. Zero counts are not reported.
func reportExclusions(o Observer, records []core.TransactionRecord) {
	var noWarehouse, noDate, noEntry, noManualOperator, noDefectType int
	for _, r := range records {
		if !r.HasWarehouse() {
			noWarehouse++
		}
		if r.Date.IsEmpty() {
			noDate++
		}
		if !r.HasEntryMethod() {
			noEntry++
		}
		if r.EntryMethod == core.EntryManual && !r.HasOperator() {
			noManualOperator++
		}
		if r.HasDefect && !r.HasDefectType() {
			noDefectType++
		}
	}
	for _, e := range []struct {
		report, field string
		count         int
	}{
		{"warehouses", FieldWarehouse, noWarehouse},
		{"monthly-trend", FieldDate, noDate},
		{"entry-methods", "entry_method", noEntry},
		{"operators", FieldOperatorID, noManualOperator},
		{"root-causes", "defect_type", noDefectType},
	} {
		if e.count > 0 {
			o.Excluded(e.report, e.field, e.count)
		}
	}
}

// Fingerprint identifies a dataset snapshot by content. Equal tables in the
// same order produce the same fingerprint.
func Fingerprint(records []core.TransactionRecord) string {
	h := sha256.New()
	buf := make([]byte, 0, 128)
	for _, r := range records {
		buf = buf[:0]
		buf = append(buf, r.TransactionID...)
		buf = append(buf, 0)
		buf = append(buf, r.Date.String()...)
		buf = append(buf, 0)
		buf = append(buf, r.Warehouse...)
		buf = append(buf, 0)
		buf = append(buf, r.OperatorID...)
		buf = append(buf, 0)
		buf = append(buf, r.EntryMethod...)
		buf = append(buf, 0)
		buf = append(buf, r.DefectType...)
		buf = append(buf, 0)
		buf = strconv.AppendInt(buf, int64(r.QtyVariance), 10)
		buf = strconv.AppendBool(buf, r.HasDefect)
		buf = append(buf, '\n')
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
