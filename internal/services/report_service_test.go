package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"invdefects/internal/cache"
	"invdefects/internal/core"
	"invdefects/internal/sheets"
	"invdefects/internal/sheets/memory"
	"invdefects/internal/storage"
)

type fakeSource struct {
	mu      sync.Mutex
	records []core.TransactionRecord
	err     error
	loads   int
}

func (f *fakeSource) LoadTransactions(context.Context) ([]core.TransactionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return append([]core.TransactionRecord(nil), f.records...), nil
}

func (f *fakeSource) Loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

type fakeRecorder struct {
	runs        []string
	generatedAt []time.Time
	err         error
}

func (f *fakeRecorder) RecordRun(_ context.Context, b core.ReportBundle, ref string) (storage.ReportRun, error) {
	if f.err != nil {
		return storage.ReportRun{}, f.err
	}
	f.runs = append(f.runs, b.Fingerprint+"@"+ref)
	f.generatedAt = append(f.generatedAt, b.GeneratedAt)
	return storage.ReportRun{Fingerprint: b.Fingerprint}, nil
}

func sampleRecords() []core.TransactionRecord {
	return []core.TransactionRecord{
		{TransactionID: "1", Date: core.NewDate(2024, 1, 5), Warehouse: "A", OperatorID: "op1", EntryMethod: core.EntryManual, HasDefect: true, QtyVariance: 60, DefectType: "Count Discrepancy"},
		{TransactionID: "2", Date: core.NewDate(2024, 1, 6), Warehouse: "A", OperatorID: "op1", EntryMethod: core.EntryScanner},
		{TransactionID: "3", Date: core.NewDate(2024, 2, 7), Warehouse: "B", OperatorID: "op2", EntryMethod: core.EntrySystem, HasDefect: true, QtyVariance: -6, DefectType: "System Error"},
	}
}

func TestReportServiceCachesLatest(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	svc := NewReportService(src, cache.NewLRUCache[core.ReportBundle](4, time.Hour))

	first, err := svc.Reports(context.Background())
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	second, err := svc.Reports(context.Background())
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if src.Loads() != 1 {
		t.Fatalf("expected one load, got %d", src.Loads())
	}
	if first.Fingerprint != second.Fingerprint || first.Overall.TotalRecords != 3 {
		t.Fatalf("unexpected bundles %+v %+v", first.Overall, second.Overall)
	}
}

func TestReportServiceConcurrentMissesLoadOnce(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	svc := NewReportService(src, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Reports(context.Background()); err != nil {
				t.Errorf("reports: %v", err)
			}
		}()
	}
	wg.Wait()
	if src.Loads() != 1 {
		t.Fatalf("expected one load, got %d", src.Loads())
	}
}

func TestReportServiceRefreshReusesUnchangedDataset(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	svc := NewReportService(src, nil)
	calls := 0
	svc.now = func() time.Time {
		calls++
		return time.Date(2024, 7, 1, 0, 0, calls, 0, time.UTC)
	}

	first, err := svc.Reports(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	again, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if src.Loads() != 2 {
		t.Fatalf("refresh must reload the source, got %d loads", src.Loads())
	}
	if &again.Warehouses[0] != &first.Warehouses[0] {
		t.Fatal("unchanged dataset should reuse the cached bundle")
	}
	if !again.GeneratedAt.After(first.GeneratedAt) {
		t.Fatalf("reused bundle should carry the reload time, got %v after %v", again.GeneratedAt, first.GeneratedAt)
	}

	src.mu.Lock()
	src.records = append(src.records, core.TransactionRecord{TransactionID: "4", Warehouse: "C"})
	src.mu.Unlock()
	changed, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if changed.Fingerprint == first.Fingerprint || changed.Overall.TotalRecords != 4 {
		t.Fatalf("changed dataset should be recomputed, got %+v", changed.Overall)
	}
}

func TestReportServiceErrors(t *testing.T) {
	boom := errors.New("disk gone")
	svc := NewReportService(&fakeSource{err: boom}, nil)
	if _, err := svc.Reports(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}

	empty := NewReportService(&fakeSource{}, nil)
	if _, err := empty.Reports(context.Background()); !errors.Is(err, core.ErrEmptyDataset) {
		t.Fatalf("expected empty dataset error, got %v", err)
	}
}

func TestPublisherPublish(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	store := memory.New()
	rec := &fakeRecorder{}
	p := NewPublisher(NewReportService(src, nil), store, rec)

	ref, err := p.Publish(context.Background(), "test")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ref != "mem:1" || store.Writes() != 1 {
		t.Fatalf("unexpected ref %q writes %d", ref, store.Writes())
	}
	if len(rec.runs) != 1 {
		t.Fatalf("expected run recorded, got %v", rec.runs)
	}
	if tbl, ok := store.Table(sheets.TabWarehouses); !ok || len(tbl.Rows) != 2 {
		t.Fatalf("unexpected warehouse tab %+v", tbl)
	}

	latest, err := p.Latest(context.Background())
	if err != nil || latest.Overall.TotalRecords != 3 {
		t.Fatalf("unexpected latest %+v (%v)", latest.Overall, err)
	}
}

func TestPublisherRecordsPublishTimeForUnchangedDataset(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	svc := NewReportService(src, nil)
	clock := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	rec := &fakeRecorder{}
	p := NewPublisher(svc, memory.New(), rec)

	if _, err := p.Publish(context.Background(), "first"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	clock = clock.Add(time.Hour)
	if _, err := p.Publish(context.Background(), "second"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(rec.generatedAt) != 2 {
		t.Fatalf("expected two runs, got %v", rec.runs)
	}
	if !rec.generatedAt[1].Equal(clock) {
		t.Fatalf("second run generated_at = %v, want %v", rec.generatedAt[1], clock)
	}
}

func TestPublisherRecorderFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{records: sampleRecords()}
	p := NewPublisher(NewReportService(src, nil), memory.New(), &fakeRecorder{err: errors.New("locked")})
	if _, err := p.Publish(context.Background(), "test"); err != nil {
		t.Fatalf("recorder failure must not fail publish: %v", err)
	}
}

func TestPublisherPropagatesSourceErrors(t *testing.T) {
	p := NewPublisher(NewReportService(&fakeSource{}, nil), memory.New(), nil)
	if _, err := p.Publish(context.Background(), "test"); !core.IsEmptyDataset(err) {
		t.Fatalf("expected empty dataset error, got %v", err)
	}
}
