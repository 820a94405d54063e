package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"invdefects/internal/analysis"
	"invdefects/internal/cache"
	"invdefects/internal/core"
)

const latestKey = "latest"

// TransactionSource supplies the full transaction table.
type TransactionSource interface {
	LoadTransactions(ctx context.Context) ([]core.TransactionRecord, error)
}

// ReportService loads the dataset, runs every report and caches the bundle.
// The cache holds the latest bundle and one entry per dataset fingerprint,
// so an unchanged table is never recomputed after the latest entry expires.
type ReportService struct {
	source TransactionSource
	cache  cache.Cache[core.ReportBundle]
	now    func() time.Time

	// serializes recomputation so concurrent misses load the table once
	mu sync.Mutex
}

func NewReportService(source TransactionSource, c cache.Cache[core.ReportBundle]) *ReportService {
	if c == nil {
		c = cache.NewLRUCache[core.ReportBundle](8, 5*time.Minute)
	}
	return &ReportService{source: source, cache: c, now: time.Now}
}

// Reports returns the cached bundle or computes a fresh one.
func (s *ReportService) Reports(ctx context.Context) (core.ReportBundle, error) {
	if b, ok := s.cache.Get(latestKey); ok {
		return b, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.cache.Get(latestKey); ok {
		return b, nil
	}
	return s.compute(ctx)
}

// Refresh drops the latest bundle and recomputes it from the source.
func (s *ReportService) Refresh(ctx context.Context) (core.ReportBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(latestKey)
	return s.compute(ctx)
}

// Invalidate drops every cached bundle.
func (s *ReportService) Invalidate() {
	s.cache.Purge()
}

func (s *ReportService) compute(ctx context.Context) (core.ReportBundle, error) {
	start := s.now()
	records, err := s.source.LoadTransactions(ctx)
	if err != nil {
		return core.ReportBundle{}, fmt.Errorf("load transactions: %w", err)
	}

	fingerprint := analysis.Fingerprint(records)
	if b, ok := s.cache.Get(fingerprint); ok {
		slog.DebugContext(ctx, "Dataset unchanged, reusing reports", "fingerprint", fingerprint)
		// the reports are current as of this load
		b.GeneratedAt = start.UTC()
		s.cache.Set(latestKey, b)
		return b, nil
	}

	b, err := analysis.Generate(ctx, records,
		analysis.WithClock(s.now),
		analysis.WithObserver(analysis.ObserverFunc(func(report, field string, count int) {
			slog.DebugContext(ctx, "Records excluded from report",
				"report", report, "field", field, "count", count)
		})),
	)
	if err != nil {
		return core.ReportBundle{}, err
	}

	s.cache.Set(fingerprint, b)
	s.cache.Set(latestKey, b)
	slog.InfoContext(ctx, "Reports generated",
		"records", len(records),
		"fingerprint", b.Fingerprint,
		"duration_ms", s.now().Sub(start).Milliseconds())
	return b, nil
}
