package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"invdefects/internal/core"
)

// FileSource loads the transaction table from a CSV file on every call.
type FileSource struct {
	path   string
	loader *Loader

	mu   sync.Mutex
	last LoadStats
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, loader: NewLoader()}
}

func (s *FileSource) LoadTransactions(ctx context.Context) ([]core.TransactionRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	records, stats, err := s.loader.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.last = stats
	s.mu.Unlock()

	if stats.Rejected > 0 {
		slog.WarnContext(ctx, "CSV rows rejected",
			"path", s.path,
			"rejected", stats.Rejected,
			"reasons", stats.Reasons)
	}
	slog.InfoContext(ctx, "Transactions loaded from CSV",
		"path", s.path,
		"records", stats.Loaded)
	return records, nil
}

// LastStats returns the statistics of the most recent load.
func (s *FileSource) LastStats() LoadStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *FileSource) String() string { return "csv:" + s.path }
