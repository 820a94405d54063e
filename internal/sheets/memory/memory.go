// Package memory keeps written report tables in process, for local runs and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"invdefects/internal/core"
	ports "invdefects/internal/sheets"
)

var _ ports.ReportWriter = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	writes  int
	tables  map[string]ports.Table
	bundles []core.ReportBundle
}

func New() *Store {
	return &Store{tables: make(map[string]ports.Table)}
}

// WriteReports replaces every tab with the bundle's tables.
func (s *Store) WriteReports(_ context.Context, b core.ReportBundle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range ports.BuildTables(b) {
		s.tables[t.Name] = t
	}
	s.bundles = append(s.bundles, b)
	s.writes++
	return fmt.Sprintf("mem:%d", s.writes), nil
}

// Table returns the last table written under name.
func (s *Store) Table(name string) (ports.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	return t, ok
}

// Writes returns how many bundles were written.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Last returns the most recently written bundle.
func (s *Store) Last() (core.ReportBundle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bundles) == 0 {
		return core.ReportBundle{}, false
	}
	return s.bundles[len(s.bundles)-1], true
}
