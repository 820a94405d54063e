// Package ingest reads and writes the flat inventory transaction CSV.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"invdefects/internal/core"
)

// Columns is the header written by WriteCSV. Readers accept any column order
// and ignore unknown columns.
var Columns = []string{
	"transaction_id", "date", "warehouse", "sku", "expected_qty", "actual_qty",
	"location", "operator_id", "entry_method", "qty_variance", "has_defect", "defect_type",
}

// NoDefect is the defect_type value the dataset uses for clean rows.
const NoDefect = "No Defect"

var ErrMissingColumn = errors.New("missing required column")

// row is a raw CSV line before conversion.
type row struct {
	TransactionID string `validate:"required"`
	Date          string
	Warehouse     string
	SKU           string
	Location      string
	ExpectedQty   string `validate:"omitempty,numeric"`
	ActualQty     string `validate:"omitempty,numeric"`
	QtyVariance   string `validate:"omitempty,numeric"`
	OperatorID    string
	EntryMethod   string `validate:"omitempty,oneof=Manual Scanner System"`
	HasDefect     string `validate:"omitempty,oneof=True False true false TRUE FALSE 1 0"`
	DefectType    string
}

// LoadStats describes what a load kept and what it rejected.
type LoadStats struct {
	Rows     int
	Loaded   int
	Rejected int
	Reasons  map[string]int // "<column>:<rule>" -> rejected rows
}

func (s *LoadStats) reject(reason string) {
	s.Rejected++
	if s.Reasons == nil {
		s.Reasons = make(map[string]int)
	}
	s.Reasons[reason]++
}

// Loader converts CSV rows into transaction records. Rows that fail
// validation are counted and skipped; they never abort the load.
type Loader struct {
	validate *validator.Validate
}

func NewLoader() *Loader {
	return &Loader{validate: validator.New()}
}

// Read parses every row from r.
func (l *Loader) Read(ctx context.Context, r io.Reader) ([]core.TransactionRecord, LoadStats, error) {
	var stats LoadStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.Trim(strings.TrimSpace(h), `"`))] = i
	}
	if _, ok := idx["transaction_id"]; !ok {
		return nil, stats, fmt.Errorf("%w: transaction_id", ErrMissingColumn)
	}
	field := func(line []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(line) {
			return ""
		}
		return strings.TrimSpace(line[i])
	}

	var records []core.TransactionRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		line, err := cr.Read()
		if err == io.EOF {
			break
		}
		stats.Rows++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.reject("row:parse")
				continue
			}
			return nil, stats, fmt.Errorf("read csv row %d: %w", stats.Rows, err)
		}

		raw := row{
			TransactionID: field(line, "transaction_id"),
			Date:          field(line, "date"),
			Warehouse:     field(line, "warehouse"),
			SKU:           field(line, "sku"),
			Location:      field(line, "location"),
			ExpectedQty:   field(line, "expected_qty"),
			ActualQty:     field(line, "actual_qty"),
			QtyVariance:   field(line, "qty_variance"),
			OperatorID:    field(line, "operator_id"),
			EntryMethod:   field(line, "entry_method"),
			HasDefect:     field(line, "has_defect"),
			DefectType:    field(line, "defect_type"),
		}
		rec, reason := l.convert(raw)
		if reason != "" {
			stats.reject(reason)
			slog.DebugContext(ctx, "Rejected CSV row", "row", stats.Rows, "reason", reason)
			continue
		}
		records = append(records, rec)
		stats.Loaded++
	}
	return records, stats, nil
}

func (l *Loader) convert(raw row) (core.TransactionRecord, string) {
	if err := l.validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return core.TransactionRecord{}, columnName(verrs[0].Field()) + ":" + verrs[0].Tag()
		}
		return core.TransactionRecord{}, "row:invalid"
	}

	rec := core.TransactionRecord{
		TransactionID: raw.TransactionID,
		Warehouse:     raw.Warehouse,
		SKU:           raw.SKU,
		Location:      raw.Location,
		OperatorID:    raw.OperatorID,
		EntryMethod:   raw.EntryMethod,
	}
	if raw.Date != "" {
		d, err := core.ParseDate(raw.Date)
		if err != nil {
			return core.TransactionRecord{}, "date:format"
		}
		rec.Date = d
	}

	var err error
	if rec.ExpectedQty, err = atoi(raw.ExpectedQty); err != nil {
		return core.TransactionRecord{}, "expected_qty:integer"
	}
	if rec.ActualQty, err = atoi(raw.ActualQty); err != nil {
		return core.TransactionRecord{}, "actual_qty:integer"
	}
	if raw.QtyVariance == "" {
		rec.QtyVariance = rec.ActualQty - rec.ExpectedQty
	} else if rec.QtyVariance, err = atoi(raw.QtyVariance); err != nil {
		return core.TransactionRecord{}, "qty_variance:integer"
	}

	switch strings.ToLower(raw.HasDefect) {
	case "true", "1":
		rec.HasDefect = true
	}
	if rec.HasDefect && raw.DefectType != NoDefect {
		rec.DefectType = raw.DefectType
	}
	return rec, ""
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func columnName(field string) string {
	switch field {
	case "TransactionID":
		return "transaction_id"
	case "ExpectedQty":
		return "expected_qty"
	case "ActualQty":
		return "actual_qty"
	case "QtyVariance":
		return "qty_variance"
	case "EntryMethod":
		return "entry_method"
	case "HasDefect":
		return "has_defect"
	default:
		return strings.ToLower(field)
	}
}

// WriteCSV writes records with the Columns header.
func WriteCSV(w io.Writer, records []core.TransactionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		defectType := r.DefectType
		if !r.HasDefect {
			defectType = NoDefect
		}
		line := []string{
			r.TransactionID,
			r.Date.String(),
			r.Warehouse,
			r.SKU,
			strconv.Itoa(r.ExpectedQty),
			strconv.Itoa(r.ActualQty),
			r.Location,
			r.OperatorID,
			r.EntryMethod,
			strconv.Itoa(r.QtyVariance),
			strconv.FormatBool(r.HasDefect),
			defectType,
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.TransactionID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile creates (or truncates) path and writes records to it.
func WriteCSVFile(path string, records []core.TransactionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
