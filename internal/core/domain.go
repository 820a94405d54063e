package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	EntryManual  = "Manual"
	EntryScanner = "Scanner"
	EntrySystem  = "System"
)

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

type (
	Severity string

	Date struct {
		time.Time
	}

	// TransactionRecord is one row of the inventory transaction table.
	// Empty strings and the zero Date mean the field is absent.
	TransactionRecord struct {
		TransactionID string `json:"transaction_id"`
		Date          Date   `json:"date"`
		Warehouse     string `json:"warehouse"`
		SKU           string `json:"sku"`
		Location      string `json:"location"`
		ExpectedQty   int    `json:"expected_qty"`
		ActualQty     int    `json:"actual_qty"`
		QtyVariance   int    `json:"qty_variance"` // ActualQty - ExpectedQty
		DefectType    string `json:"defect_type"`  // empty when HasDefect is false
		EntryMethod   string `json:"entry_method"`
		OperatorID    string `json:"operator_id"`
		HasDefect     bool   `json:"has_defect"`
	}
)

// EntryMethods lists the entry methods known to the dataset.
func EntryMethods() []string {
	return []string{EntryManual, EntryScanner, EntrySystem}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" and the "2006-01-02 15:04:05" form pandas writes.
// Time of day is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	layouts := []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return Date{}, firstErr
}

// IsEmpty reports whether the date is absent.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// MonthKey returns the YYYY-MM key used by the monthly trend.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// String formats the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MarshalJSON writes the date as "YYYY-MM-DD", or null when absent.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null, "" and anything ParseDate accepts.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// AbsVariance returns |QtyVariance|.
func (r TransactionRecord) AbsVariance() int {
	if r.QtyVariance < 0 {
		return -r.QtyVariance
	}
	return r.QtyVariance
}

func (r TransactionRecord) HasWarehouse() bool  { return present(r.Warehouse) }
func (r TransactionRecord) HasOperator() bool   { return present(r.OperatorID) }
func (r TransactionRecord) HasSKU() bool        { return present(r.SKU) }
func (r TransactionRecord) HasDefectType() bool { return present(r.DefectType) }
func (r TransactionRecord) HasEntryMethod() bool {
	return present(r.EntryMethod)
}

// HasCoreFields reports whether date, warehouse and operator are all present.
func (r TransactionRecord) HasCoreFields() bool {
	return !r.Date.IsEmpty() && r.HasWarehouse() && r.HasOperator()
}

// ClassifySeverity buckets an absolute variance. Boundaries fall into the lower bucket.
func ClassifySeverity(absVariance int) Severity {
	switch {
	case absVariance > 50:
		return SeverityCritical
	case absVariance > 20:
		return SeverityHigh
	case absVariance > 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// SeverityLevels returns the buckets from most to least severe.
func SeverityLevels() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}
