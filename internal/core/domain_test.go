package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestClassifySeverity(t *testing.T) {
	cases := []struct {
		abs  int
		want Severity
	}{
		{0, SeverityLow},
		{5, SeverityLow},
		{6, SeverityMedium},
		{20, SeverityMedium},
		{21, SeverityHigh},
		{50, SeverityHigh},
		{51, SeverityCritical},
		{499, SeverityCritical},
	}
	for _, tc := range cases {
		if got := ClassifySeverity(tc.abs); got != tc.want {
			t.Fatalf("ClassifySeverity(%d) = %s, want %s", tc.abs, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-15", "2024-03-15", true},
		{"2024-03-15 13:45:00", "2024-03-15", true},
		{" 2024-12-01 ", "2024-12-01", true},
		{"2024-03-15T10:00:00Z", "2024-03-15", true},
		{"15/03/2024", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("case %d expected error", i)
			}
			continue
		}
		if d.String() != tc.want {
			t.Fatalf("case %d got %s want %s", i, d.String(), tc.want)
		}
	}
}

func TestDateMonthKey(t *testing.T) {
	if got := NewDate(2024, 2, 29).MonthKey(); got != "2024-02" {
		t.Fatalf("MonthKey = %s", got)
	}
	if (Date{}).String() != "" {
		t.Fatalf("zero date should format as empty string")
	}
	if !(Date{}).IsEmpty() {
		t.Fatalf("zero date should be empty")
	}
}

func TestRecordHelpers(t *testing.T) {
	r := TransactionRecord{QtyVariance: -12, Warehouse: "WH-A", OperatorID: "  ", Date: NewDate(2024, 1, 1)}
	if r.AbsVariance() != 12 {
		t.Fatalf("AbsVariance = %d", r.AbsVariance())
	}
	if r.HasOperator() {
		t.Fatalf("blank operator should be absent")
	}
	if r.HasCoreFields() {
		t.Fatalf("record without operator should not have core fields")
	}
	r.OperatorID = "OP-001"
	if !r.HasCoreFields() {
		t.Fatalf("expected core fields present")
	}
}

func TestEmptyDatasetError(t *testing.T) {
	err := fmt.Errorf("load: %w", NewEmptyDatasetError("integrity"))
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected errors.Is match, got %v", err)
	}
	var ede *EmptyDatasetError
	if !errors.As(err, &ede) || ede.Operation != "integrity" {
		t.Fatalf("expected EmptyDatasetError for integrity, got %v", err)
	}
	if !IsEmptyDataset(err) {
		t.Fatalf("IsEmptyDataset should be true")
	}
	if IsEmptyDataset(errors.New("other")) {
		t.Fatalf("IsEmptyDataset should be false for unrelated errors")
	}
}

func TestDateJSON(t *testing.T) {
	cases := []struct {
		name string
		in   Date
		want string
	}{
		{"calendar date", NewDate(2024, 1, 8), `"2024-01-08"`},
		{"absent", Date{}, `null`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := json.Marshal(tc.in)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("Marshal = %s, want %s", got, tc.want)
			}
			var back Date
			if err := json.Unmarshal(got, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if back.String() != tc.in.String() {
				t.Fatalf("Unmarshal = %q, want %q", back.String(), tc.in.String())
			}
		})
	}

	var d Date
	if err := json.Unmarshal([]byte(`"08/01/2024"`), &d); err == nil {
		t.Fatalf("expected an error for a non ISO date")
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	r := TransactionRecord{
		TransactionID: "TXN-000001",
		Date:          NewDate(2024, 3, 15),
		Warehouse:     "WH-A",
		SKU:           "SKU-1001",
		Location:      "A-01-01",
		ExpectedQty:   100,
		ActualQty:     88,
		QtyVariance:   -12,
		DefectType:    "Miscount",
		EntryMethod:   EntryManual,
		OperatorID:    "OP-001",
		HasDefect:     true,
	}
	body, err := json.Marshal(SeverityClassifiedRecord{TransactionRecord: r, SeverityLevel: SeverityMedium})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := map[string]any{
		"transaction_id": "TXN-000001",
		"date":           "2024-03-15",
		"warehouse":      "WH-A",
		"sku":            "SKU-1001",
		"location":       "A-01-01",
		"expected_qty":   float64(100),
		"actual_qty":     float64(88),
		"qty_variance":   float64(-12),
		"defect_type":    "Miscount",
		"entry_method":   "Manual",
		"operator_id":    "OP-001",
		"has_defect":     true,
		"severity_level": "Medium",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: %s", len(got), len(want), body)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}
