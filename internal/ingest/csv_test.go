package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"invdefects/internal/core"
)

const sample = `transaction_id,date,warehouse,sku,expected_qty,actual_qty,location,operator_id,entry_method,qty_variance,has_defect,defect_type,is_damaged
T1,2024-01-05 00:00:00,WH-A,SKU-1001,100,160,Aisle-1-Bin-1,OP-001,Manual,60,True,Count Discrepancy,False
T2,2024-01-06,WH-A,SKU-1002,10,10,Aisle-1-Bin-2,OP-001,Scanner,0,False,No Defect,False
T3,2024-01-07,,SKU-1003,10,4,Aisle-1-Bin-3,,System,-6,1,System Error,False
,2024-01-08,WH-B,SKU-1004,10,13,Aisle-1-Bin-4,OP-002,Manual,3,False,No Defect,False
T5,2024-01-09,WH-B,SKU-1005,ten,13,Aisle-1-Bin-5,OP-002,Manual,3,False,No Defect,False
T6,2024-01-10,WH-B,SKU-1006,10,13,Aisle-1-Bin-6,OP-002,Telepathy,3,False,No Defect,False
T7,10/01/2024,WH-B,SKU-1007,10,13,Aisle-1-Bin-7,OP-002,Manual,3,False,No Defect,False
T8,,WH-C,SKU-1008,10,30,Aisle-1-Bin-8,OP-003,Manual,,True,No Defect,False
`

func TestLoaderRead(t *testing.T) {
	records, stats, err := NewLoader().Read(context.Background(), strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if stats.Rows != 8 || stats.Loaded != 4 || stats.Rejected != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	for _, reason := range []string{"transaction_id:required", "expected_qty:numeric", "entry_method:oneof", "date:format"} {
		if stats.Reasons[reason] != 1 {
			t.Fatalf("expected one rejection for %s, got %v", reason, stats.Reasons)
		}
	}

	t1 := records[0]
	if t1.Date.String() != "2024-01-05" || !t1.HasDefect || t1.DefectType != "Count Discrepancy" || t1.QtyVariance != 60 {
		t.Fatalf("unexpected T1 %+v", t1)
	}
	if records[1].DefectType != "" || records[1].HasDefect {
		t.Fatalf("clean rows must have no defect type, got %+v", records[1])
	}
	t3 := records[2]
	if t3.HasWarehouse() || t3.HasOperator() || !t3.HasDefect || t3.QtyVariance != -6 {
		t.Fatalf("unexpected T3 %+v", t3)
	}
	t8 := records[3]
	if !t8.Date.IsEmpty() || t8.QtyVariance != 20 || t8.DefectType != "" {
		t.Fatalf("unexpected T8 %+v", t8)
	}
}

func TestLoaderMissingColumn(t *testing.T) {
	_, _, err := NewLoader().Read(context.Background(), strings.NewReader("id,date\n1,2024-01-01\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	in := []core.TransactionRecord{
		{TransactionID: "A", Date: core.NewDate(2024, 2, 1), Warehouse: "WH-A", SKU: "SKU-1", ExpectedQty: 10, ActualQty: 70, QtyVariance: 60, OperatorID: "OP-001", EntryMethod: core.EntryManual, HasDefect: true, DefectType: "Count Discrepancy", Location: "Aisle-1-Bin-1"},
		{TransactionID: "B", Date: core.NewDate(2024, 2, 2), Warehouse: "WH-B", SKU: "SKU-2", ExpectedQty: 10, ActualQty: 9, QtyVariance: -1, OperatorID: "OP-002", EntryMethod: core.EntryScanner},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), NoDefect) {
		t.Fatalf("clean rows should be written as %q", NoDefect)
	}
	out, stats, err := NewLoader().Read(context.Background(), &buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if stats.Rejected != 0 || len(out) != len(in) {
		t.Fatalf("unexpected stats %+v", stats)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("row %d: got %+v want %+v", i, out[i], in[i])
		}
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewFileSource(path)
	records, err := src.LoadTransactions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(records) != 4 || src.LastStats().Rejected != 4 {
		t.Fatalf("unexpected load: %d records, stats %+v", len(records), src.LastStats())
	}

	missing := NewFileSource(filepath.Join(t.TempDir(), "nope.csv"))
	if _, err := missing.LoadTransactions(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
