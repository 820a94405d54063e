package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"invdefects/internal/cli/ui"
	"invdefects/internal/sheets"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	prev := ui.Out
	ui.Out = &buf
	defer func() { ui.Out = prev }()

	rootCmd.SetArgs(args)
	if err := Execute(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, buf.String())
	}
	return buf.String()
}

func TestGenerateLoadReportExport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "raw.csv")
	dbPath := filepath.Join(dir, "inventory.db")
	xlsxPath := filepath.Join(dir, "reports.xlsx")
	t.Setenv("REPORT_WRITER", "xlsx")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AMQP_URL", "")

	out := run(t, "generate", "--records", "300", "--seed", "7", "--out", csvPath)
	if !strings.Contains(out, "wrote 300 transactions") {
		t.Fatalf("generate output: %s", out)
	}

	out = run(t, "load", "--source", "csv", "--csv", csvPath, "--db", dbPath)
	if !strings.Contains(out, "loaded 300 of 300 rows") {
		t.Fatalf("load output: %s", out)
	}

	out = run(t, "report", "--source", "sqlite", "--db", dbPath, "--report", "warehouses")
	if !strings.Contains(out, "WAREHOUSES") || !strings.Contains(out, "WH-A") {
		t.Fatalf("report output: %s", out)
	}
	if strings.Contains(out, "ROOT CAUSES") {
		t.Fatalf("--report should print a single table: %s", out)
	}

	out = run(t, "export", "--source", "csv", "--csv", csvPath, "--format", "xlsx", "--out", xlsxPath)
	if !strings.Contains(out, "300 transactions") {
		t.Fatalf("export output: %s", out)
	}
	if info, err := os.Stat(xlsxPath); err != nil || info.Size() == 0 {
		t.Fatalf("workbook not written: %v", err)
	}
}

func TestSelectTables(t *testing.T) {
	all := []sheets.Table{{Name: sheets.TabSummary}, {Name: sheets.TabRootCauses}, {Name: sheets.TabDefects}}

	got, err := selectTables(all, "")
	if err != nil || len(got) != 2 {
		t.Fatalf("default selection = %v, %v", got, err)
	}
	for _, name := range []string{"root causes", "Root-Causes", "ROOT CAUSES"} {
		got, err := selectTables(all, name)
		if err != nil || len(got) != 1 || got[0].Name != sheets.TabRootCauses {
			t.Fatalf("selectTables(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := selectTables(all, "nope"); err == nil {
		t.Fatal("expected error for unknown report")
	}
}

func TestReasonRowsSorted(t *testing.T) {
	rows := reasonRows(map[string]int{"qty:numeric": 2, "date:format": 1})
	if len(rows) != 2 || rows[0][0] != "date:format" || rows[1][1] != "2" {
		t.Fatalf("rows = %v", rows)
	}
}
