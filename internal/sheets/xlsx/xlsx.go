// Package xlsx writes report bundles to an Excel workbook with one sheet per
// report.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"invdefects/internal/core"
	ports "invdefects/internal/sheets"
)

var _ ports.ReportWriter = (*Writer)(nil)

// Writer saves the workbook to path on every WriteReports call.
type Writer struct {
	path string
}

func New(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) WriteReports(ctx context.Context, b core.ReportBundle) (string, error) {
	f, err := Build(b)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(w.path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	slog.InfoContext(ctx, "Report workbook saved", "path", w.path, "fingerprint", b.Fingerprint)
	return w.path, nil
}

// Write streams the workbook for b to out.
func Write(out io.Writer, b core.ReportBundle) error {
	f, err := Build(b)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build lays out every report table in a new workbook. The caller closes it.
func Build(b core.ReportBundle) (*excelize.File, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, t := range ports.BuildTables(b) {
		if err := addSheet(f, i, t, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", t.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func addSheet(f *excelize.File, index int, t ports.Table, headerStyle int) error {
	if index == 0 {
		// a new workbook starts with one default sheet
		if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(t.Name); err != nil {
		return err
	}

	for r, row := range t.Values() {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(t.Header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(t.Name, "A", last, 18); err != nil {
		return err
	}
	return f.SetPanes(t.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
