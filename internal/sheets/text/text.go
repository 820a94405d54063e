// Package text renders report bundles as a plain-text results file.
package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"invdefects/internal/core"
	ports "invdefects/internal/sheets"
)

const rule = "======================================================================"

var _ ports.ReportWriter = (*Writer)(nil)

// Writer writes the results file to a fixed path.
type Writer struct {
	path string
}

func New(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) WriteReports(_ context.Context, b core.ReportBundle) (string, error) {
	f, err := os.Create(w.path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", w.path, err)
	}
	if err := Render(f, b); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", w.path, err)
	}
	return w.path, nil
}

// Render writes every table of the bundle as an aligned section.
func Render(out io.Writer, b core.ReportBundle) error {
	var sb strings.Builder
	sb.WriteString("INVENTORY DEFECT ANALYSIS - REPORT RESULTS\n")
	fmt.Fprintf(&sb, "Generated: %s\n", b.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	for _, t := range ports.BuildTables(b) {
		fmt.Fprintf(&sb, "\n%s\n %s\n%s\n", rule, t.Name, rule)
		if len(t.Rows) == 0 {
			sb.WriteString("(no rows)\n")
			continue
		}
		tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, strings.Join(t.Header, "\t")+"\t")
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = FormatValue(v)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("render %s: %w", t.Name, err)
		}
	}

	if _, err := io.WriteString(out, sb.String()); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// FormatValue prints floats with two decimals and everything else verbatim.
func FormatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
