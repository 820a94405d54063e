package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"invdefects/internal/cli"
	"invdefects/internal/cli/ui"
	"invdefects/internal/core"
	"invdefects/internal/services"
	"invdefects/internal/sheets"
	"invdefects/internal/sheets/text"
)

var (
	reportName  string
	reportJSON  bool
	reportLimit int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "compute the reports and print them",
	Long: `Compute every report from the configured data source and print them as
tables. Use --report to print a single tab and --json for machine output.`,
	Example: `  $ defects report
  $ defects report --report "root causes"
  $ defects report --source sqlite --json > bundle.json`,
	Args: unexpectedArgs,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportName, "report", "r", "", "print one tab: "+strings.Join(sheets.TabNames(), ", "))
	f.BoolVar(&reportJSON, "json", false, "print the full bundle as JSON")
	f.IntVar(&reportLimit, "limit", 20, "maximum rows per table, 0 for all")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	src, err := cli.OpenSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	b, err := services.NewReportService(src, nil).Reports(ctx)
	if err != nil {
		if core.IsEmptyDataset(err) {
			ui.PrintWarning("the data source holds no transactions")
		}
		return err
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	tables, err := selectTables(sheets.BuildTables(b), reportName)
	if err != nil {
		return err
	}
	for _, t := range tables {
		printTable(t, reportLimit)
	}
	printFindings(b.Findings)
	return nil
}

// selectTables keeps the tab named name, or every tab except the per-record
// defect listing when name is empty.
func selectTables(all []sheets.Table, name string) ([]sheets.Table, error) {
	if name == "" {
		out := make([]sheets.Table, 0, len(all))
		for _, t := range all {
			if t.Name != sheets.TabDefects {
				out = append(out, t)
			}
		}
		return out, nil
	}
	for _, t := range all {
		if strings.EqualFold(t.Name, name) || strings.EqualFold(strings.ReplaceAll(t.Name, " ", "-"), name) {
			return []sheets.Table{t}, nil
		}
	}
	return nil, fmt.Errorf("unknown report %q, choose one of: %s", name, strings.Join(sheets.TabNames(), ", "))
}

func printTable(t sheets.Table, limit int) {
	fmt.Fprintln(ui.Out)
	ui.PrintHeading(strings.ToUpper(t.Name))

	rows := t.Rows
	truncated := 0
	if limit > 0 && len(rows) > limit {
		truncated = len(rows) - limit
		rows = rows[:limit]
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			cells[i][j] = text.FormatValue(v)
		}
	}
	ui.PrintTable(t.Header, cells)
	if truncated > 0 {
		ui.PrintInfo("%d more rows, use --limit 0 to print all", truncated)
	}
}

func printFindings(f core.Findings) {
	fmt.Fprintln(ui.Out)
	ui.PrintHeading("FINDINGS")
	if f.TopRootCause != "" {
		ui.PrintInfo("top root cause: %s (%.2f%% of defects)", f.TopRootCause, f.TopRootCausePct)
	}
	if f.BestWarehouse != "" {
		ui.PrintSuccess("best warehouse: %s (%.2f%% accuracy)", f.BestWarehouse, f.BestWarehouseAccuracy)
	}
	if f.WorstWarehouse != "" {
		ui.PrintWarning("worst warehouse: %s (%s defect rate)", f.WorstWarehouse, ui.RatePct(f.WorstWarehouseRate, 5, 15))
	}
	if f.WorstEntryMethod != "" {
		ui.PrintInfo("entry methods: worst %s, best %s", f.WorstEntryMethod, f.BestEntryMethod)
	}
	if f.Trend != nil {
		ui.PrintInfo("trend %s to %s: %.2f%% to %.2f%% (%.2f%% improvement)",
			f.Trend.FirstMonth, f.Trend.LastMonth, f.Trend.FirstRatePct, f.Trend.LastRatePct, f.Trend.ImprovementPct)
	}
}
