package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"invdefects/internal/cli"
	"invdefects/internal/cli/ui"
	"invdefects/internal/services"
	"invdefects/internal/sheets"
	"invdefects/internal/sheets/text"
	"invdefects/internal/sheets/xlsx"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "write every report to a local file",
	Example: `  $ defects export --format xlsx --out reports.xlsx
  $ defects export --format text --out sql_analysis_results.txt`,
	Args: unexpectedArgs,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportFormat, "format", "f", "xlsx", "output format: xlsx or text")
	f.StringVarP(&exportOut, "out", "o", "", "output path (default from XLSX_PATH or TEXT_PATH)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	var w sheets.ReportWriter
	switch exportFormat {
	case "xlsx":
		w = xlsx.New(firstNonEmpty(exportOut, cfg.XLSXPath))
	case "text":
		w = text.New(firstNonEmpty(exportOut, cfg.TextPath))
	default:
		return fmt.Errorf("unknown format %q, use xlsx or text", exportFormat)
	}

	src, err := cli.OpenSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	b, err := services.NewReportService(src, nil).Reports(ctx)
	if err != nil {
		return err
	}
	ref, err := w.WriteReports(ctx, b)
	if err != nil {
		return err
	}
	ui.PrintSuccess("reports for %d transactions written to %s", b.Overall.TotalRecords, ref)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
