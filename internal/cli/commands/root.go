// Package commands implements the defects command line.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"invdefects/internal/cli"
	"invdefects/internal/config"
	applog "invdefects/internal/log"
)

const version = "0.1.0"

var (
	flagSource   string
	flagCSV      string
	flagDB       string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:     "defects",
	Short:   "Inventory defect analysis",
	Version: version,
	Long: `Aggregate an inventory transaction table into defect reports:
root causes, warehouse accuracy, operator error rates, severity, monthly
trend and data integrity.`,
	Example: `  # Build a synthetic dataset and load it into SQLite
  $ defects generate --out data/raw_inventory_data.csv
  $ defects load --csv data/raw_inventory_data.csv --db data/inventory.db

  # Print the warehouse ranking
  $ defects report --source sqlite --report warehouses

  # Write every report to a workbook
  $ defects export --format xlsx --out reports.xlsx`,
	SilenceUsage: true,
}

// Execute runs the root command; ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagSource, "source", "", "data source: csv or sqlite (default from DATA_SOURCE)")
	pf.StringVar(&flagCSV, "csv", "", "CSV file path (default from CSV_PATH)")
	pf.StringVar(&flagDB, "db", "", "SQLite database path (default from SQLITE_DB_PATH)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(requestRefreshCmd)
	rootCmd.AddCommand(lastRunCmd)
}

// loadConfig reads the environment, applies flag overrides and validates.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cli.LoadEnvFile()
	cfg := config.Load()

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.DataSource = flagSource
	}
	if flags.Changed("csv") {
		cfg.CSVPath = flagCSV
	}
	if flags.Changed("db") {
		cfg.SQLiteDBPath = flagDB
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cli.SetupLogger(cfg, applog.ComponentCLI)
	return cfg, nil
}

func unexpectedArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q, run '%s --help' for usage", args[0], cmd.CommandPath())
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
