package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"invdefects/internal/cli/ui"
	"invdefects/internal/ingest"
	"invdefects/internal/storage"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "load the CSV into the SQLite table, replacing its contents",
	Example: `  $ defects load --csv data/raw_inventory_data.csv --db data/inventory.db`,
	Args:    unexpectedArgs,
	RunE:    runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	src := ingest.NewFileSource(cfg.CSVPath)
	records, err := src.LoadTransactions(ctx)
	if err != nil {
		return err
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("replace transactions: %w", err)
	}
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}

	stats := src.LastStats()
	ui.PrintSuccess("loaded %d of %d rows into %s (%d rows in table)", stats.Loaded, stats.Rows, cfg.SQLiteDBPath, count)
	if stats.Rejected > 0 {
		ui.PrintWarning("%d rows rejected", stats.Rejected)
		ui.PrintTable([]string{"REASON", "ROWS"}, reasonRows(stats.Reasons))
	}
	return nil
}

func reasonRows(reasons map[string]int) [][]string {
	keys := make([]string, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(reasons[k])})
	}
	return rows
}
