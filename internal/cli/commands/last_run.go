package commands

import (
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"invdefects/internal/cli/ui"
	"invdefects/internal/storage"
)

var lastRunCmd = &cobra.Command{
	Use:   "last-run",
	Short: "show the most recent published run from the SQLite history",
	Args:  unexpectedArgs,
	RunE:  runLastRun,
}

func runLastRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	run, err := repo.LatestRun(commandContext(cmd))
	if errors.Is(err, storage.ErrNoRuns) {
		ui.PrintInfo("no reports have been published yet")
		return nil
	}
	if err != nil {
		return err
	}

	ref := "-"
	if run.SheetRef.Valid {
		ref = run.SheetRef.String
	}
	ui.PrintTable(
		[]string{"ID", "GENERATED", "RECORDS", "FINGERPRINT", "REF"},
		[][]string{{
			strconv.FormatInt(run.ID, 10),
			run.GeneratedAt.Format(time.RFC3339),
			strconv.FormatInt(run.RecordCount, 10),
			run.Fingerprint,
			ref,
		}},
	)
	return nil
}
