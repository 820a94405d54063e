package commands

import (
	"github.com/spf13/cobra"

	"invdefects/internal/cli"
	"invdefects/internal/cli/ui"
	"invdefects/internal/services"
)

var publishReason string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "recompute the reports and write them with the configured writer",
	Long: `Recompute every report and write it with REPORT_WRITER (sheets, xlsx,
text or memory). With a SQLite source the run is added to the run history.`,
	Example: `  $ REPORT_WRITER=sheets GOOGLE_SPREADSHEET_ID=... defects publish`,
	Args:    unexpectedArgs,
	RunE:    runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishReason, "reason", "manual", "reason recorded in the logs")
}

func runPublish(cmd *cobra.Command, args []string) error {
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

	writer, err := cli.NewReportWriter(ctx, cfg)
	if err != nil {
		return err
	}

	var recorder services.RunRecorder
	if src.Repo != nil {
		recorder = src.Repo
	}
	pub := services.NewPublisher(services.NewReportService(src, nil), writer, recorder)
	ref, err := pub.Publish(ctx, publishReason)
	if err != nil {
		return err
	}
	ui.PrintSuccess("reports published to %s", ref)
	return nil
}
