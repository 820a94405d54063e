package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"invdefects/internal/amqp"
	"invdefects/internal/cli/ui"
)

var refreshReason string

var requestRefreshCmd = &cobra.Command{
	Use:   "request-refresh",
	Short: "ask the worker to republish the reports",
	Example: `  $ defects request-refresh --reason "nightly import finished"`,
	Args:    unexpectedArgs,
	RunE:    runRequestRefresh,
}

func init() {
	requestRefreshCmd.Flags().StringVar(&refreshReason, "reason", "cli", "reason carried in the request")
}

func runRequestRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is not set")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	msg, err := client.PublishRefresh(commandContext(cmd), refreshReason)
	if err != nil {
		return err
	}
	ui.PrintSuccess("refresh requested (%s)", msg.RequestID)
	return nil
}
