package main

import (
	"context"
	"errors"
	"os"
	"time"

	"invdefects/internal/amqp"
	"invdefects/internal/cli"
	applog "invdefects/internal/log"
	"invdefects/internal/services"
	"invdefects/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting defects-worker",
		"source", cfg.DataSource,
		"writer", cfg.ReportWriter,
		"refresh_interval", cfg.RefreshInterval)

	src, err := cli.OpenSource(cfg)
	if err != nil {
		logger.Error("Failed to open data source", "error", err)
		os.Exit(1)
	}

	writer, err := cli.NewReportWriter(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize report writer", "error", err)
		os.Exit(1)
	}

	var recorder services.RunRecorder
	if src.Repo != nil {
		recorder = src.Repo
	}
	publisher := services.NewPublisher(services.NewReportService(src, nil), writer, recorder)
	reportWorker := worker.NewReportWorker(publisher)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if amqpClient != nil {
			amqpClient.Close()
		}
		if err := src.Close(); err != nil {
			logger.Error("Failed to close data source", "error", err)
		}
	})

	if err := reportWorker.StartupPublish(ctx); err != nil {
		// keep running, the next request or tick retries
		logger.Error("Startup publish failed", "error", err)
	}

	go reportWorker.RunPeriodic(ctx, cfg.RefreshInterval)

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeRefresh(ctx, reportWorker.HandleRefresh)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
				os.Exit(1)
			}
		}()
	} else {
		logger.Info("AMQP disabled, only periodic refresh is active")
	}

	cli.WaitForShutdown(ctx, done)
}
