package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"invdefects/internal/amqp"
	"invdefects/internal/cache"
	"invdefects/internal/cli"
	"invdefects/internal/core"
	httpserver "invdefects/internal/http"
	applog "invdefects/internal/log"
	"invdefects/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	logger.Info("Starting defects-server", "port", cfg.Port, "source", cfg.DataSource)

	src, err := cli.OpenSource(cfg)
	if err != nil {
		logger.Error("Failed to open data source", "error", err)
		os.Exit(1)
	}

	bundles := cache.NewLRUCache[core.ReportBundle](8, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(bundles)
	cacheManager.StartCleanup(cfg.CacheTTL)

	reports := services.NewReportService(src, bundles)

	opts := httpserver.Options{
		Ready:  src.Ready,
		Logger: logger.WithComponent(applog.ComponentHTTP),
	}
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// refresh still drops the cache without a queue
			logger.Warn("AMQP unavailable, refresh requests will not reach the worker", "error", err)
		} else {
			opts.Refresher = amqpClient
		}
	}

	srv := httpserver.NewServer(":"+cfg.Port, reports, opts)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			amqpClient.Close()
		}
		if err := src.Close(); err != nil {
			logger.Error("Failed to close data source", "error", err)
		}
	})

	go func() {
		if _, err := reports.Reports(ctx); err != nil {
			logger.Warn("Initial report computation failed", "error", err)
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
