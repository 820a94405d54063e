// Package cli provides the initialization shared by cmd/defects,
// cmd/defects-server and cmd/defects-worker.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"invdefects/internal/config"
	"invdefects/internal/ingest"
	applog "invdefects/internal/log"
	"invdefects/internal/services"
	"invdefects/internal/sheets"
	gsheet "invdefects/internal/sheets/google"
	"invdefects/internal/sheets/memory"
	"invdefects/internal/sheets/text"
	"invdefects/internal/sheets/xlsx"
	"invdefects/internal/storage"
)

// SetupLogger builds the logger from LOG_LEVEL and LOG_FORMAT and sets it
// as the default slog logger.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	lc, err := applog.ConfigFromStrings(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		lc = applog.DefaultConfig()
	}
	lc.Component = component
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// Source is a transaction source with its readiness probe and cleanup.
type Source struct {
	services.TransactionSource
	Ready func(ctx context.Context) error
	Close func() error
	// Repo is set when the source is SQLite, for run history.
	Repo *storage.SQLiteRepository
}

// OpenSource opens the data source named by DATA_SOURCE.
func OpenSource(cfg *config.Config) (*Source, error) {
	switch cfg.DataSource {
	case config.SourceSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite source: %w", err)
		}
		return &Source{TransactionSource: repo, Ready: repo.Ping, Close: repo.Close, Repo: repo}, nil
	case config.SourceCSV:
		fs := ingest.NewFileSource(cfg.CSVPath)
		ready := func(context.Context) error {
			_, err := os.Stat(cfg.CSVPath)
			return err
		}
		return &Source{TransactionSource: fs, Ready: ready, Close: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

// NewReportWriter builds the writer named by REPORT_WRITER.
func NewReportWriter(ctx context.Context, cfg *config.Config) (sheets.ReportWriter, error) {
	switch cfg.ReportWriter {
	case config.WriterSheets:
		c, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("init google sheets writer: %w", err)
		}
		return c, nil
	case config.WriterXLSX:
		return xlsx.New(cfg.XLSXPath), nil
	case config.WriterText:
		return text.New(cfg.TextPath), nil
	case config.WriterMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown report writer %q", cfg.ReportWriter)
	}
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
