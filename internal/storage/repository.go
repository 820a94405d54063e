package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"invdefects/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNoRuns is returned by LatestRun when no report was ever published.
var ErrNoRuns = errors.New("no report runs recorded")

// SQLiteRepository stores the transaction table and the report run history.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	path    string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		path:    dbPath,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReplaceAll swaps the whole transaction table for records in one
// transaction. Input order is preserved on load.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []core.TransactionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteAllTransactions(ctx); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}

	stmt, err := q.PrepareInsertTransaction(ctx)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if err := execInsertTransaction(ctx, stmt, toRow(rec, i)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", rec.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transactions replaced in SQLite",
		"path", r.path,
		"records", len(records))
	return nil
}

// LoadTransactions implements services.TransactionSource.
func (r *SQLiteRepository) LoadTransactions(ctx context.Context) ([]core.TransactionRecord, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	records := make([]core.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", row.TransactionID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return int(n), nil
}

// RecordRun stores a published report bundle in the run history.
func (r *SQLiteRepository) RecordRun(ctx context.Context, b core.ReportBundle, ref string) (ReportRun, error) {
	run, err := r.queries.CreateReportRun(ctx, CreateReportRunParams{
		Fingerprint: b.Fingerprint,
		RecordCount: int64(b.Overall.TotalRecords),
		SheetRef:    nullString(ref),
		GeneratedAt: b.GeneratedAt,
	})
	if err != nil {
		return ReportRun{}, fmt.Errorf("create report run: %w", err)
	}
	slog.InfoContext(ctx, "Report run recorded",
		"id", run.ID,
		"fingerprint", run.Fingerprint,
		"sheet_ref", ref)
	return run, nil
}

// LatestRun returns the most recently generated report run.
func (r *SQLiteRepository) LatestRun(ctx context.Context) (ReportRun, error) {
	run, err := r.queries.LatestReportRun(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ReportRun{}, ErrNoRuns
	}
	if err != nil {
		return ReportRun{}, fmt.Errorf("latest report run: %w", err)
	}
	return run, nil
}

func (r *SQLiteRepository) String() string { return "sqlite:" + r.path }

func toRow(rec core.TransactionRecord, position int) InventoryTransaction {
	return InventoryTransaction{
		TransactionID: rec.TransactionID,
		Date:          nullString(rec.Date.String()),
		Warehouse:     nullString(rec.Warehouse),
		Sku:           nullString(rec.SKU),
		ExpectedQty:   int64(rec.ExpectedQty),
		ActualQty:     int64(rec.ActualQty),
		Location:      nullString(rec.Location),
		OperatorID:    nullString(rec.OperatorID),
		EntryMethod:   nullString(rec.EntryMethod),
		QtyVariance:   int64(rec.QtyVariance),
		HasDefect:     rec.HasDefect,
		DefectType:    nullString(rec.DefectType),
		Position:      int64(position),
	}
}

func fromRow(row InventoryTransaction) (core.TransactionRecord, error) {
	rec := core.TransactionRecord{
		TransactionID: row.TransactionID,
		Warehouse:     row.Warehouse.String,
		SKU:           row.Sku.String,
		ExpectedQty:   int(row.ExpectedQty),
		ActualQty:     int(row.ActualQty),
		Location:      row.Location.String,
		OperatorID:    row.OperatorID.String,
		EntryMethod:   row.EntryMethod.String,
		QtyVariance:   int(row.QtyVariance),
		HasDefect:     row.HasDefect,
		DefectType:    row.DefectType.String,
	}
	if row.Date.Valid && row.Date.String != "" {
		d, err := core.ParseDate(row.Date.String)
		if err != nil {
			return core.TransactionRecord{}, fmt.Errorf("parse date %q: %w", row.Date.String, err)
		}
		rec.Date = d
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
