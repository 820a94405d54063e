package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type InventoryTransaction struct {
	TransactionID string
	Date          sql.NullString
	Warehouse     sql.NullString
	Sku           sql.NullString
	ExpectedQty   int64
	ActualQty     int64
	Location      sql.NullString
	OperatorID    sql.NullString
	EntryMethod   sql.NullString
	QtyVariance   int64
	HasDefect     bool
	DefectType    sql.NullString
	Position      int64
}

type ReportRun struct {
	ID          int64
	Fingerprint string
	RecordCount int64
	SheetRef    sql.NullString
	GeneratedAt time.Time
	CreatedAt   time.Time
}

const deleteAllTransactions = `DELETE FROM inventory_transactions`

func (q *Queries) DeleteAllTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransactions)
	return err
}

const insertTransaction = `INSERT INTO inventory_transactions (
    transaction_id, date, warehouse, sku, expected_qty, actual_qty, location,
    operator_id, entry_method, qty_variance, has_defect, defect_type, position
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// PrepareInsertTransaction returns a statement for bulk inserts. The caller
// closes it.
func (q *Queries) PrepareInsertTransaction(ctx context.Context) (*sql.Stmt, error) {
	return q.db.PrepareContext(ctx, insertTransaction)
}

func execInsertTransaction(ctx context.Context, stmt *sql.Stmt, t InventoryTransaction) error {
	_, err := stmt.ExecContext(ctx,
		t.TransactionID,
		t.Date,
		t.Warehouse,
		t.Sku,
		t.ExpectedQty,
		t.ActualQty,
		t.Location,
		t.OperatorID,
		t.EntryMethod,
		t.QtyVariance,
		t.HasDefect,
		t.DefectType,
		t.Position,
	)
	return err
}

const listTransactions = `SELECT transaction_id, date, warehouse, sku, expected_qty, actual_qty, location,
    operator_id, entry_method, qty_variance, has_defect, defect_type, position
FROM inventory_transactions
ORDER BY position`

func (q *Queries) ListTransactions(ctx context.Context) ([]InventoryTransaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InventoryTransaction
	for rows.Next() {
		var i InventoryTransaction
		if err := rows.Scan(
			&i.TransactionID,
			&i.Date,
			&i.Warehouse,
			&i.Sku,
			&i.ExpectedQty,
			&i.ActualQty,
			&i.Location,
			&i.OperatorID,
			&i.EntryMethod,
			&i.QtyVariance,
			&i.HasDefect,
			&i.DefectType,
			&i.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTransactions = `SELECT COUNT(*) FROM inventory_transactions`

func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createReportRun = `INSERT INTO report_runs (fingerprint, record_count, sheet_ref, generated_at)
VALUES (?, ?, ?, ?)
RETURNING id, fingerprint, record_count, sheet_ref, generated_at, created_at`

type CreateReportRunParams struct {
	Fingerprint string
	RecordCount int64
	SheetRef    sql.NullString
	GeneratedAt time.Time
}

func (q *Queries) CreateReportRun(ctx context.Context, arg CreateReportRunParams) (ReportRun, error) {
	row := q.db.QueryRowContext(ctx, createReportRun,
		arg.Fingerprint,
		arg.RecordCount,
		arg.SheetRef,
		arg.GeneratedAt,
	)
	var i ReportRun
	err := row.Scan(
		&i.ID,
		&i.Fingerprint,
		&i.RecordCount,
		&i.SheetRef,
		&i.GeneratedAt,
		&i.CreatedAt,
	)
	return i, err
}

const latestReportRun = `SELECT id, fingerprint, record_count, sheet_ref, generated_at, created_at
FROM report_runs
ORDER BY generated_at DESC, id DESC
LIMIT 1`

func (q *Queries) LatestReportRun(ctx context.Context) (ReportRun, error) {
	row := q.db.QueryRowContext(ctx, latestReportRun)
	var i ReportRun
	err := row.Scan(
		&i.ID,
		&i.Fingerprint,
		&i.RecordCount,
		&i.SheetRef,
		&i.GeneratedAt,
		&i.CreatedAt,
	)
	return i, err
}
