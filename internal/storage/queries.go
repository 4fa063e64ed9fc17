package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
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

type TransactionRow struct {
	ID           int64
	Kind         string
	AmountCents  int64
	Category     string
	Description  string
	Date         string
	ExportStatus string
	SheetsRef    sql.NullString
}

const insertTransaction = `INSERT INTO transactions (id, kind, amount_cents, category, description, date)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`

type InsertTransactionParams struct {
	ID          int64
	Kind        string
	AmountCents int64
	Category    string
	Description string
	Date        string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertTransaction,
		arg.ID, arg.Kind, arg.AmountCents, arg.Category, arg.Description, arg.Date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const selectTransactionColumns = `SELECT id, kind, amount_cents, category, description, date, export_status, sheets_ref FROM transactions`

func scanTransaction(row interface{ Scan(...any) error }) (TransactionRow, error) {
	var t TransactionRow
	err := row.Scan(&t.ID, &t.Kind, &t.AmountCents, &t.Category, &t.Description, &t.Date, &t.ExportStatus, &t.SheetsRef)
	return t, err
}

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, selectTransactionColumns+` ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, selectTransactionColumns+` WHERE id = ?`, id))
}

const pendingExports = `SELECT id FROM transactions
WHERE export_status IN ('pending', 'error') AND export_attempts < ?
ORDER BY position
LIMIT ?`

func (q *Queries) PendingExports(ctx context.Context, maxAttempts, limit int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, pendingExports, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const exportStatus = `SELECT export_status FROM transactions WHERE id = ?`

func (q *Queries) ExportStatus(ctx context.Context, id int64) (string, error) {
	var status string
	err := q.db.QueryRowContext(ctx, exportStatus, id).Scan(&status)
	return status, err
}

const markExported = `UPDATE transactions
SET export_status = 'exported', exported_at = CURRENT_TIMESTAMP, sheets_ref = ?, last_error = NULL,
    export_attempts = export_attempts + 1
WHERE id = ?`

func (q *Queries) MarkExported(ctx context.Context, id int64, ref string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markExported, ref, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markExportError = `UPDATE transactions
SET export_status = 'error', last_error = ?, export_attempts = export_attempts + 1
WHERE id = ?`

func (q *Queries) MarkExportError(ctx context.Context, id int64, msg string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markExportError, msg, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type BillRow struct {
	ID          string
	Name        string
	AmountCents int64
	DueDate     string
	Every       string
}

const insertBill = `INSERT INTO bills (id, name, amount_cents, due_date, every)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`

func (q *Queries) InsertBill(ctx context.Context, b BillRow) error {
	_, err := q.db.ExecContext(ctx, insertBill, b.ID, b.Name, b.AmountCents, b.DueDate, b.Every)
	return err
}

func (q *Queries) ListBills(ctx context.Context) ([]BillRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, amount_cents, due_date, every FROM bills ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BillRow
	for rows.Next() {
		var b BillRow
		if err := rows.Scan(&b.ID, &b.Name, &b.AmountCents, &b.DueDate, &b.Every); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
