package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fiscal/internal/bills"
	"fiscal/internal/core"
	"fiscal/internal/log"

	_ "modernc.org/sqlite"
)

// MaxExportAttempts bounds how often the worker retries a failing row.
const MaxExportAttempts = 5

var ErrNotFound = errors.New("not found")

// SQLiteRepository snapshots the ledger and the bill book. It is written
// after every successful in-memory append and read back at startup.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
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
		logger:  logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveTransaction stores tx. Saving an id that already exists is a no-op.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	n, err := r.queries.InsertTransaction(ctx, toParams(tx))
	if err != nil {
		return fmt.Errorf("insert transaction %d: %w", tx.ID, err)
	}
	if n == 0 {
		r.logger.DebugContext(ctx, "Transaction already stored", log.FieldTxID, tx.ID)
		return nil
	}
	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		log.NewFields().WithTransaction(tx.ID, tx.Kind.String(), tx.Amount.Cents, tx.Category).ToSlice()...)
	return nil
}

// SaveTransactions stores txs in one database transaction, in order.
func (r *SQLiteRepository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	q := r.queries.WithTx(dbtx)
	for _, tx := range txs {
		if _, err := q.InsertTransaction(ctx, toParams(tx)); err != nil {
			return fmt.Errorf("insert transaction %d: %w", tx.ID, err)
		}
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadTransactions returns every stored transaction in insertion order.
func (r *SQLiteRepository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return fromRow(row)
}

// PendingExports returns ids of rows not yet exported, oldest first, skipping
// rows that already failed MaxExportAttempts times.
func (r *SQLiteRepository) PendingExports(ctx context.Context, limit int) ([]int64, error) {
	ids, err := r.queries.PendingExports(ctx, MaxExportAttempts, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("pending exports: %w", err)
	}
	return ids, nil
}

// IsExported reports whether the transaction already reached the spreadsheet.
func (r *SQLiteRepository) IsExported(ctx context.Context, id int64) (bool, error) {
	status, err := r.queries.ExportStatus(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("export status %d: %w", id, err)
	}
	return status == "exported", nil
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64, ref string) error {
	n, err := r.queries.MarkExported(ctx, id, ref)
	if err != nil {
		return fmt.Errorf("mark exported %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("mark exported %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	n, err := r.queries.MarkExportError(ctx, id, msg)
	if err != nil {
		return fmt.Errorf("mark export error %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("mark export error %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) SaveBill(ctx context.Context, b bills.Bill) error {
	err := r.queries.InsertBill(ctx, BillRow{
		ID:          b.ID,
		Name:        b.Name,
		AmountCents: b.Amount.Cents,
		DueDate:     b.DueDate.String(),
		Every:       string(b.Every),
	})
	if err != nil {
		return fmt.Errorf("insert bill %s: %w", b.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) LoadBills(ctx context.Context) ([]bills.Bill, error) {
	rows, err := r.queries.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	out := make([]bills.Bill, 0, len(rows))
	for _, row := range rows {
		due, err := core.ParseDate(row.DueDate)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", row.ID, err)
		}
		out = append(out, bills.Bill{
			ID:      row.ID,
			Name:    row.Name,
			Amount:  core.Money{Cents: row.AmountCents},
			DueDate: due,
			Every:   bills.Frequency(row.Every),
		})
	}
	return out, nil
}

func toParams(tx core.Transaction) InsertTransactionParams {
	return InsertTransactionParams{
		ID:          tx.ID,
		Kind:        string(tx.Kind),
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Description: strings.TrimSpace(tx.Description),
		Date:        tx.Date.String(),
	}
}

func fromRow(row TransactionRow) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", row.ID, err)
	}
	return core.Transaction{
		ID:          row.ID,
		Kind:        core.Kind(row.Kind),
		Amount:      core.Money{Cents: row.AmountCents},
		Category:    row.Category,
		Description: row.Description,
		Date:        date,
	}, nil
}
