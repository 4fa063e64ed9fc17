package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fiscal/internal/amqp"
	"fiscal/internal/core"
	"fiscal/internal/log"
	"fiscal/internal/sheets"
)

// Store is the slice of the SQLite snapshot the worker reads and updates.
type Store interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	IsExported(ctx context.Context, id int64) (bool, error)
	PendingExports(ctx context.Context, limit int) ([]int64, error)
	MarkExported(ctx context.Context, id int64, ref string) error
	MarkExportError(ctx context.Context, id int64, cause error) error
}

// ExportWorker copies recorded transactions from SQLite to the spreadsheet.
// Events drive the fast path; ProcessPending sweeps rows whose events were lost.
type ExportWorker struct {
	store     Store
	exporter  sheets.LedgerExporter
	batchSize int
	logger    *log.Logger
}

func NewExportWorker(store Store, exporter sheets.LedgerExporter, batchSize int, logger *log.Logger) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExportWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage processes one ledger event from AMQP.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.LedgerEvent) error {
	switch msg.Type {
	case amqp.TransactionRecorded:
		w.logger.InfoContext(ctx, "Processing transaction event",
			log.FieldTxID, msg.TransactionID,
			log.FieldVersion, msg.Version,
			log.FieldMessageID, msg.MessageID)
		return w.export(ctx, msg.TransactionID)
	case amqp.BillScheduled:
		// Bills are not part of the exported ledger.
		w.logger.DebugContext(ctx, "Ignoring bill event", log.FieldBillID, msg.BillID)
		return nil
	default:
		return fmt.Errorf("unsupported event type %q", msg.Type)
	}
}

// ProcessPending exports up to one batch of rows still marked pending.
// It returns the number of rows exported.
func (w *ExportWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.sweep(ctx, w.batchSize)
}

// StartupCheck sweeps a larger batch to catch up after worker downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) (int, error) {
	n, err := w.sweep(ctx, w.batchSize*5)
	if err != nil {
		return n, fmt.Errorf("startup export check: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup export check completed", "exported", n)
	return n, nil
}

func (w *ExportWorker) sweep(ctx context.Context, limit int) (int, error) {
	ids, err := w.store.PendingExports(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending exports: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending exports", "count", len(ids))

	exported := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if err := w.export(ctx, id); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export transaction", log.FieldTxID, id, log.FieldError, err)
			continue
		}
		exported++
	}
	return exported, nil
}

// Run sweeps pending rows every interval until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "Pending export sweep failed", log.FieldError, err)
			}
		}
	}
}

func (w *ExportWorker) export(ctx context.Context, id int64) error {
	done, err := w.store.IsExported(ctx, id)
	if err != nil {
		return fmt.Errorf("check export status: %w", err)
	}
	if done {
		w.logger.DebugContext(ctx, "Transaction already exported", log.FieldTxID, id)
		return nil
	}

	tx, err := w.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.exporter.Export(ctx, tx)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, id, err); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark export error", log.FieldTxID, id, log.FieldError, markErr)
		}
		return fmt.Errorf("export to sheets: %w", err)
	}

	if err := w.store.MarkExported(ctx, id, ref); err != nil {
		// The row is in the sheet; a failed mark only risks a duplicate row
		// on the next sweep.
		w.logger.ErrorContext(ctx, "Failed to mark as exported", log.FieldTxID, id, log.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Exported transaction",
		log.FieldTxID, id,
		log.FieldSheetsRef, ref,
		log.FieldKind, tx.Kind,
		log.FieldAmountCents, tx.Amount.Cents)
	return nil
}
