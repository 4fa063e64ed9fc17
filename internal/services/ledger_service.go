package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fiscal/internal/bills"
	"fiscal/internal/core"
	"fiscal/internal/ledger"
	"fiscal/internal/log"
)

type (
	// Snapshot persists records after the in-memory append succeeded.
	Snapshot interface {
		SaveTransaction(ctx context.Context, tx core.Transaction) error
		SaveTransactions(ctx context.Context, txs []core.Transaction) error
		SaveBill(ctx context.Context, b bills.Bill) error
	}

	// Source supplies previously persisted records at startup.
	Source interface {
		LoadTransactions(ctx context.Context) ([]core.Transaction, error)
		LoadBills(ctx context.Context) ([]bills.Bill, error)
	}

	// Publisher announces new records to downstream consumers.
	Publisher interface {
		PublishTransaction(ctx context.Context, id int64, version uint64) error
		PublishBill(ctx context.Context, id string) error
	}

	// Pinger is implemented by collaborators that can report readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// LedgerService orchestrates appends across the in-memory ledger, the SQLite
// snapshot and AMQP. The ledger is the source of truth; snapshot and publish
// failures are logged and never fail an append.
type LedgerService struct {
	ledger    *ledger.Store
	book      *bills.Book
	snapshot  Snapshot
	publisher Publisher
	logger    *log.Logger
	events    *log.StructuredLogger
}

// NewLedgerService wires the collaborators. snapshot and publisher may be nil.
func NewLedgerService(store *ledger.Store, book *bills.Book, snapshot Snapshot, publisher Publisher, logger *log.Logger) *LedgerService {
	logger = logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		ledger:    store,
		book:      book,
		snapshot:  snapshot,
		publisher: publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

// Record validates and appends a candidate, then persists and announces it.
func (s *LedgerService) Record(ctx context.Context, c core.Candidate) (core.Transaction, error) {
	tx, err := s.ledger.Append(c)
	if err != nil {
		return core.Transaction{}, err
	}
	s.events.LogTransactionRecorded(ctx, tx.ID, string(tx.Kind), tx.Amount.Cents, tx.Category)

	if s.snapshot != nil {
		if err := s.snapshot.SaveTransaction(ctx, tx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to persist transaction", log.FieldTxID, tx.ID, log.FieldError, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishTransaction(ctx, tx.ID, s.ledger.Version()); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction event", log.FieldTxID, tx.ID, log.FieldError, err)
		}
	} else {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping event", log.FieldTxID, tx.ID)
	}
	return tx, nil
}

func (s *LedgerService) Transactions() []core.Transaction {
	return s.ledger.List()
}

// ScheduleBill adds a bill reminder, then persists and announces it.
func (s *LedgerService) ScheduleBill(ctx context.Context, b bills.Bill) (bills.Bill, error) {
	added, err := s.book.Add(b)
	if err != nil {
		return bills.Bill{}, err
	}
	s.logger.InfoContext(ctx, "Bill scheduled", log.FieldBillID, added.ID, "frequency", added.Every, "due", added.DueDate)

	if s.snapshot != nil {
		if err := s.snapshot.SaveBill(ctx, added); err != nil {
			s.logger.ErrorContext(ctx, "Failed to persist bill", log.FieldBillID, added.ID, log.FieldError, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishBill(ctx, added.ID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish bill event", log.FieldBillID, added.ID, log.FieldError, err)
		}
	}
	return added, nil
}

func (s *LedgerService) Bills() []bills.Bill {
	return s.book.List()
}

// RestoreFrom loads persisted records into the empty ledger and bill book.
func (s *LedgerService) RestoreFrom(ctx context.Context, src Source) error {
	txs, err := src.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	reminders, err := src.LoadBills(ctx)
	if err != nil {
		return fmt.Errorf("load bills: %w", err)
	}
	if err := s.ledger.Restore(txs); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	if err := s.book.Restore(reminders); err != nil {
		return fmt.Errorf("restore bills: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger restored", "transactions", len(txs), "bills", len(reminders), log.FieldOperation, log.OpRestore)
	return nil
}

// Seed restores txs into the empty ledger and copies them to the snapshot.
func (s *LedgerService) Seed(ctx context.Context, txs []core.Transaction) error {
	if err := s.ledger.Restore(txs); err != nil {
		return fmt.Errorf("seed ledger: %w", err)
	}
	if s.snapshot != nil {
		if err := s.snapshot.SaveTransactions(ctx, txs); err != nil {
			return fmt.Errorf("persist seed: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "Ledger seeded", "transactions", len(txs))
	return nil
}

// Ready reports whether the snapshot store is reachable.
func (s *LedgerService) Ready(ctx context.Context) error {
	if p, ok := s.snapshot.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the snapshot and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.snapshot.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
