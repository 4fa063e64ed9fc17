package memory

import (
	"context"
	"fmt"
	"sync"

	"fiscal/internal/core"
	ports "fiscal/internal/sheets"
)

var _ ports.LedgerExporter = (*Exporter)(nil)

// Exporter keeps exported rows in memory. It backs the worker in development
// and in tests.
type Exporter struct {
	mu   sync.Mutex
	rows []core.Transaction
	fail error
}

func New() *Exporter {
	return &Exporter{}
}

// Export stores the transaction and returns a synthetic row reference.
func (e *Exporter) Export(_ context.Context, tx core.Transaction) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return "", e.fail
	}
	if tx.ID <= 0 {
		return "", fmt.Errorf("export transaction: invalid id %d", tx.ID)
	}
	e.rows = append(e.rows, tx)
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// FailWith makes every following Export return err. A nil err clears it.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail = err
}

func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Transaction(nil), e.rows...)
}
