// Package ledger holds the append-only, ordered sequence of transactions for a
// session. It is the only writer of ledger state; every derived view is
// computed from the snapshot returned by List.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"fiscal/internal/core"
)

var (
	ErrDuplicateID = errors.New("duplicate transaction id")
	ErrNotEmpty    = errors.New("ledger already has transactions")
)

type Store struct {
	mu      sync.RWMutex
	items   []core.Transaction
	nextID  int64
	version uint64
}

func New() *Store {
	return &Store{nextID: 1}
}

// Append validates the candidate and, when it is admissible, stores it at the
// end of the ledger with the next id from the counter. A rejected candidate
// leaves the ledger untouched.
func (s *Store) Append(c core.Candidate) (core.Transaction, error) {
	c.Description = strings.TrimSpace(c.Description)
	if err := c.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx := core.Transaction{
		ID:          s.nextID,
		Kind:        c.Kind,
		Amount:      c.Amount,
		Category:    c.Category,
		Description: c.Description,
		Date:        c.Date,
	}
	s.nextID++
	s.items = append(s.items, tx)
	s.version++
	return tx, nil
}

// List returns a copy of the ledger in insertion order.
func (s *Store) List() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...)
}

// Snapshot returns a copy of the ledger together with the version it was
// taken at, under a single read lock.
func (s *Store) Snapshot() ([]core.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), s.version
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increments on every successful append or restore.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Restore seeds an empty ledger with historical records, keeping their ids and
// order. The counter resumes after the highest restored id. Nothing is stored
// if any record is invalid or an id repeats.
func (s *Store) Restore(txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) > 0 {
		return ErrNotEmpty
	}

	ids := make(map[int64]struct{}, len(txs))
	maxID := int64(0)
	for _, tx := range txs {
		if tx.ID <= 0 {
			return fmt.Errorf("restore: transaction id %d must be positive", tx.ID)
		}
		if _, dup := ids[tx.ID]; dup {
			return fmt.Errorf("restore: %w: %d", ErrDuplicateID, tx.ID)
		}
		c := core.Candidate{Kind: tx.Kind, Amount: tx.Amount, Category: tx.Category, Description: tx.Description, Date: tx.Date}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("restore: transaction %d: %w", tx.ID, err)
		}
		ids[tx.ID] = struct{}{}
		if tx.ID > maxID {
			maxID = tx.ID
		}
	}

	s.items = append([]core.Transaction(nil), txs...)
	s.nextID = maxID + 1
	if len(txs) > 0 {
		s.version++
	}
	return nil
}
