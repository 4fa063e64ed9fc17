// Package bills keeps bill reminders and works out which of them fall due
// next.
package bills

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fiscal/internal/core"
)

type Frequency string

const (
	Once    Frequency = "once"
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

var (
	ErrEmptyName        = errors.New("empty bill name")
	ErrUnknownFrequency = errors.New("unknown bill frequency")
	ErrDuplicateBill    = errors.New("duplicate bill id")
)

// Bill is a reminder for a payment due on DueDate and, unless it is a
// one-off, on every following occurrence.
type Bill struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Amount  core.Money `json:"amount"`
	DueDate core.Date  `json:"dueDate"`
	Every   Frequency  `json:"every"`
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return &core.ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if len(b.Name) > 100 {
		return &core.ValidationError{Field: "name", Err: errors.New("name too long (max 100 characters)")}
	}
	if err := b.Amount.Validate(); err != nil {
		return &core.ValidationError{Field: "amount", Err: err}
	}
	if err := b.DueDate.Validate(); err != nil {
		return &core.ValidationError{Field: "dueDate", Err: err}
	}
	if _, err := SchedulerFor(b.Every); err != nil {
		return &core.ValidationError{Field: "every", Err: err}
	}
	return nil
}

// Book is the in-memory, append-only list of bills.
type Book struct {
	mu      sync.RWMutex
	items   []Bill
	version uint64
}

func NewBook() *Book {
	return &Book{}
}

// Add validates the bill, assigns it an id when it has none and appends it.
func (b *Book) Add(bill Bill) (Bill, error) {
	bill.Name = strings.TrimSpace(bill.Name)
	if bill.Every == "" {
		bill.Every = Once
	}
	if err := bill.Validate(); err != nil {
		return Bill{}, err
	}
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if slices.ContainsFunc(b.items, func(x Bill) bool { return x.ID == bill.ID }) {
		return Bill{}, fmt.Errorf("%w: %s", ErrDuplicateBill, bill.ID)
	}
	b.items = append(b.items, bill)
	b.version++
	return bill, nil
}

func (b *Book) List() []Bill {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.items)
}

// Snapshot returns the bills and the book version read together.
func (b *Book) Snapshot() ([]Bill, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.items), b.version
}

func (b *Book) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Restore replaces an empty book with previously stored bills.
func (b *Book) Restore(bills []Bill) error {
	seen := map[string]struct{}{}
	for _, bill := range bills {
		if err := bill.Validate(); err != nil {
			return fmt.Errorf("restore bill %s: %w", bill.ID, err)
		}
		if _, dup := seen[bill.ID]; dup || bill.ID == "" {
			return fmt.Errorf("restore: %w: %q", ErrDuplicateBill, bill.ID)
		}
		seen[bill.ID] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) > 0 {
		return errors.New("restore: bill book is not empty")
	}
	b.items = slices.Clone(bills)
	if len(bills) > 0 {
		b.version++
	}
	return nil
}
