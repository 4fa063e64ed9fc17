package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is an immutable income or expense event recorded in the ledger.
	Transaction struct {
		ID          int64  `json:"id"`
		Kind        Kind   `json:"kind"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        Date   `json:"date"`
	}

	// Candidate is the unvalidated input of a ledger append.
	Candidate struct {
		Kind        Kind
		Amount      Money
		Category    string
		Description string
		Date        Date
	}
)

var (
	ErrInvalidKind      = errors.New("kind must be income or expense")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrUnknownCategory  = errors.New("category not allowed for kind")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidDate      = errors.New("invalid date")
)

// ValidationError reports why a candidate was rejected. It wraps one of the
// sentinel errors above so callers can use errors.Is.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// Category vocabularies offered by the transaction form. They are disjoint per
// kind, though a name such as "Other" may exist under both.
var (
	ExpenseCategories = []string{
		"Rent/PG", "Food & Dining", "Transport", "Entertainment", "Shopping",
		"Mobile & Internet", "Education", "Subscriptions", "Health", "Other",
	}
	IncomeCategories = []string{
		"Salary/Stipend", "Freelance", "Pocket Money", "Gifts", "Scholarships", "Other",
	}
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// CategoriesFor returns a copy of the allowed categories for kind.
func CategoriesFor(k Kind) []string {
	switch k {
	case Income:
		return append([]string(nil), IncomeCategories...)
	case Expense:
		return append([]string(nil), ExpenseCategories...)
	}
	return nil
}

// IsAllowedCategory reports whether category belongs to the vocabulary of kind.
func IsAllowedCategory(k Kind, category string) bool {
	var set []string
	switch k {
	case Income:
		set = IncomeCategories
	case Expense:
		set = ExpenseCategories
	default:
		return false
	}
	for _, c := range set {
		if c == category {
			return true
		}
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 || d.Nanosecond() != 0 {
		return fmt.Errorf("%w: time of day not allowed", ErrInvalidDate)
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string. Out-of-range days such as 2024-02-30
// are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// Before compares calendar dates.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks a candidate against the ledger's admission rules.
func (c Candidate) Validate() error {
	if !c.Kind.Valid() {
		return invalid("kind", ErrInvalidKind)
	}
	if err := c.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if !IsAllowedCategory(c.Kind, c.Category) {
		return invalid("category", fmt.Errorf("%w: %q for %s", ErrUnknownCategory, c.Category, c.Kind))
	}
	if len(strings.TrimSpace(c.Description)) == 0 {
		return invalid("description", ErrEmptyDescription)
	}
	if err := c.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	return nil
}

// Signed returns the amount as it affects the balance: positive for income,
// negative for expenses.
func (t Transaction) Signed() Money {
	if t.Kind == Expense {
		return Money{Cents: -t.Amount.Cents}
	}
	return t.Amount
}

// Period returns the calendar month the transaction belongs to.
func (t Transaction) Period() Period {
	return PeriodOf(t.Date)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	return d.UnmarshalText([]byte(s))
}
