package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscal/internal/core"
)

func candidate(kind core.Kind, cents int64, category string, y, m, d int) core.Candidate {
	return core.Candidate{
		Kind:        kind,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: category + " entry",
		Date:        core.NewDate(y, m, d),
	}
}

func TestAppendAssignsMonotonicIDs(t *testing.T) {
	s := New()
	first, err := s.Append(candidate(core.Expense, 500000, "Rent/PG", 2024, 5, 1))
	require.NoError(t, err)
	second, err := s.Append(candidate(core.Income, 2500000, "Salary/Stipend", 2024, 5, 5))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, uint64(2), s.Version())

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0])
	assert.Equal(t, second, list[1])
}

func TestAppendRejectsInvalidWithoutMutation(t *testing.T) {
	s := New()
	_, err := s.Append(candidate(core.Expense, 100, "Food & Dining", 2024, 5, 1))
	require.NoError(t, err)

	bad := []core.Candidate{
		candidate(core.Expense, 0, "Food & Dining", 2024, 5, 1),
		candidate(core.Expense, 100, "Salary/Stipend", 2024, 5, 1),
		{Kind: core.Expense, Amount: core.Money{Cents: 100}, Category: "Food & Dining", Description: "  ", Date: core.NewDate(2024, 5, 1)},
		{Kind: core.Income, Amount: core.Money{Cents: 100}, Category: "Freelance", Description: "gig"},
	}
	for _, c := range bad {
		_, err := s.Append(c)
		var ve *core.ValidationError
		assert.True(t, errors.As(err, &ve), "expected validation error for %+v, got %v", c, err)
	}
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, uint64(1), s.Version())

	next, err := s.Append(candidate(core.Expense, 100, "Food & Dining", 2024, 5, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID, "rejected candidates must not consume ids")
}

func TestAppendTrimsDescription(t *testing.T) {
	s := New()
	c := candidate(core.Expense, 100, "Transport", 2024, 5, 1)
	c.Description = "  metro card  "
	tx, err := s.Append(c)
	require.NoError(t, err)
	assert.Equal(t, "metro card", tx.Description)
}

func TestListIsASnapshot(t *testing.T) {
	s := New()
	_, err := s.Append(candidate(core.Expense, 100, "Transport", 2024, 5, 1))
	require.NoError(t, err)
	list := s.List()
	list[0].Amount = core.Money{Cents: 999}
	assert.Equal(t, int64(100), s.List()[0].Amount.Cents)
}

func TestSnapshotMatchesVersion(t *testing.T) {
	s := New()
	txs, v := s.Snapshot()
	assert.Empty(t, txs)
	assert.Equal(t, uint64(0), v)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Append(candidate(core.Expense, 100, "Transport", 2024, 5, 1))
		}()
	}
	for i := 0; i < 50; i++ {
		txs, v := s.Snapshot()
		require.Equal(t, uint64(len(txs)), v, "snapshot and version read together")
	}
	wg.Wait()

	txs, v = s.Snapshot()
	assert.Len(t, txs, 20)
	assert.Equal(t, uint64(20), v)
}

func TestConcurrentAppendsNeverCollide(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Append(candidate(core.Expense, 100, "Other", 2024, 5, 1))
		}()
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, tx := range s.List() {
		assert.False(t, seen[tx.ID], "duplicate id %d", tx.ID)
		seen[tx.ID] = true
	}
	assert.Len(t, seen, 50)
}

func TestRestore(t *testing.T) {
	history := []core.Transaction{
		{ID: 4, Kind: core.Income, Amount: core.Money{Cents: 100}, Category: "Gifts", Description: "birthday", Date: core.NewDate(2024, 1, 2)},
		{ID: 9, Kind: core.Expense, Amount: core.Money{Cents: 50}, Category: "Health", Description: "pharmacy", Date: core.NewDate(2024, 1, 3)},
	}

	t.Run("resumes counter after max id", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Restore(history))
		tx, err := s.Append(candidate(core.Expense, 10, "Other", 2024, 2, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(10), tx.ID)
		assert.Equal(t, history, s.List()[:2])
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		s := New()
		dup := append(append([]core.Transaction(nil), history...), history[0])
		err := s.Restore(dup)
		assert.ErrorIs(t, err, ErrDuplicateID)
		assert.Zero(t, s.Len())
	})

	t.Run("rejects invalid records", func(t *testing.T) {
		s := New()
		bad := []core.Transaction{{ID: 1, Kind: core.Expense, Amount: core.Money{Cents: -5}, Category: "Other", Description: "x", Date: core.NewDate(2024, 1, 1)}}
		err := s.Restore(bad)
		assert.ErrorIs(t, err, core.ErrInvalidAmount)
		assert.Zero(t, s.Len())
	})

	t.Run("refuses non empty ledger", func(t *testing.T) {
		s := New()
		_, err := s.Append(candidate(core.Expense, 10, "Other", 2024, 2, 1))
		require.NoError(t, err)
		assert.ErrorIs(t, s.Restore(history), ErrNotEmpty)
	})
}

func TestReadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	body := `[
		{"kind":"expense","amount":5000,"category":"Rent/PG","description":"rent","date":"2024-05-01"},
		{"id":7,"kind":"income","amount":"25000.50","category":"Salary/Stipend","description":"salary","date":"2024-05-05"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	txs, err := ReadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(1), txs[0].ID)
	assert.Equal(t, int64(500000), txs[0].Amount.Cents)
	assert.Equal(t, int64(7), txs[1].ID)
	assert.Equal(t, int64(2500050), txs[1].Amount.Cents)
	assert.Equal(t, "2024-05-05", txs[1].Date.String())

	s := New()
	require.NoError(t, s.Restore(txs))
}

func TestReadSeedFileRejectsOverflowingAmount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	body := `[{"kind":"expense","amount":100000000000000000000,"category":"Rent/PG","description":"rent","date":"2024-05-01"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	txs, err := ReadSeedFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))
	assert.Nil(t, txs)
}
