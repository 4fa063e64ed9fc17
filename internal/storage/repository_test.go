package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fiscal/internal/bills"
	"fiscal/internal/core"
	"fiscal/internal/log"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "fiscal.db"), log.Discard())
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTx(id int64, day int) core.Transaction {
	return core.Transaction{
		ID:          id,
		Kind:        core.Expense,
		Amount:      core.FromUnits(450),
		Category:    "Food & Dining",
		Description: "Swiggy Order",
		Date:        core.NewDate(2024, 5, day),
	}
}

func TestSQLiteRepository_TransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	// Insertion order, not id order, is what loads back.
	want := []core.Transaction{sampleTx(3, 1), sampleTx(1, 2), sampleTx(2, 3)}
	for _, tx := range want {
		if err := repo.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := repo.SaveTransaction(ctx, sampleTx(3, 9)); err != nil {
		t.Fatalf("duplicate save should be a no-op: %v", err)
	}

	got, err := repo.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || !got[i].Date.Equal(want[i].Date) || got[i].Amount != want[i].Amount {
			t.Fatalf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	one, err := repo.GetTransaction(ctx, 1)
	if err != nil || one.Date.String() != "2024-05-02" {
		t.Fatalf("get: %+v %v", one, err)
	}
	if _, err := repo.GetTransaction(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepository_SaveTransactionsBatch(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	if err := repo.SaveTransactions(ctx, []core.Transaction{sampleTx(1, 1), sampleTx(2, 2)}); err != nil {
		t.Fatal(err)
	}
	got, err := repo.LoadTransactions(ctx)
	if err != nil || len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d (%v)", len(got), err)
	}
}

func TestSQLiteRepository_ExportLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	for i := int64(1); i <= 3; i++ {
		if err := repo.SaveTransaction(ctx, sampleTx(i, int(i))); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := repo.PendingExports(ctx, 10)
	if err != nil || len(ids) != 3 {
		t.Fatalf("expected 3 pending, got %v (%v)", ids, err)
	}

	if err := repo.MarkExported(ctx, 1, "Ledger!A2:E2"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < MaxExportAttempts; i++ {
		if err := repo.MarkExportError(ctx, 2, errors.New("quota")); err != nil {
			t.Fatal(err)
		}
	}

	ids, err = repo.PendingExports(ctx, 10)
	if err != nil || len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("expected only id 3 pending, got %v (%v)", ids, err)
	}
	if err := repo.MarkExported(ctx, 42, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if done, err := repo.IsExported(ctx, 1); err != nil || !done {
		t.Fatalf("expected id 1 exported, got %v (%v)", done, err)
	}
	if done, err := repo.IsExported(ctx, 3); err != nil || done {
		t.Fatalf("expected id 3 pending, got %v (%v)", done, err)
	}
	if _, err := repo.IsExported(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepository_Bills(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	b := bills.Bill{ID: "b-1", Name: "Wifi", Amount: core.FromUnits(699), DueDate: core.NewDate(2024, 6, 20), Every: bills.Monthly}
	if err := repo.SaveBill(ctx, b); err != nil {
		t.Fatal(err)
	}
	got, err := repo.LoadBills(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected 1 bill, got %v (%v)", got, err)
	}
	if got[0].ID != b.ID || got[0].Every != bills.Monthly || got[0].DueDate.String() != "2024-06-20" {
		t.Fatalf("unexpected bill %+v", got[0])
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fiscal.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}
