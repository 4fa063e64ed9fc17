package memory

import (
	"context"
	"errors"
	"testing"

	"fiscal/internal/core"
)

func TestExporterAppendsRows(t *testing.T) {
	e := New()
	tx := core.Transaction{ID: 1, Kind: core.Income, Amount: core.Money{Cents: 100}, Category: "Salary/Stipend", Description: "pay", Date: core.NewDate(2024, 1, 1)}

	ref, err := e.Export(context.Background(), tx)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}
	tx.ID = 2
	ref, _ = e.Export(context.Background(), tx)
	if ref != "mem:2" {
		t.Fatalf("unexpected second ref %q", ref)
	}
	if rows := e.Rows(); len(rows) != 2 || rows[1].ID != 2 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestExporterFailure(t *testing.T) {
	e := New()
	boom := errors.New("quota exceeded")
	e.FailWith(boom)

	_, err := e.Export(context.Background(), core.Transaction{ID: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	e.FailWith(nil)
	if _, err := e.Export(context.Background(), core.Transaction{ID: 0}); err == nil {
		t.Fatal("expected error for id 0")
	}
	if len(e.Rows()) != 0 {
		t.Fatal("failed exports must not be stored")
	}
}
