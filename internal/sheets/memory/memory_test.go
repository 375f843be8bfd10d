package memory

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestSheetAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := core.Transaction{
		ID: "t1", UserID: "u1", Type: core.Expense, Amount: "12.30",
		Category: "Food", Description: "Lunch", Date: time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC),
	}
	ref, err := s.Append(ctx, tx)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	other := tx
	other.Date = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.Append(ctx, other); err != nil {
		t.Fatalf("append: %v", err)
	}

	march, err := s.ListTransactions(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(march) != 1 || march[0].ID != "t1" {
		t.Fatalf("unexpected march rows: %+v", march)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestSheetRejectsInvalidRows(t *testing.T) {
	s := New()
	if _, err := s.Append(context.Background(), core.Transaction{Amount: "0"}); err == nil {
		t.Fatal("expected validation error")
	}
	if s.Len() != 0 {
		t.Fatal("invalid row was stored")
	}
	if _, err := s.ListTransactions(context.Background(), 2025, 0); err == nil {
		t.Fatal("expected error for month 0")
	}
}
