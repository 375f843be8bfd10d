package memory

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
	"fintrack/internal/records/recordstest"
)

func TestStoreContract(t *testing.T) {
	recordstest.Run(t, func(*testing.T) records.Store { return New() })
}

func TestSavingsGoalsNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s := New(WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))

	ctx := context.Background()
	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		g, err := s.CreateSavingsGoal(ctx, core.SavingsGoal{UserID: "u1", Name: name, TargetAmount: "100.00"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, g.ID)
	}

	goals, _ := s.ListSavingsGoals(ctx, "u1")
	if len(goals) != 3 || goals[0].ID != ids[2] || goals[2].ID != ids[0] {
		t.Fatalf("expected newest goal first, got %+v", goals)
	}
}

func TestSameDateOrderedByCreation(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s := New(WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))

	ctx := context.Background()
	date := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	first, _ := s.CreateTransaction(ctx, core.Transaction{UserID: "u1", Type: core.Expense, Amount: "1.00", Date: date})
	second, _ := s.CreateTransaction(ctx, core.Transaction{UserID: "u1", Type: core.Expense, Amount: "2.00", Date: date})

	txs, _ := s.ListTransactions(ctx, "u1")
	if txs[0].ID != second.ID || txs[1].ID != first.ID {
		t.Fatalf("expected later-created transaction first on equal dates")
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	monthly := core.Amount("10.00")
	if _, err := s.CreateSavingsGoal(ctx, core.SavingsGoal{UserID: "u1", Name: "n", TargetAmount: "1.00", MonthlyTarget: &monthly}); err != nil {
		t.Fatalf("create: %v", err)
	}
	goals, _ := s.ListSavingsGoals(ctx, "u1")
	*goals[0].MonthlyTarget = "999.00"

	again, _ := s.ListSavingsGoals(ctx, "u1")
	if *again[0].MonthlyTarget != "10.00" {
		t.Fatalf("stored goal mutated through returned pointer")
	}
}
