// Package recordstest holds behaviour tests shared by every records.Store
// implementation.
package recordstest

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) records.Store

// Run exercises the store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("TransactionsOrderedByDateDesc", func(t *testing.T) { testTransactionOrder(t, newStore(t)) })
	t.Run("RangeIsInclusive", func(t *testing.T) { testRangeInclusive(t, newStore(t)) })
	t.Run("TransactionUpdateDelete", func(t *testing.T) { testTransactionUpdateDelete(t, newStore(t)) })
	t.Run("SavingsGoals", func(t *testing.T) { testSavingsGoals(t, newStore(t)) })
	t.Run("RecurringOrderedByDueDate", func(t *testing.T) { testRecurring(t, newStore(t)) })
	t.Run("AllocationUpsert", func(t *testing.T) { testAllocationUpsert(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("SeedDemoIsIdempotent", func(t *testing.T) { testSeed(t, newStore(t)) })
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func mustCreateTx(t *testing.T, s records.Store, userID string, typ core.TransactionType, amount core.Amount, date time.Time) core.Transaction {
	t.Helper()
	tx, err := s.CreateTransaction(context.Background(), core.Transaction{
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Category:    "General",
		Description: "test",
		Date:        date,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if tx.ID == "" || tx.CreatedAt.IsZero() {
		t.Fatalf("expected id and createdAt to be assigned, got %+v", tx)
	}
	return tx
}

func testTransactionOrder(t *testing.T, s records.Store) {
	ctx := context.Background()
	mid := mustCreateTx(t, s, "u1", core.Expense, "10.00", day(2025, 3, 10))
	newest := mustCreateTx(t, s, "u1", core.Income, "20.00", day(2025, 3, 20))
	oldest := mustCreateTx(t, s, "u1", core.Expense, "30.00", day(2025, 3, 1))
	mustCreateTx(t, s, "u2", core.Expense, "40.00", day(2025, 3, 15))

	got, err := s.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{newest.ID, mid.ID, oldest.ID}
	if len(got) != len(want) {
		t.Fatalf("expected %d transactions, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
	if got[0].Amount != "20.00" || got[0].Type != core.Income {
		t.Fatalf("unexpected stored values: %+v", got[0])
	}
	if !got[0].Date.Equal(day(2025, 3, 20)) {
		t.Fatalf("date not preserved: %v", got[0].Date)
	}
}

func testRangeInclusive(t *testing.T, s records.Store) {
	ctx := context.Background()
	start, end := core.MonthRange(day(2025, 4, 15))

	atStart := mustCreateTx(t, s, "u1", core.Expense, "1.00", start)
	atEnd := mustCreateTx(t, s, "u1", core.Expense, "2.00", end.Truncate(time.Millisecond))
	mustCreateTx(t, s, "u1", core.Expense, "3.00", start.Add(-time.Millisecond))
	mustCreateTx(t, s, "u1", core.Expense, "4.00", end.Add(time.Nanosecond))

	got, err := s.ListTransactionsByRange(ctx, "u1", start, end)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions in range, got %d", len(got))
	}
	if got[0].ID != atEnd.ID || got[1].ID != atStart.ID {
		t.Fatalf("expected [end, start] order, got [%s, %s]", got[0].ID, got[1].ID)
	}

	empty, err := s.ListTransactionsByRange(ctx, "nobody", start, end)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no transactions for unknown user, got %d (err=%v)", len(empty), err)
	}
}

func testTransactionUpdateDelete(t *testing.T, s records.Store) {
	ctx := context.Background()
	tx := mustCreateTx(t, s, "u1", core.Expense, "10.00", day(2025, 5, 1))

	amount := core.Amount("99.90")
	category := "Rent"
	updated, found, err := s.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Amount: &amount, Category: &category})
	if err != nil || !found {
		t.Fatalf("update: found=%v err=%v", found, err)
	}
	if updated.Amount != "99.90" || updated.Category != "Rent" || updated.Description != "test" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.CreatedAt.Equal(tx.CreatedAt) {
		t.Fatalf("createdAt changed on update")
	}

	got, found, err := s.GetTransaction(ctx, tx.ID)
	if err != nil || !found || got.Amount != "99.90" {
		t.Fatalf("get after update: %+v found=%v err=%v", got, found, err)
	}

	if _, found, err := s.UpdateTransaction(ctx, "missing", core.TransactionPatch{Amount: &amount}); err != nil || found {
		t.Fatalf("update missing: found=%v err=%v", found, err)
	}

	deleted, err := s.DeleteTransaction(ctx, tx.ID)
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = s.DeleteTransaction(ctx, tx.ID)
	if err != nil || deleted {
		t.Fatalf("second delete: deleted=%v err=%v", deleted, err)
	}
	if _, found, _ := s.GetTransaction(ctx, tx.ID); found {
		t.Fatalf("transaction still present after delete")
	}
}

func testSavingsGoals(t *testing.T, s records.Store) {
	ctx := context.Background()
	g, err := s.CreateSavingsGoal(ctx, core.SavingsGoal{UserID: "u1", Name: "Bike", TargetAmount: "800.00"})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if g.CurrentAmount != "0.00" {
		t.Fatalf("expected current amount to default to 0.00, got %q", g.CurrentAmount)
	}
	if g.MonthlyTarget != nil {
		t.Fatalf("expected no monthly target, got %v", *g.MonthlyTarget)
	}

	current := core.Amount("150.00")
	monthly := core.Amount("50.00")
	updated, found, err := s.UpdateSavingsGoal(ctx, g.ID, core.SavingsGoalPatch{CurrentAmount: &current, MonthlyTarget: &monthly})
	if err != nil || !found {
		t.Fatalf("update goal: found=%v err=%v", found, err)
	}
	if updated.CurrentAmount != "150.00" || updated.MonthlyTarget == nil || *updated.MonthlyTarget != "50.00" {
		t.Fatalf("unexpected goal after update: %+v", updated)
	}

	goals, err := s.ListSavingsGoals(ctx, "u1")
	if err != nil || len(goals) != 1 {
		t.Fatalf("list goals: %d err=%v", len(goals), err)
	}

	if _, found, err := s.UpdateSavingsGoal(ctx, "missing", core.SavingsGoalPatch{}); err != nil || found {
		t.Fatalf("update missing goal: found=%v err=%v", found, err)
	}
	if ok, err := s.DeleteSavingsGoal(ctx, g.ID); err != nil || !ok {
		t.Fatalf("delete goal: ok=%v err=%v", ok, err)
	}
	if ok, err := s.DeleteSavingsGoal(ctx, g.ID); err != nil || ok {
		t.Fatalf("second delete goal: ok=%v err=%v", ok, err)
	}
}

func testRecurring(t *testing.T, s records.Store) {
	ctx := context.Background()
	create := func(desc string, due time.Time) core.RecurringTransaction {
		r, err := s.CreateRecurringTransaction(ctx, core.RecurringTransaction{
			UserID:      "u1",
			Type:        core.Expense,
			Amount:      "89.00",
			Category:    "Utilities",
			Description: desc,
			Frequency:   core.Monthly,
			NextDueDate: due,
			IsActive:    false,
		})
		if err != nil {
			t.Fatalf("create recurring: %v", err)
		}
		if !r.IsActive {
			t.Fatalf("recurring transaction must be created active")
		}
		return r
	}
	late := create("internet", day(2025, 7, 20))
	early := create("rent", day(2025, 7, 1))

	list, err := s.ListRecurringTransactions(ctx, "u1")
	if err != nil || len(list) != 2 {
		t.Fatalf("list recurring: %d err=%v", len(list), err)
	}
	if list[0].ID != early.ID || list[1].ID != late.ID {
		t.Fatalf("expected due date ascending order")
	}

	inactive := false
	freq := core.Yearly
	updated, found, err := s.UpdateRecurringTransaction(ctx, late.ID, core.RecurringTransactionPatch{IsActive: &inactive, Frequency: &freq})
	if err != nil || !found {
		t.Fatalf("update recurring: found=%v err=%v", found, err)
	}
	if updated.IsActive || updated.Frequency != core.Yearly {
		t.Fatalf("unexpected recurring after update: %+v", updated)
	}

	if ok, err := s.DeleteRecurringTransaction(ctx, "missing"); err != nil || ok {
		t.Fatalf("delete missing recurring: ok=%v err=%v", ok, err)
	}
	if ok, err := s.DeleteRecurringTransaction(ctx, early.ID); err != nil || !ok {
		t.Fatalf("delete recurring: ok=%v err=%v", ok, err)
	}
}

func testAllocationUpsert(t *testing.T, s records.Store) {
	ctx := context.Background()
	if _, found, err := s.GetSalaryAllocation(ctx, "u1"); err != nil || found {
		t.Fatalf("expected no allocation, found=%v err=%v", found, err)
	}

	first, err := s.UpsertSalaryAllocation(ctx, core.SalaryAllocation{
		UserID: "u1", MonthlySalary: "5200.00", Essentials: "60.00", Savings: "25.00", Lifestyle: "15.00",
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := s.UpsertSalaryAllocation(ctx, core.SalaryAllocation{
		UserID: "u1", MonthlySalary: "6000.00", Essentials: "50.00", Savings: "30.00", Lifestyle: "20.00",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("upsert must keep id and createdAt: first=%+v second=%+v", first, second)
	}

	got, found, err := s.GetSalaryAllocation(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("get allocation: found=%v err=%v", found, err)
	}
	if got.MonthlySalary != "6000.00" || got.Savings != "30.00" {
		t.Fatalf("allocation not overwritten: %+v", got)
	}
}

func testUsers(t *testing.T, s records.Store) {
	ctx := context.Background()
	u, err := core.NewUser("", "alice", "secret")
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	created, err := s.CreateUser(ctx, u)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id to be assigned")
	}

	byID, found, err := s.GetUser(ctx, created.ID)
	if err != nil || !found || byID.Username != "alice" {
		t.Fatalf("get user: %+v found=%v err=%v", byID, found, err)
	}
	byName, found, err := s.GetUserByUsername(ctx, "alice")
	if err != nil || !found || byName.ID != created.ID || !byName.CheckPassword("secret") {
		t.Fatalf("get user by name: %+v found=%v err=%v", byName, found, err)
	}
	if _, found, err := s.GetUserByUsername(ctx, "bob"); err != nil || found {
		t.Fatalf("unknown user: found=%v err=%v", found, err)
	}

	if _, err := s.CreateUser(ctx, u); !errors.Is(err, core.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func testSeed(t *testing.T, s records.Store) {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := records.SeedDemo(ctx, s, "demo-user-1"); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	goals, err := s.ListSavingsGoals(ctx, "demo-user-1")
	if err != nil || len(goals) != 3 {
		t.Fatalf("expected 3 demo goals, got %d (err=%v)", len(goals), err)
	}
	alloc, found, err := s.GetSalaryAllocation(ctx, "demo-user-1")
	if err != nil || !found || alloc.MonthlySalary != "5200.00" {
		t.Fatalf("unexpected demo allocation: %+v found=%v err=%v", alloc, found, err)
	}
	user, found, err := s.GetUserByUsername(ctx, records.DemoUsername)
	if err != nil || !found || user.ID != "demo-user-1" {
		t.Fatalf("unexpected demo user: %+v found=%v err=%v", user, found, err)
	}
}
