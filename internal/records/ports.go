// Package records defines the record store used by every fintrack component.
//
// Two implementations satisfy Store: the map-backed store in records/memory and
// the SQL repositories in internal/storage. Callers depend only on these
// interfaces.
package records

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Lookups, updates and deletes report a missing id through a found flag
// rather than an error.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		// ListTransactionsByRange returns transactions with start <= date <= end,
		// most recent first.
		ListTransactionsByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, bool, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, bool, error)
		DeleteTransaction(ctx context.Context, id string) (bool, error)
	}

	SavingsGoalStore interface {
		ListSavingsGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error)
		CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
		UpdateSavingsGoal(ctx context.Context, id string, p core.SavingsGoalPatch) (core.SavingsGoal, bool, error)
		DeleteSavingsGoal(ctx context.Context, id string) (bool, error)
	}

	RecurringStore interface {
		ListRecurringTransactions(ctx context.Context, userID string) ([]core.RecurringTransaction, error)
		// CreateRecurringTransaction always stores the record as active.
		CreateRecurringTransaction(ctx context.Context, r core.RecurringTransaction) (core.RecurringTransaction, error)
		UpdateRecurringTransaction(ctx context.Context, id string, p core.RecurringTransactionPatch) (core.RecurringTransaction, bool, error)
		DeleteRecurringTransaction(ctx context.Context, id string) (bool, error)
	}

	AllocationStore interface {
		GetSalaryAllocation(ctx context.Context, userID string) (core.SalaryAllocation, bool, error)
		// UpsertSalaryAllocation replaces the user's allocation, keeping the id and
		// createdAt of an existing one.
		UpsertSalaryAllocation(ctx context.Context, a core.SalaryAllocation) (core.SalaryAllocation, error)
	}

	UserStore interface {
		GetUser(ctx context.Context, id string) (core.User, bool, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, bool, error)
		CreateUser(ctx context.Context, u core.User) (core.User, error)
	}

	// Store is the complete record store.
	Store interface {
		TransactionStore
		SavingsGoalStore
		RecurringStore
		AllocationStore
		UserStore
		Ping(ctx context.Context) error
	}
)
