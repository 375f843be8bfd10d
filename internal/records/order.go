package records

import (
	"sort"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

// SortTransactions orders by date descending. Ties fall back to createdAt
// descending and then id so that every store returns the same order.
func SortTransactions(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// SortSavingsGoals orders by createdAt descending.
func SortSavingsGoals(goals []core.SavingsGoal) {
	sort.SliceStable(goals, func(i, j int) bool {
		a, b := goals[i], goals[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// SortRecurring orders by next due date ascending.
func SortRecurring(rs []core.RecurringTransaction) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if !a.NextDueDate.Equal(b.NextDueDate) {
			return a.NextDueDate.Before(b.NextDueDate)
		}
		return a.ID < b.ID
	})
}
