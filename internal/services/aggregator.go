package services

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// RecentTransactionsLimit is how many transactions the dashboard lists.
const RecentTransactionsLimit = 10

// SumByType returns income and expense totals. Transfers and unknown types
// contribute to neither, but every amount must parse.
func SumByType(txs []core.Transaction) (income, expenses decimal.Decimal, err error) {
	income, expenses = decimal.Zero, decimal.Zero
	for _, t := range txs {
		amount, err := t.Amount.Decimal()
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		switch t.Type {
		case core.Income:
			income = income.Add(amount)
		case core.Expense:
			expenses = expenses.Add(amount)
		}
	}
	return income, expenses, nil
}

// CategoryExpenses totals expenses per category. Categories without expenses
// are absent from the map.
func CategoryExpenses(txs []core.Transaction) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		amount, err := t.Amount.Decimal()
		if err != nil {
			return nil, err
		}
		out[t.Category] = out[t.Category].Add(amount)
	}
	return out, nil
}

// TotalSaved sums currentAmount over goals.
func TotalSaved(goals []core.SavingsGoal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, g := range goals {
		if g.CurrentAmount.IsZero() {
			continue
		}
		amount, err := g.CurrentAmount.Decimal()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, nil
}

// BudgetUsed is expenses as a percentage of salary, 0 when salary is 0.
func BudgetUsed(expenses, salary decimal.Decimal) decimal.Decimal {
	if salary.IsZero() {
		return decimal.Zero
	}
	return expenses.Div(salary).Mul(decimal.NewFromInt(100))
}

// Recent returns at most limit transactions from the front of txs.
func Recent(txs []core.Transaction, limit int) []core.Transaction {
	if len(txs) > limit {
		return txs[:limit]
	}
	return txs
}
