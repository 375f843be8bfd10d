package core

import "github.com/shopspring/decimal"

// TrendPoint is one month of the dashboard trend.
type TrendPoint struct {
	Month    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// DashboardSummary is the composed result of one dashboard request.
type DashboardSummary struct {
	MonthlyIncome      decimal.Decimal
	MonthlyExpenses    decimal.Decimal
	TotalSaved         decimal.Decimal
	BudgetUsed         decimal.Decimal // percent of salary spent this month
	CategoryExpenses   map[string]decimal.Decimal
	RecentTransactions []Transaction
	MonthlyData        []TrendPoint
	SavingsGoals       []SavingsGoal
}

// CalendarDay totals one day of a calendar month.
type CalendarDay struct {
	Day          int
	Income       decimal.Decimal
	Expenses     decimal.Decimal
	Transactions []Transaction
}

// Net is income minus expenses.
func (d CalendarDay) Net() decimal.Decimal {
	return d.Income.Sub(d.Expenses)
}

// CalendarMonth is the per-day view of one month. Days without transactions
// are omitted.
type CalendarMonth struct {
	Year             int
	Month            int
	Days             []CalendarDay
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	TransactionCount int
}

// RecurringSummary totals recurring items normalized to a monthly amount.
type RecurringSummary struct {
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	ActiveCount     int
}
