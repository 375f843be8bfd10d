package http

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// Views convert derived values to their wire form. Every monetary value is a
// string with two fractional digits.

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type trendPointView struct {
	Month    string `json:"month"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
}

type dashboardView struct {
	MonthlyIncome      string             `json:"monthlyIncome"`
	MonthlyExpenses    string             `json:"monthlyExpenses"`
	TotalSaved         string             `json:"totalSaved"`
	BudgetUsed         json.Number        `json:"budgetUsed"`
	CategoryExpenses   map[string]string  `json:"categoryExpenses"`
	RecentTransactions []core.Transaction `json:"recentTransactions"`
	MonthlyData        []trendPointView   `json:"monthlyData"`
	SavingsGoals       []core.SavingsGoal `json:"savingsGoals"`
}

func newDashboardView(s core.DashboardSummary) dashboardView {
	v := dashboardView{
		MonthlyIncome:      money(s.MonthlyIncome),
		MonthlyExpenses:    money(s.MonthlyExpenses),
		TotalSaved:         money(s.TotalSaved),
		BudgetUsed:         json.Number(s.BudgetUsed.Round(2).String()),
		CategoryExpenses:   make(map[string]string, len(s.CategoryExpenses)),
		RecentTransactions: nonNil(s.RecentTransactions),
		MonthlyData:        make([]trendPointView, 0, len(s.MonthlyData)),
		SavingsGoals:       nonNil(s.SavingsGoals),
	}
	for category, total := range s.CategoryExpenses {
		v.CategoryExpenses[category] = money(total)
	}
	for _, p := range s.MonthlyData {
		v.MonthlyData = append(v.MonthlyData, trendPointView{
			Month:    p.Month,
			Income:   money(p.Income),
			Expenses: money(p.Expenses),
		})
	}
	return v
}

type progressView struct {
	Percent      string `json:"percent"`
	Remaining    string `json:"remaining"`
	MonthsToGoal int    `json:"monthsToGoal"`
}

type goalView struct {
	core.SavingsGoal
	Progress progressView `json:"progress"`
}

func newGoalViews(goals []services.GoalView) []goalView {
	out := make([]goalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalView{
			SavingsGoal: g.SavingsGoal,
			Progress: progressView{
				Percent:      money(g.Progress.Percent),
				Remaining:    money(g.Progress.Remaining),
				MonthsToGoal: g.Progress.MonthsToGoal,
			},
		})
	}
	return out
}

type recurringView struct {
	core.RecurringTransaction
	Status        services.DueStatus `json:"status"`
	MonthlyAmount string             `json:"monthlyAmount"`
}

func newRecurringViews(items []services.RecurringView) []recurringView {
	out := make([]recurringView, 0, len(items))
	for _, r := range items {
		out = append(out, recurringView{
			RecurringTransaction: r.RecurringTransaction,
			Status:               r.Status,
			MonthlyAmount:        money(r.MonthlyAmount),
		})
	}
	return out
}

type recurringSummaryView struct {
	MonthlyIncome   string `json:"monthlyIncome"`
	MonthlyExpenses string `json:"monthlyExpenses"`
	ActiveCount     int    `json:"activeCount"`
}

type recurringOverviewView struct {
	RecurringTransactions []recurringView      `json:"recurringTransactions"`
	Summary               recurringSummaryView `json:"summary"`
}

func newRecurringOverviewView(items []services.RecurringView, s core.RecurringSummary) recurringOverviewView {
	return recurringOverviewView{
		RecurringTransactions: newRecurringViews(items),
		Summary: recurringSummaryView{
			MonthlyIncome:   money(s.MonthlyIncome),
			MonthlyExpenses: money(s.MonthlyExpenses),
			ActiveCount:     s.ActiveCount,
		},
	}
}

type breakdownView struct {
	Essentials string `json:"essentials"`
	Savings    string `json:"savings"`
	Lifestyle  string `json:"lifestyle"`
}

type allocationView struct {
	core.SalaryAllocation
	Breakdown breakdownView `json:"breakdown"`
}

func newAllocationView(a core.SalaryAllocation, b core.AllocationBreakdown) allocationView {
	return allocationView{
		SalaryAllocation: a,
		Breakdown: breakdownView{
			Essentials: money(b.Essentials),
			Savings:    money(b.Savings),
			Lifestyle:  money(b.Lifestyle),
		},
	}
}

type calendarDayView struct {
	Day          int                `json:"day"`
	Income       string             `json:"income"`
	Expenses     string             `json:"expenses"`
	Net          string             `json:"net"`
	Transactions []core.Transaction `json:"transactions"`
}

type calendarView struct {
	Year             int               `json:"year"`
	Month            int               `json:"month"`
	Days             []calendarDayView `json:"days"`
	TotalIncome      string            `json:"totalIncome"`
	TotalExpenses    string            `json:"totalExpenses"`
	Net              string            `json:"net"`
	TransactionCount int               `json:"transactionCount"`
}

func newCalendarView(c core.CalendarMonth) calendarView {
	v := calendarView{
		Year:             c.Year,
		Month:            c.Month,
		Days:             make([]calendarDayView, 0, len(c.Days)),
		TotalIncome:      money(c.TotalIncome),
		TotalExpenses:    money(c.TotalExpenses),
		Net:              money(c.TotalIncome.Sub(c.TotalExpenses)),
		TransactionCount: c.TransactionCount,
	}
	for _, d := range c.Days {
		v.Days = append(v.Days, calendarDayView{
			Day:          d.Day,
			Income:       money(d.Income),
			Expenses:     money(d.Expenses),
			Net:          money(d.Net()),
			Transactions: nonNil(d.Transactions),
		})
	}
	return v
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
