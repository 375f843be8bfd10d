package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

// TrendMonths is the length of the monthly trend, current month included.
const TrendMonths = 6

// UpcomingBillsLimit caps the upcoming-bills panel.
const UpcomingBillsLimit = 4

// DashboardStore is the read side of the record store used for aggregation.
type DashboardStore interface {
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	ListTransactionsByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error)
	ListSavingsGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error)
	ListRecurringTransactions(ctx context.Context, userID string) ([]core.RecurringTransaction, error)
	GetSalaryAllocation(ctx context.Context, userID string) (core.SalaryAllocation, bool, error)
}

var _ DashboardStore = (records.Store)(nil)

// DashboardService computes every derived view: the dashboard summary, the
// calendar month, goal progress, recurring totals and upcoming bills. It only
// reads from the store.
type DashboardService struct {
	store DashboardStore
	now   func() time.Time
}

func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// WithClock replaces the clock; months and due dates are computed in the
// location of the returned time.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Summary builds the dashboard for the calendar month containing now. All reads
// run concurrently and the first failure cancels the rest; no partial summary
// is ever returned.
func (s *DashboardService) Summary(ctx context.Context, userID string) (core.DashboardSummary, error) {
	now := s.now()
	start, end := core.MonthRange(now)

	var (
		monthTxs, allTxs []core.Transaction
		goals            []core.SavingsGoal
		allocation       core.SalaryAllocation
		hasAllocation    bool
		trend            = make([]core.TrendPoint, TrendMonths)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		monthTxs, err = s.store.ListTransactionsByRange(gctx, userID, start, end)
		return wrap("list month transactions", err)
	})
	g.Go(func() (err error) {
		allTxs, err = s.store.ListTransactions(gctx, userID)
		return wrap("list transactions", err)
	})
	g.Go(func() (err error) {
		goals, err = s.store.ListSavingsGoals(gctx, userID)
		return wrap("list savings goals", err)
	})
	g.Go(func() (err error) {
		allocation, hasAllocation, err = s.store.GetSalaryAllocation(gctx, userID)
		return wrap("get salary allocation", err)
	})
	for i := 0; i < TrendMonths; i++ {
		month := core.ShiftMonth(now, i-(TrendMonths-1))
		g.Go(func() error {
			point, err := s.trendPoint(gctx, userID, month)
			if err != nil {
				return err
			}
			trend[i] = point
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.DashboardSummary{}, err
	}

	income, expenses, err := SumByType(monthTxs)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	categories, err := CategoryExpenses(monthTxs)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	saved, err := TotalSaved(goals)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	salary := decimal.Zero
	if hasAllocation {
		if salary, err = allocation.MonthlySalary.Decimal(); err != nil {
			return core.DashboardSummary{}, err
		}
	}

	return core.DashboardSummary{
		MonthlyIncome:      income,
		MonthlyExpenses:    expenses,
		TotalSaved:         saved,
		BudgetUsed:         BudgetUsed(expenses, salary),
		CategoryExpenses:   categories,
		RecentTransactions: Recent(allTxs, RecentTransactionsLimit),
		MonthlyData:        trend,
		SavingsGoals:       goals,
	}, nil
}

func (s *DashboardService) trendPoint(ctx context.Context, userID string, month time.Time) (core.TrendPoint, error) {
	start, end := core.MonthRange(month)
	txs, err := s.store.ListTransactionsByRange(ctx, userID, start, end)
	if err != nil {
		return core.TrendPoint{}, fmt.Errorf("list transactions for %s: %w", start.Format("2006-01"), err)
	}
	income, expenses, err := SumByType(txs)
	if err != nil {
		return core.TrendPoint{}, err
	}
	return core.TrendPoint{Month: core.MonthLabel(month), Income: income, Expenses: expenses}, nil
}

// Calendar groups one month of transactions by day of month.
func (s *DashboardService) Calendar(ctx context.Context, userID string, year int, month time.Month) (core.CalendarMonth, error) {
	if month < time.January || month > time.December {
		return core.CalendarMonth{}, core.ValidationErrors{{Path: "month", Message: "must be between 1 and 12"}}
	}
	loc := s.now().Location()
	start, end := core.MonthRange(time.Date(year, month, 1, 0, 0, 0, 0, loc))

	txs, err := s.store.ListTransactionsByRange(ctx, userID, start, end)
	if err != nil {
		return core.CalendarMonth{}, fmt.Errorf("list calendar transactions: %w", err)
	}

	cal := core.CalendarMonth{
		Year:             year,
		Month:            int(month),
		Days:             []core.CalendarDay{},
		TotalIncome:      decimal.Zero,
		TotalExpenses:    decimal.Zero,
		TransactionCount: len(txs),
	}

	// txs are newest first; walk backwards so days come out ascending.
	index := map[int]int{}
	for i := len(txs) - 1; i >= 0; i-- {
		t := txs[i]
		amount, err := t.Amount.Decimal()
		if err != nil {
			return core.CalendarMonth{}, err
		}
		day := t.Date.In(loc).Day()
		pos, ok := index[day]
		if !ok {
			pos = len(cal.Days)
			index[day] = pos
			cal.Days = append(cal.Days, core.CalendarDay{Day: day, Income: decimal.Zero, Expenses: decimal.Zero})
		}
		d := &cal.Days[pos]
		d.Transactions = append(d.Transactions, t)
		switch t.Type {
		case core.Income:
			d.Income = d.Income.Add(amount)
			cal.TotalIncome = cal.TotalIncome.Add(amount)
		case core.Expense:
			d.Expenses = d.Expenses.Add(amount)
			cal.TotalExpenses = cal.TotalExpenses.Add(amount)
		}
	}
	return cal, nil
}

// GoalView is a savings goal with its derived progress.
type GoalView struct {
	core.SavingsGoal
	Progress core.GoalProgress
}

// SavingsGoals lists the user's goals newest first with progress figures.
func (s *DashboardService) SavingsGoals(ctx context.Context, userID string) ([]GoalView, error) {
	goals, err := s.store.ListSavingsGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	out := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		p, err := g.Progress()
		if err != nil {
			return nil, err
		}
		out = append(out, GoalView{SavingsGoal: g, Progress: p})
	}
	return out, nil
}

// Allocation returns the stored allocation and its bucket amounts. found is
// false when the user has none.
func (s *DashboardService) Allocation(ctx context.Context, userID string) (core.SalaryAllocation, core.AllocationBreakdown, bool, error) {
	a, found, err := s.store.GetSalaryAllocation(ctx, userID)
	if err != nil || !found {
		return core.SalaryAllocation{}, core.AllocationBreakdown{}, false, wrap("get salary allocation", err)
	}
	b, err := a.Breakdown()
	if err != nil {
		return core.SalaryAllocation{}, core.AllocationBreakdown{}, false, err
	}
	return a, b, true, nil
}

// RecurringView is a recurring transaction with its status and monthly amount.
type RecurringView struct {
	core.RecurringTransaction
	Status        DueStatus
	MonthlyAmount decimal.Decimal
}

// Recurring lists recurring transactions by due date, classified with
// RecurringStatusPolicy, plus monthly totals. Totals include inactive items;
// ActiveCount reports how many are active.
func (s *DashboardService) Recurring(ctx context.Context, userID string) ([]RecurringView, core.RecurringSummary, error) {
	items, err := s.store.ListRecurringTransactions(ctx, userID)
	if err != nil {
		return nil, core.RecurringSummary{}, fmt.Errorf("list recurring transactions: %w", err)
	}
	views, err := s.classify(items, RecurringStatusPolicy{})
	if err != nil {
		return nil, core.RecurringSummary{}, err
	}

	summary := core.RecurringSummary{MonthlyIncome: decimal.Zero, MonthlyExpenses: decimal.Zero}
	for _, v := range views {
		switch v.Type {
		case core.Income:
			summary.MonthlyIncome = summary.MonthlyIncome.Add(v.MonthlyAmount)
		case core.Expense:
			summary.MonthlyExpenses = summary.MonthlyExpenses.Add(v.MonthlyAmount)
		}
		if v.IsActive {
			summary.ActiveCount++
		}
	}
	return views, summary, nil
}

// UpcomingBills returns the first UpcomingBillsLimit recurring transactions by
// due date, classified with BillStatusPolicy.
func (s *DashboardService) UpcomingBills(ctx context.Context, userID string) ([]RecurringView, error) {
	items, err := s.store.ListRecurringTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	if len(items) > UpcomingBillsLimit {
		items = items[:UpcomingBillsLimit]
	}
	return s.classify(items, BillStatusPolicy{})
}

func (s *DashboardService) classify(items []core.RecurringTransaction, policy StatusPolicy) ([]RecurringView, error) {
	now := s.now()
	out := make([]RecurringView, 0, len(items))
	for _, r := range items {
		amount, err := r.Amount.Decimal()
		if err != nil {
			return nil, err
		}
		monthly, err := MonthlyEquivalent(r.Frequency, amount)
		if err != nil {
			return nil, fmt.Errorf("%w: recurring transaction %s: %v", core.ErrDataIntegrity, r.ID, err)
		}
		out = append(out, RecurringView{
			RecurringTransaction: r,
			Status:               ClassifyDue(policy, now, r.NextDueDate),
			MonthlyAmount:        monthly,
		})
	}
	return out, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
