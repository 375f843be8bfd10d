// Package memory provides an ephemeral, map-backed records.Store.
package memory

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

var _ records.Store = (*Store)(nil)

type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	users        map[string]core.User
	transactions map[string]core.Transaction
	goals        map[string]core.SavingsGoal
	recurring    map[string]core.RecurringTransaction
	allocations  map[string]core.SalaryAllocation // keyed by user id
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:          time.Now,
		users:        map[string]core.User{},
		transactions: map[string]core.Transaction{},
		goals:        map[string]core.SavingsGoal{},
		recurring:    map[string]core.RecurringTransaction{},
		allocations:  map[string]core.SalaryAllocation{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

// Users

func (s *Store) GetUser(_ context.Context, id string) (core.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return core.User{}, false, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return core.User{}, core.ErrUserExists
		}
	}
	if u.ID == "" {
		u.ID = records.NewID()
	}
	s.users[u.ID] = u
	return u, nil
}

// Transactions

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	return s.filterTransactions(func(t core.Transaction) bool {
		return t.UserID == userID
	}), nil
}

func (s *Store) ListTransactionsByRange(_ context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	return s.filterTransactions(func(t core.Transaction) bool {
		return t.UserID == userID && !t.Date.Before(start) && !t.Date.After(end)
	}), nil
}

func (s *Store) filterTransactions(keep func(core.Transaction) bool) []core.Transaction {
	s.mu.RLock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()
	records.SortTransactions(out)
	return out
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	return t, ok, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = records.NewID()
	t.CreatedAt = s.now()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id string, p core.TransactionPatch) (core.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, false, nil
	}
	p.Apply(&t)
	s.transactions[id] = t
	return t, true, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return false, nil
	}
	delete(s.transactions, id)
	return true, nil
}

// Savings goals

func (s *Store) ListSavingsGoals(_ context.Context, userID string) ([]core.SavingsGoal, error) {
	s.mu.RLock()
	out := make([]core.SavingsGoal, 0, len(s.goals))
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, cloneGoal(g))
		}
	}
	s.mu.RUnlock()
	records.SortSavingsGoals(out)
	return out, nil
}

func (s *Store) CreateSavingsGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = records.NewID()
	g.CreatedAt = s.now()
	if g.CurrentAmount.IsZero() {
		g.CurrentAmount = "0.00"
	}
	g = cloneGoal(g)
	s.goals[g.ID] = g
	return cloneGoal(g), nil
}

func (s *Store) UpdateSavingsGoal(_ context.Context, id string, p core.SavingsGoalPatch) (core.SavingsGoal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return core.SavingsGoal{}, false, nil
	}
	g = cloneGoal(g)
	p.Apply(&g)
	s.goals[id] = g
	return cloneGoal(g), true, nil
}

func (s *Store) DeleteSavingsGoal(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return false, nil
	}
	delete(s.goals, id)
	return true, nil
}

func cloneGoal(g core.SavingsGoal) core.SavingsGoal {
	if g.MonthlyTarget != nil {
		mt := *g.MonthlyTarget
		g.MonthlyTarget = &mt
	}
	return g
}

// Recurring transactions

func (s *Store) ListRecurringTransactions(_ context.Context, userID string) ([]core.RecurringTransaction, error) {
	s.mu.RLock()
	out := make([]core.RecurringTransaction, 0, len(s.recurring))
	for _, r := range s.recurring {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()
	records.SortRecurring(out)
	return out, nil
}

func (s *Store) CreateRecurringTransaction(_ context.Context, r core.RecurringTransaction) (core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = records.NewID()
	r.CreatedAt = s.now()
	r.IsActive = true
	s.recurring[r.ID] = r
	return r, nil
}

func (s *Store) UpdateRecurringTransaction(_ context.Context, id string, p core.RecurringTransactionPatch) (core.RecurringTransaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recurring[id]
	if !ok {
		return core.RecurringTransaction{}, false, nil
	}
	p.Apply(&r)
	s.recurring[id] = r
	return r, true, nil
}

func (s *Store) DeleteRecurringTransaction(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[id]; !ok {
		return false, nil
	}
	delete(s.recurring, id)
	return true, nil
}

// Salary allocation

func (s *Store) GetSalaryAllocation(_ context.Context, userID string) (core.SalaryAllocation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.allocations[userID]
	return a, ok, nil
}

func (s *Store) UpsertSalaryAllocation(_ context.Context, a core.SalaryAllocation) (core.SalaryAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.allocations[a.UserID]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = records.NewID()
		a.CreatedAt = s.now()
	}
	s.allocations[a.UserID] = a
	return a, nil
}
