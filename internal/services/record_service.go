package services

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/records"
)

// EventPublisher sends record-change notifications. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, e *amqp.RecordEvent) error
}

// RecordService validates and stores record mutations, then notifies listeners
// and publishes a change event. Validation happens before any write. A failed
// publish is logged and never fails the mutation.
type RecordService struct {
	store     records.Store
	publisher EventPublisher
	logger    *log.Logger
	onChange  []func(userID string)
}

// NewRecordService accepts a nil publisher, in which case events are skipped.
// A nil logger falls back to the slog default.
func NewRecordService(store records.Store, publisher EventPublisher, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &RecordService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentRecords),
	}
}

// OnChange registers fn to run after every successful mutation of userID's records.
func (s *RecordService) OnChange(fn func(userID string)) {
	s.onChange = append(s.onChange, fn)
}

func (s *RecordService) changed(ctx context.Context, kind amqp.RecordKind, action amqp.RecordAction, id, userID string) {
	for _, fn := range s.onChange {
		fn(userID)
	}

	fields := log.NewFields().
		WithRecord(string(kind), id, userID).
		WithOperation(string(action))

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping record event", fields.ToSlice()...)
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, amqp.NewRecordEvent(kind, action, id, userID)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record event",
			fields.WithError(err).WithErrorType(log.ErrorTypeNetwork).ToSlice()...)
	}
}

// Transactions

func (s *RecordService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.changed(ctx, amqp.KindTransaction, amqp.ActionCreated, created.ID, created.UserID)
	return created, nil
}

func (s *RecordService) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, bool, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, false, err
	}
	updated, found, err := s.store.UpdateTransaction(ctx, id, p)
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("update transaction: %w", err)
	}
	if found {
		s.changed(ctx, amqp.KindTransaction, amqp.ActionUpdated, id, updated.UserID)
	}
	return updated, found, nil
}

func (s *RecordService) DeleteTransaction(ctx context.Context, userID, id string) (bool, error) {
	deleted, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	if deleted {
		s.changed(ctx, amqp.KindTransaction, amqp.ActionDeleted, id, userID)
	}
	return deleted, nil
}

// Savings goals

func (s *RecordService) CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	created, err := s.store.CreateSavingsGoal(ctx, g)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}
	s.changed(ctx, amqp.KindSavingsGoal, amqp.ActionCreated, created.ID, created.UserID)
	return created, nil
}

func (s *RecordService) UpdateSavingsGoal(ctx context.Context, id string, p core.SavingsGoalPatch) (core.SavingsGoal, bool, error) {
	if err := p.Validate(); err != nil {
		return core.SavingsGoal{}, false, err
	}
	updated, found, err := s.store.UpdateSavingsGoal(ctx, id, p)
	if err != nil {
		return core.SavingsGoal{}, false, fmt.Errorf("update savings goal: %w", err)
	}
	if found {
		s.changed(ctx, amqp.KindSavingsGoal, amqp.ActionUpdated, id, updated.UserID)
	}
	return updated, found, nil
}

func (s *RecordService) DeleteSavingsGoal(ctx context.Context, userID, id string) (bool, error) {
	deleted, err := s.store.DeleteSavingsGoal(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete savings goal: %w", err)
	}
	if deleted {
		s.changed(ctx, amqp.KindSavingsGoal, amqp.ActionDeleted, id, userID)
	}
	return deleted, nil
}

// Recurring transactions

func (s *RecordService) CreateRecurringTransaction(ctx context.Context, r core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := r.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	created, err := s.store.CreateRecurringTransaction(ctx, r)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring transaction: %w", err)
	}
	s.changed(ctx, amqp.KindRecurringTransaction, amqp.ActionCreated, created.ID, created.UserID)
	return created, nil
}

func (s *RecordService) UpdateRecurringTransaction(ctx context.Context, id string, p core.RecurringTransactionPatch) (core.RecurringTransaction, bool, error) {
	if err := p.Validate(); err != nil {
		return core.RecurringTransaction{}, false, err
	}
	updated, found, err := s.store.UpdateRecurringTransaction(ctx, id, p)
	if err != nil {
		return core.RecurringTransaction{}, false, fmt.Errorf("update recurring transaction: %w", err)
	}
	if found {
		s.changed(ctx, amqp.KindRecurringTransaction, amqp.ActionUpdated, id, updated.UserID)
	}
	return updated, found, nil
}

func (s *RecordService) DeleteRecurringTransaction(ctx context.Context, userID, id string) (bool, error) {
	deleted, err := s.store.DeleteRecurringTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete recurring transaction: %w", err)
	}
	if deleted {
		s.changed(ctx, amqp.KindRecurringTransaction, amqp.ActionDeleted, id, userID)
	}
	return deleted, nil
}

// Salary allocation

// SaveSalaryAllocation validates the percentages and replaces the user's allocation.
func (s *RecordService) SaveSalaryAllocation(ctx context.Context, a core.SalaryAllocation) (core.SalaryAllocation, error) {
	if err := a.Validate(); err != nil {
		return core.SalaryAllocation{}, err
	}
	saved, err := s.store.UpsertSalaryAllocation(ctx, a)
	if err != nil {
		return core.SalaryAllocation{}, fmt.Errorf("save salary allocation: %w", err)
	}
	s.changed(ctx, amqp.KindSalaryAllocation, amqp.ActionUpdated, saved.ID, saved.UserID)
	return saved, nil
}
