package core

import "time"

// Patches carry partial updates. A nil field leaves the stored value untouched.
type (
	TransactionPatch struct {
		Type        *TransactionType
		Amount      *Amount
		Category    *string
		Description *string
		Date        *time.Time
	}

	SavingsGoalPatch struct {
		Name          *string
		TargetAmount  *Amount
		CurrentAmount *Amount
		MonthlyTarget *Amount
	}

	RecurringTransactionPatch struct {
		Type        *TransactionType
		Amount      *Amount
		Category    *string
		Description *string
		Frequency   *Frequency
		NextDueDate *time.Time
		IsActive    *bool
	}
)

func (p TransactionPatch) Apply(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
}

func (p SavingsGoalPatch) Apply(g *SavingsGoal) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.MonthlyTarget != nil {
		mt := *p.MonthlyTarget
		g.MonthlyTarget = &mt
	}
}

func (p RecurringTransactionPatch) Apply(r *RecurringTransaction) {
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Frequency != nil {
		r.Frequency = *p.Frequency
	}
	if p.NextDueDate != nil {
		r.NextDueDate = *p.NextDueDate
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
}
