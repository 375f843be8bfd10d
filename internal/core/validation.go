package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxTextLength = 200

// FieldError describes one rejected input field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationErrors collects every field problem found in one input.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Path+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v *ValidationErrors) add(path, message string) {
	*v = append(*v, FieldError{Path: path, Message: message})
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) positive(path string, a Amount) {
	d, err := a.Decimal()
	switch {
	case a.IsZero():
		v.add(path, "is required")
	case err != nil:
		v.add(path, "must be a decimal number")
	case !d.IsPositive():
		v.add(path, "must be greater than 0")
	}
}

func (v *ValidationErrors) nonNegative(path string, a Amount) {
	d, err := a.Decimal()
	switch {
	case a.IsZero():
		v.add(path, "is required")
	case err != nil:
		v.add(path, "must be a decimal number")
	case d.IsNegative():
		v.add(path, "must be greater than or equal to 0")
	}
}

func (v *ValidationErrors) percent(path string, a Amount) (decimal.Decimal, bool) {
	d, err := a.Decimal()
	switch {
	case a.IsZero():
		v.add(path, "is required")
		return d, false
	case err != nil:
		v.add(path, "must be a decimal number")
		return d, false
	case d.IsNegative() || d.GreaterThan(hundred):
		v.add(path, "must be between 0 and 100")
		return d, false
	}
	return d, true
}

func (v *ValidationErrors) text(path, s string) {
	switch {
	case strings.TrimSpace(s) == "":
		v.add(path, "is required")
	case len(s) > maxTextLength:
		v.add(path, "is too long (max 200 characters)")
	}
}

func (v *ValidationErrors) txType(path string, t TransactionType) {
	if !t.IsValid() {
		v.add(path, "must be one of income, expense, transfer")
	}
}

func (v *ValidationErrors) frequency(path string, f Frequency) {
	if !f.IsValid() {
		v.add(path, "must be one of weekly, monthly, yearly")
	}
}

func (t Transaction) Validate() error {
	var errs ValidationErrors
	if t.UserID == "" {
		errs.add("userId", "is required")
	}
	errs.txType("type", t.Type)
	errs.positive("amount", t.Amount)
	errs.text("category", t.Category)
	errs.text("description", t.Description)
	if t.Date.IsZero() {
		errs.add("date", "is required")
	}
	return errs.orNil()
}

func (p TransactionPatch) Validate() error {
	var errs ValidationErrors
	if p.Type != nil {
		errs.txType("type", *p.Type)
	}
	if p.Amount != nil {
		errs.positive("amount", *p.Amount)
	}
	if p.Category != nil {
		errs.text("category", *p.Category)
	}
	if p.Description != nil {
		errs.text("description", *p.Description)
	}
	if p.Date != nil && p.Date.IsZero() {
		errs.add("date", "is required")
	}
	return errs.orNil()
}

func (g SavingsGoal) Validate() error {
	var errs ValidationErrors
	if g.UserID == "" {
		errs.add("userId", "is required")
	}
	errs.text("name", g.Name)
	errs.positive("targetAmount", g.TargetAmount)
	if !g.CurrentAmount.IsZero() {
		errs.nonNegative("currentAmount", g.CurrentAmount)
	}
	if g.MonthlyTarget != nil {
		errs.positive("monthlyTarget", *g.MonthlyTarget)
	}
	return errs.orNil()
}

func (p SavingsGoalPatch) Validate() error {
	var errs ValidationErrors
	if p.Name != nil {
		errs.text("name", *p.Name)
	}
	if p.TargetAmount != nil {
		errs.positive("targetAmount", *p.TargetAmount)
	}
	if p.CurrentAmount != nil {
		errs.nonNegative("currentAmount", *p.CurrentAmount)
	}
	if p.MonthlyTarget != nil {
		errs.positive("monthlyTarget", *p.MonthlyTarget)
	}
	return errs.orNil()
}

func (r RecurringTransaction) Validate() error {
	var errs ValidationErrors
	if r.UserID == "" {
		errs.add("userId", "is required")
	}
	errs.txType("type", r.Type)
	errs.positive("amount", r.Amount)
	errs.text("category", r.Category)
	errs.text("description", r.Description)
	errs.frequency("frequency", r.Frequency)
	if r.NextDueDate.IsZero() {
		errs.add("nextDueDate", "is required")
	}
	return errs.orNil()
}

func (p RecurringTransactionPatch) Validate() error {
	var errs ValidationErrors
	if p.Type != nil {
		errs.txType("type", *p.Type)
	}
	if p.Amount != nil {
		errs.positive("amount", *p.Amount)
	}
	if p.Category != nil {
		errs.text("category", *p.Category)
	}
	if p.Description != nil {
		errs.text("description", *p.Description)
	}
	if p.Frequency != nil {
		errs.frequency("frequency", *p.Frequency)
	}
	if p.NextDueDate != nil && p.NextDueDate.IsZero() {
		errs.add("nextDueDate", "is required")
	}
	return errs.orNil()
}

// Validate checks the allocation before it reaches the calculator: a positive
// salary and three percentages in [0,100] adding up to exactly 100.
func (a SalaryAllocation) Validate() error {
	var errs ValidationErrors
	if a.UserID == "" {
		errs.add("userId", "is required")
	}
	errs.positive("monthlySalary", a.MonthlySalary)
	e, okE := errs.percent("essentials", a.Essentials)
	s, okS := errs.percent("savings", a.Savings)
	l, okL := errs.percent("lifestyle", a.Lifestyle)
	if okE && okS && okL && !e.Add(s).Add(l).Equal(hundred) {
		errs.add("allocation", "percentages must add up to 100")
	}
	return errs.orNil()
}

func (u User) Validate() error {
	var errs ValidationErrors
	errs.text("username", u.Username)
	if u.Password == "" {
		errs.add("password", "is required")
	}
	return errs.orNil()
}
