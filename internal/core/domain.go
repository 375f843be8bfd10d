package core

import (
	"errors"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	TransactionType string

	Frequency string

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Type        TransactionType `json:"type"`
		Amount      Amount          `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	SavingsGoal struct {
		ID            string    `json:"id"`
		UserID        string    `json:"userId"`
		Name          string    `json:"name"`
		TargetAmount  Amount    `json:"targetAmount"`
		CurrentAmount Amount    `json:"currentAmount"`
		MonthlyTarget *Amount   `json:"monthlyTarget"`
		CreatedAt     time.Time `json:"createdAt"`
	}

	RecurringTransaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Type        TransactionType `json:"type"`
		Amount      Amount          `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Frequency   Frequency       `json:"frequency"`
		NextDueDate time.Time       `json:"nextDueDate"`
		IsActive    bool            `json:"isActive"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	// SalaryAllocation splits a monthly salary into three percentage buckets.
	// A user owns at most one.
	SalaryAllocation struct {
		ID            string    `json:"id"`
		UserID        string    `json:"userId"`
		MonthlySalary Amount    `json:"monthlySalary"`
		Essentials    Amount    `json:"essentials"`
		Savings       Amount    `json:"savings"`
		Lifestyle     Amount    `json:"lifestyle"`
		CreatedAt     time.Time `json:"createdAt"`
	}

	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Password string `json:"-"` // bcrypt hash
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrDataIntegrity    = errors.New("data integrity violation")
	ErrUserExists       = errors.New("username already taken")
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (f Frequency) IsValid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}
