package core

import (
	"errors"
	"testing"
	"time"
)

func amountPtr(a Amount) *Amount { return &a }

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:      "u1",
		Type:        Expense,
		Amount:      "12.50",
		Category:    "Food",
		Description: "Lunch",
		Date:        time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := map[string]func(*Transaction){
		"type":        func(tx *Transaction) { tx.Type = "gift" },
		"amount zero": func(tx *Transaction) { tx.Amount = "0.00" },
		"amount neg":  func(tx *Transaction) { tx.Amount = "-3.00" },
		"amount text": func(tx *Transaction) { tx.Amount = "ten" },
		"category":    func(tx *Transaction) { tx.Category = "  " },
		"description": func(tx *Transaction) { tx.Description = "" },
		"date":        func(tx *Transaction) { tx.Date = time.Time{} },
		"user":        func(tx *Transaction) { tx.UserID = "" },
	}
	for name, mutate := range bads {
		t.Run(name, func(t *testing.T) {
			tx := good
			mutate(&tx)
			err := tx.Validate()
			var verrs ValidationErrors
			if !errors.As(err, &verrs) || len(verrs) != 1 {
				t.Fatalf("expected one field error, got %v", err)
			}
		})
	}
}

func TestTransactionPatchValidate(t *testing.T) {
	if err := (TransactionPatch{}).Validate(); err != nil {
		t.Fatalf("empty patch should be valid, got %v", err)
	}
	if err := (TransactionPatch{Amount: amountPtr("-1")}).Validate(); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestSavingsGoalValidate(t *testing.T) {
	g := SavingsGoal{UserID: "u1", Name: "Car", TargetAmount: "25000.00"}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	g.MonthlyTarget = amountPtr("0")
	if err := g.Validate(); err == nil {
		t.Fatalf("expected error for zero monthly target")
	}
	g.MonthlyTarget = nil
	g.CurrentAmount = "-1.00"
	if err := g.Validate(); err == nil {
		t.Fatalf("expected error for negative current amount")
	}
}

func TestRecurringTransactionValidate(t *testing.T) {
	r := RecurringTransaction{
		UserID:      "u1",
		Type:        Expense,
		Amount:      "89.00",
		Category:    "Utilities",
		Description: "Internet",
		Frequency:   Weekly,
		NextDueDate: time.Now(),
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	r.Frequency = "daily"
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for unsupported frequency")
	}
}

func TestSalaryAllocationValidate(t *testing.T) {
	cases := []struct {
		name  string
		alloc SalaryAllocation
		paths []string
	}{
		{"valid", SalaryAllocation{UserID: "u", MonthlySalary: "5200", Essentials: "60", Savings: "25", Lifestyle: "15"}, nil},
		{"fractional sum", SalaryAllocation{UserID: "u", MonthlySalary: "100", Essentials: "33.34", Savings: "33.33", Lifestyle: "33.33"}, nil},
		{"sum below", SalaryAllocation{UserID: "u", MonthlySalary: "5200", Essentials: "50", Savings: "25", Lifestyle: "15"}, []string{"allocation"}},
		{"pct range", SalaryAllocation{UserID: "u", MonthlySalary: "5200", Essentials: "120", Savings: "-10", Lifestyle: "-10"}, []string{"essentials", "savings", "lifestyle"}},
		{"zero salary", SalaryAllocation{UserID: "u", MonthlySalary: "0", Essentials: "60", Savings: "25", Lifestyle: "15"}, []string{"monthlySalary"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.alloc.Validate()
			if tc.paths == nil {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if len(verrs) != len(tc.paths) {
				t.Fatalf("expected %d errors, got %v", len(tc.paths), verrs)
			}
			for i, p := range tc.paths {
				if verrs[i].Path != p {
					t.Errorf("error %d: expected path %q, got %q", i, p, verrs[i].Path)
				}
			}
		})
	}
}

func TestPatchApply(t *testing.T) {
	tx := Transaction{Amount: "10.00", Category: "Food"}
	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	TransactionPatch{Amount: amountPtr("20.00"), Date: &date}.Apply(&tx)
	if tx.Amount != "20.00" || !tx.Date.Equal(date) || tx.Category != "Food" {
		t.Fatalf("unexpected patched transaction: %+v", tx)
	}

	active := false
	r := RecurringTransaction{IsActive: true}
	RecurringTransactionPatch{IsActive: &active}.Apply(&r)
	if r.IsActive {
		t.Fatalf("expected recurring transaction to be deactivated")
	}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("", "demo", "password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Password == "password" {
		t.Fatalf("password stored in clear text")
	}
	if !u.CheckPassword("password") || u.CheckPassword("wrong") {
		t.Fatalf("password check mismatch")
	}
	if _, err := NewUser("", "", ""); err == nil {
		t.Fatalf("expected validation error")
	}
}
