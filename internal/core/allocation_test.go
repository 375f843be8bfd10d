package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAllocate(t *testing.T) {
	b := Allocate(decimal.NewFromInt(5200), decimal.NewFromInt(60), decimal.NewFromInt(25), decimal.NewFromInt(15))

	want := map[string]string{"essentials": "3120", "savings": "1300", "lifestyle": "780"}
	got := map[string]decimal.Decimal{"essentials": b.Essentials, "savings": b.Savings, "lifestyle": b.Lifestyle}
	for k, w := range want {
		if !got[k].Equal(decimal.RequireFromString(w)) {
			t.Errorf("%s: expected %s, got %s", k, w, got[k])
		}
	}

	total := b.Essentials.Add(b.Savings).Add(b.Lifestyle)
	if !total.Equal(b.MonthlySalary) {
		t.Fatalf("buckets should add up to salary, got %s", total)
	}
}

func TestAllocateFractionalPercentages(t *testing.T) {
	salary := decimal.RequireFromString("1234.56")
	b := Allocate(salary,
		decimal.RequireFromString("33.34"),
		decimal.RequireFromString("33.33"),
		decimal.RequireFromString("33.33"))

	if total := b.Essentials.Add(b.Savings).Add(b.Lifestyle); !total.Equal(salary) {
		t.Fatalf("expected %s, got %s", salary, total)
	}
}

func TestSalaryAllocationBreakdown(t *testing.T) {
	a := SalaryAllocation{MonthlySalary: "5200.00", Essentials: "60.00", Savings: "25.00", Lifestyle: "15.00"}
	b, err := a.Breakdown()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if NewAmount(b.Lifestyle) != "780.00" {
		t.Fatalf("expected 780.00, got %s", NewAmount(b.Lifestyle))
	}

	a.Savings = "x"
	if _, err := a.Breakdown(); err == nil {
		t.Fatalf("expected error for malformed percentage")
	}
}
