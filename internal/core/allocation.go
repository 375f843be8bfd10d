package core

import "github.com/shopspring/decimal"

// AllocationBreakdown holds the bucket amounts derived from a salary.
// Values keep full precision; rounding happens only when formatting.
type AllocationBreakdown struct {
	MonthlySalary decimal.Decimal
	Essentials    decimal.Decimal
	Savings       decimal.Decimal
	Lifestyle     decimal.Decimal
}

// Allocate computes salary*pct/100 for each bucket. It performs no validation;
// callers check the percentages first.
func Allocate(salary, essentialsPct, savingsPct, lifestylePct decimal.Decimal) AllocationBreakdown {
	share := func(pct decimal.Decimal) decimal.Decimal {
		return salary.Mul(pct).Div(hundred)
	}
	return AllocationBreakdown{
		MonthlySalary: salary,
		Essentials:    share(essentialsPct),
		Savings:       share(savingsPct),
		Lifestyle:     share(lifestylePct),
	}
}

// Breakdown parses the stored allocation and runs Allocate on it.
func (a SalaryAllocation) Breakdown() (AllocationBreakdown, error) {
	var parsed [4]decimal.Decimal
	for i, v := range []Amount{a.MonthlySalary, a.Essentials, a.Savings, a.Lifestyle} {
		d, err := v.Decimal()
		if err != nil {
			return AllocationBreakdown{}, err
		}
		parsed[i] = d
	}
	return Allocate(parsed[0], parsed[1], parsed[2], parsed[3]), nil
}
