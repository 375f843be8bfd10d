package core

import "github.com/shopspring/decimal"

// GoalProgress is derived from a savings goal on read.
type GoalProgress struct {
	Percent      decimal.Decimal
	Remaining    decimal.Decimal
	MonthsToGoal int
}

// Progress computes current/target*100, the remaining amount and the number of
// monthly contributions still needed. MonthsToGoal is 0 without a monthly target
// or once the goal is reached. CurrentAmount may exceed TargetAmount.
func (g SavingsGoal) Progress() (GoalProgress, error) {
	target, err := g.TargetAmount.Decimal()
	if err != nil {
		return GoalProgress{}, err
	}
	current := decimal.Zero
	if !g.CurrentAmount.IsZero() {
		if current, err = g.CurrentAmount.Decimal(); err != nil {
			return GoalProgress{}, err
		}
	}

	var p GoalProgress
	if target.IsPositive() {
		p.Percent = current.Div(target).Mul(hundred)
	}
	p.Remaining = target.Sub(current)

	if g.MonthlyTarget != nil && p.Remaining.IsPositive() {
		monthly, err := g.MonthlyTarget.Decimal()
		if err != nil {
			return GoalProgress{}, err
		}
		if monthly.IsPositive() {
			p.MonthsToGoal = int(p.Remaining.Div(monthly).Ceil().IntPart())
		}
	}
	return p, nil
}
