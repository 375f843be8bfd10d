package records

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const (
	DemoUsername = "demo"
	demoPassword = "password"
)

var demoGoals = []struct {
	name                     string
	target, current, monthly core.Amount
}{
	{"Emergency Fund", "10000.00", "3500.00", "500.00"},
	{"New Car", "25000.00", "8200.00", "800.00"},
	{"Vacation", "5000.00", "1800.00", "300.00"},
}

// SeedDemo creates the demo user together with a salary allocation and three
// savings goals. It does nothing when the user already exists, so it is safe
// to run on every start against a persistent store.
func SeedDemo(ctx context.Context, s Store, userID string) error {
	if _, found, err := s.GetUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to look up demo user: %w", err)
	} else if found {
		return nil
	}

	user, err := core.NewUser(userID, DemoUsername, demoPassword)
	if err != nil {
		return err
	}
	if _, err := s.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	if _, err := s.UpsertSalaryAllocation(ctx, core.SalaryAllocation{
		UserID:        userID,
		MonthlySalary: "5200.00",
		Essentials:    "60.00",
		Savings:       "25.00",
		Lifestyle:     "15.00",
	}); err != nil {
		return fmt.Errorf("failed to seed salary allocation: %w", err)
	}

	for _, g := range demoGoals {
		monthly := g.monthly
		if _, err := s.CreateSavingsGoal(ctx, core.SavingsGoal{
			UserID:        userID,
			Name:          g.name,
			TargetAmount:  g.target,
			CurrentAmount: g.current,
			MonthlyTarget: &monthly,
		}); err != nil {
			return fmt.Errorf("failed to seed savings goal %q: %w", g.name, err)
		}
	}
	return nil
}
