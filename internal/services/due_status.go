// Package services holds the fintrack business logic.
//
// This file implements due-status classification for recurring transactions.
// Two presentation policies exist side by side: BillStatusPolicy for the
// upcoming-bills panel and RecurringStatusPolicy for the recurring view. They
// differ on purpose and are kept as separate strategies.
package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// DueStatusKind is the machine-readable bucket of a DueStatus.
type DueStatusKind string

const (
	DueOverdue   DueStatusKind = "overdue"
	DueToday     DueStatusKind = "due-today"
	DueSoon      DueStatusKind = "due-soon"
	DueThisWeek  DueStatusKind = "due-this-week"
	DueAutoPay   DueStatusKind = "auto-pay"
	DueScheduled DueStatusKind = "scheduled"
)

// DueStatus is the classification of one recurring obligation.
type DueStatus struct {
	Label        string        `json:"label"`
	Kind         DueStatusKind `json:"kind"`
	DaysUntilDue int           `json:"daysUntilDue"`
}

// StatusPolicy maps a whole-day distance to a due status.
type StatusPolicy interface {
	Classify(daysUntilDue int) DueStatus
}

// BillStatusPolicy: overdue, due today, due within 3 days, otherwise Auto-pay.
type BillStatusPolicy struct{}

func (BillStatusPolicy) Classify(days int) DueStatus {
	switch {
	case days < 0:
		return DueStatus{Label: "Overdue", Kind: DueOverdue, DaysUntilDue: days}
	case days == 0:
		return DueStatus{Label: "Due today", Kind: DueToday, DaysUntilDue: days}
	case days <= 3:
		return DueStatus{Label: dueInLabel(days), Kind: DueSoon, DaysUntilDue: days}
	default:
		return DueStatus{Label: "Auto-pay", Kind: DueAutoPay, DaysUntilDue: days}
	}
}

// RecurringStatusPolicy adds a 4 to 7 day band before falling back to Scheduled.
type RecurringStatusPolicy struct{}

func (RecurringStatusPolicy) Classify(days int) DueStatus {
	switch {
	case days < 0:
		return DueStatus{Label: "Overdue", Kind: DueOverdue, DaysUntilDue: days}
	case days == 0:
		return DueStatus{Label: "Due today", Kind: DueToday, DaysUntilDue: days}
	case days <= 3:
		return DueStatus{Label: dueInLabel(days), Kind: DueSoon, DaysUntilDue: days}
	case days <= 7:
		return DueStatus{Label: dueInLabel(days), Kind: DueThisWeek, DaysUntilDue: days}
	default:
		return DueStatus{Label: "Scheduled", Kind: DueScheduled, DaysUntilDue: days}
	}
}

func dueInLabel(days int) string {
	if days == 1 {
		return "Due in 1 day"
	}
	return fmt.Sprintf("Due in %d days", days)
}

// ClassifyDue measures the whole days from now to due, truncating any partial
// day, and applies policy.
func ClassifyDue(policy StatusPolicy, now, due time.Time) DueStatus {
	return policy.Classify(core.DaysBetween(now, due))
}

// MonthlyNormalizer converts an amount charged at some frequency to its
// monthly equivalent.
type MonthlyNormalizer func(amount decimal.Decimal) decimal.Decimal

var weeksPerMonth = decimal.RequireFromString("4.33")

// monthlyNormalizers maps each frequency to its conversion. 4.33 weeks per
// month is an approximation that totals rely on; do not change it.
var monthlyNormalizers = map[core.Frequency]MonthlyNormalizer{
	core.Weekly:  func(a decimal.Decimal) decimal.Decimal { return a.Mul(weeksPerMonth) },
	core.Monthly: func(a decimal.Decimal) decimal.Decimal { return a },
	core.Yearly:  func(a decimal.Decimal) decimal.Decimal { return a.Div(decimal.NewFromInt(12)) },
}

// MonthlyEquivalent normalizes amount charged at frequency to a month.
func MonthlyEquivalent(frequency core.Frequency, amount decimal.Decimal) (decimal.Decimal, error) {
	normalize, ok := monthlyNormalizers[frequency]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return normalize(amount), nil
}
