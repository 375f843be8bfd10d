// Package http exposes the fintrack JSON API.
//
// This file implements request decoding. Bodies are decoded into one input
// struct per endpoint with unknown fields rejected, then converted into domain
// records or patches. Amounts accept JSON numbers or numeric strings.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
}

// decodeJSON reads one JSON object from the body into dst. A malformed body is
// reported as ValidationErrors so handlers answer it like any invalid input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.ValidationErrors{{Path: "body", Message: "must contain a single JSON object"}}
	}
	return nil
}

func decodeError(err error) core.ValidationErrors {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &typeErr):
		return core.ValidationErrors{{Path: typeErr.Field, Message: "must be a " + typeErr.Type.String()}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return core.ValidationErrors{{Path: "body", Message: "is not valid JSON"}}
	case errors.Is(err, io.EOF):
		return core.ValidationErrors{{Path: "body", Message: "is required"}}
	case errors.As(err, &maxErr):
		return core.ValidationErrors{{Path: "body", Message: "is too large"}}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return core.ValidationErrors{{Path: field, Message: "is not a known field"}}
	default:
		return core.ValidationErrors{{Path: "body", Message: err.Error()}}
	}
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}

func amountOf(d *decimal.Decimal) core.Amount {
	if d == nil {
		return ""
	}
	return core.NewAmount(*d)
}

// exactOf keeps every digit of d. Percentages use it so the sum-to-100 check
// sees the submitted values.
func exactOf(d *decimal.Decimal) core.Amount {
	if d == nil {
		return ""
	}
	return core.Amount(d.String())
}

func amountPtr(d *decimal.Decimal) *core.Amount {
	if d == nil {
		return nil
	}
	a := core.NewAmount(*d)
	return &a
}

func datePtr(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func dateOf(d *Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TransactionInput is the body of POST and PUT /api/transactions. UserID is
// accepted for compatibility and always replaced by the server's user.
type TransactionInput struct {
	UserID      *string          `json:"userId"`
	Type        *string          `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Date        *Date            `json:"date"`
}

func (in TransactionInput) Transaction(userID string) core.Transaction {
	return core.Transaction{
		UserID:      userID,
		Type:        core.TransactionType(deref(sanitizePtr(in.Type))),
		Amount:      amountOf(in.Amount),
		Category:    deref(sanitizePtr(in.Category)),
		Description: deref(sanitizePtr(in.Description)),
		Date:        dateOf(in.Date),
	}
}

func (in TransactionInput) Patch() core.TransactionPatch {
	p := core.TransactionPatch{
		Amount:      amountPtr(in.Amount),
		Category:    sanitizePtr(in.Category),
		Description: sanitizePtr(in.Description),
		Date:        datePtr(in.Date),
	}
	if t := sanitizePtr(in.Type); t != nil {
		tt := core.TransactionType(*t)
		p.Type = &tt
	}
	return p
}

// SavingsGoalInput is the body of POST and PUT /api/savings-goals.
type SavingsGoalInput struct {
	UserID        *string          `json:"userId"`
	Name          *string          `json:"name"`
	TargetAmount  *decimal.Decimal `json:"targetAmount"`
	CurrentAmount *decimal.Decimal `json:"currentAmount"`
	MonthlyTarget *decimal.Decimal `json:"monthlyTarget"`
}

func (in SavingsGoalInput) SavingsGoal(userID string) core.SavingsGoal {
	current := amountOf(in.CurrentAmount)
	if current.IsZero() {
		current = core.NewAmount(decimal.Zero)
	}
	return core.SavingsGoal{
		UserID:        userID,
		Name:          deref(sanitizePtr(in.Name)),
		TargetAmount:  amountOf(in.TargetAmount),
		CurrentAmount: current,
		MonthlyTarget: amountPtr(in.MonthlyTarget),
	}
}

func (in SavingsGoalInput) Patch() core.SavingsGoalPatch {
	return core.SavingsGoalPatch{
		Name:          sanitizePtr(in.Name),
		TargetAmount:  amountPtr(in.TargetAmount),
		CurrentAmount: amountPtr(in.CurrentAmount),
		MonthlyTarget: amountPtr(in.MonthlyTarget),
	}
}

// RecurringTransactionInput is the body of POST and PUT
// /api/recurring-transactions. IsActive is ignored on create.
type RecurringTransactionInput struct {
	UserID      *string          `json:"userId"`
	Type        *string          `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Frequency   *string          `json:"frequency"`
	NextDueDate *Date            `json:"nextDueDate"`
	IsActive    *bool            `json:"isActive"`
}

func (in RecurringTransactionInput) RecurringTransaction(userID string) core.RecurringTransaction {
	return core.RecurringTransaction{
		UserID:      userID,
		Type:        core.TransactionType(deref(sanitizePtr(in.Type))),
		Amount:      amountOf(in.Amount),
		Category:    deref(sanitizePtr(in.Category)),
		Description: deref(sanitizePtr(in.Description)),
		Frequency:   core.Frequency(deref(sanitizePtr(in.Frequency))),
		NextDueDate: dateOf(in.NextDueDate),
	}
}

func (in RecurringTransactionInput) Patch() core.RecurringTransactionPatch {
	p := core.RecurringTransactionPatch{
		Amount:      amountPtr(in.Amount),
		Category:    sanitizePtr(in.Category),
		Description: sanitizePtr(in.Description),
		NextDueDate: datePtr(in.NextDueDate),
		IsActive:    in.IsActive,
	}
	if t := sanitizePtr(in.Type); t != nil {
		tt := core.TransactionType(*t)
		p.Type = &tt
	}
	if f := sanitizePtr(in.Frequency); f != nil {
		ff := core.Frequency(*f)
		p.Frequency = &ff
	}
	return p
}

// SalaryAllocationInput is the body of POST /api/salary-allocation.
type SalaryAllocationInput struct {
	UserID        *string          `json:"userId"`
	MonthlySalary *decimal.Decimal `json:"monthlySalary"`
	Essentials    *decimal.Decimal `json:"essentials"`
	Savings       *decimal.Decimal `json:"savings"`
	Lifestyle     *decimal.Decimal `json:"lifestyle"`
}

func (in SalaryAllocationInput) SalaryAllocation(userID string) core.SalaryAllocation {
	return core.SalaryAllocation{
		UserID:        userID,
		MonthlySalary: amountOf(in.MonthlySalary),
		Essentials:    exactOf(in.Essentials),
		Savings:       exactOf(in.Savings),
		Lifestyle:     exactOf(in.Lifestyle),
	}
}

// MonthParams holds the year and month of a calendar request.
type MonthParams struct {
	Year  int
	Month time.Month
}

// ParseMonthParams reads year and month from the query, defaulting to the
// month of now. Values that are present but invalid are rejected.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: now.Month()}
	var errs core.ValidationErrors

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			errs = append(errs, core.FieldError{Path: "year", Message: "must be a year between 1 and 9999"})
		} else {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			errs = append(errs, core.FieldError{Path: "month", Message: "must be between 1 and 12"})
		} else {
			params.Month = time.Month(m)
		}
	}

	if len(errs) > 0 {
		return MonthParams{}, errs
	}
	return params, nil
}
