// Package core holds the fintrack domain model.
//
// This file contains the decimal amount type used for every monetary value and
// percentage. Amounts travel as text so that persisted values never pass through
// binary floating point.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal value kept in its textual form, e.g. "5200.00".
type Amount string

var hundred = decimal.NewFromInt(100)

// NewAmount formats d with two fractional digits.
func NewAmount(d decimal.Decimal) Amount {
	return Amount(d.StringFixed(2))
}

// ParseAmount parses user supplied text into an Amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. The
// result is normalized to two fractional digits with half-up rounding.
//
// Examples:
//
//	ParseAmount("12.34")  -> "12.34", nil
//	ParseAmount("12,3")   -> "12.30", nil
//	ParseAmount("12.345") -> "12.35", nil
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return NewAmount(d), nil
}

// Decimal parses the stored text. A malformed value is a data-integrity
// failure, never a silent zero.
func (a Amount) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(string(a)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a decimal", ErrDataIntegrity, string(a))
	}
	return d, nil
}

// IsZero reports whether the amount is unset.
func (a Amount) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

func (a Amount) String() string {
	return string(a)
}

// Sum adds up amounts, failing on the first malformed value.
func Sum(amounts ...Amount) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range amounts {
		d, err := a.Decimal()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, nil
}
