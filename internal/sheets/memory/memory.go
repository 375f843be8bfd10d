// Package memory is an in-process spreadsheet used when no Google sheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

var (
	_ sheets.TransactionExporter = (*Sheet)(nil)
	_ sheets.TransactionLister   = (*Sheet)(nil)
)

type Sheet struct {
	mu   sync.Mutex
	rows []core.Transaction
}

func New() *Sheet {
	return &Sheet{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Sheet) Append(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, t)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// ListTransactions returns the rows dated in the given month, in append order.
func (s *Sheet) ListTransactions(_ context.Context, year int, month int) ([]core.Transaction, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.rows {
		if t.Date.Year() == year && int(t.Date.Month()) == month {
			out = append(out, t)
		}
	}
	return out, nil
}

// Len reports how many rows were appended.
func (s *Sheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
