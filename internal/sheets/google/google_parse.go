package google

import (
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

const rowDateLayout = "2006-01-02"

func toRow(t core.Transaction) []any {
	return []any{
		t.Date.Format(rowDateLayout),
		string(t.Type),
		t.Category,
		t.Description,
		t.Amount.String(),
		t.ID,
	}
}

// parseRows converts a values matrix (as returned by the Sheets API) into
// transactions dated in the given year and month. A header row and rows with
// an unparsable date, type or amount are skipped.
func parseRows(values [][]any, year, month int) []core.Transaction {
	var out []core.Transaction
	for _, raw := range values {
		row := toStrings(raw)
		if len(row) < 5 {
			continue
		}
		date, err := time.ParseInLocation(rowDateLayout, row[0], time.Local)
		if err != nil || date.Year() != year || int(date.Month()) != month {
			continue
		}
		typ := core.TransactionType(strings.ToLower(row[1]))
		if !typ.IsValid() {
			continue
		}
		amount, err := core.ParseAmount(row[4])
		if err != nil {
			continue
		}
		out = append(out, core.Transaction{
			ID:          safeGet(row, 5),
			Type:        typ,
			Category:    row[2],
			Description: row[3],
			Amount:      amount,
			Date:        date,
		})
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
