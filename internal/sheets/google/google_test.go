package google

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), "  ", "Transactions")
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing spreadsheet id" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := New(context.Background(), "sheet-id", ""); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestClient_AppendValidatesFirst(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetBase: "Transactions"} // svc is nil

	_, err := c.Append(context.Background(), core.Transaction{UserID: "u1", Type: "gift", Amount: "1.00"})
	var verrs core.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got: %v", err)
	}

	_, err = c.Append(context.Background(), core.Transaction{
		UserID: "u1", Type: core.Expense, Amount: "1.00", Category: "c", Description: "d", Date: time.Now(),
	})
	if err == nil || err.Error() != "sheets service not initialized" {
		t.Fatalf("expected uninitialized service error, got: %v", err)
	}
}

func TestClient_ListRequiresService(t *testing.T) {
	c := &Client{}
	if _, err := c.ListTransactions(context.Background(), 2025, 3); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Transactions", 2025, "2025 Transactions"},
		{"  Transactions ", 2024, "2024 Transactions"},
		{"2023 Transactions", 2025, "2023 Transactions"},
		{"", 2025, ""},
		{"12345", 2025, "2025 12345"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}

func TestRowRoundTrip(t *testing.T) {
	tx := core.Transaction{
		ID: "abc", Type: core.Income, Category: "Salary", Description: "March pay",
		Amount: "5200.00", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local),
	}
	rows := parseRows([][]any{toRow(tx)}, 2025, 3)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0]
	if got.ID != tx.ID || got.Type != tx.Type || got.Amount != tx.Amount || !got.Date.Equal(tx.Date) {
		t.Errorf("row mismatch: got %+v, want %+v", got, tx)
	}
}

func TestParseRows(t *testing.T) {
	values := [][]any{
		{"Date", "Type", "Category", "Description", "Amount", "ID"},
		{"2025-03-02", "expense", "Food", "Groceries", "45,50", "t1"},
		{"2025-03-03", "Income", "Gift", "Birthday", 100, "t2"},
		{"2025-04-01", "expense", "Food", "Next month", "10.00", "t3"},
		{"2025-03-05", "refund", "Food", "Bad type", "10.00", "t4"},
		{"2025-03-06", "expense", "Food", "Bad amount", "abc", "t5"},
		{"2025-03-07", "expense"},
		{"2025-03-08", "transfer", "Savings", "No id", "200"},
	}

	got := parseRows(values, 2025, 3)
	want := []struct {
		id     string
		amount core.Amount
	}{
		{"t1", "45.50"},
		{"t2", "100.00"},
		{"", "200.00"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].Amount != w.amount {
			t.Errorf("row %d = %s/%s, want %s/%s", i, got[i].ID, got[i].Amount, w.id, w.amount)
		}
	}
}
