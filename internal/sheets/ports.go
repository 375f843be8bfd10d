package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// TransactionExporter appends one transaction as a spreadsheet row.
	TransactionExporter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionLister reads exported rows back for a given year and month.
	TransactionLister interface {
		ListTransactions(ctx context.Context, year int, month int) ([]core.Transaction, error)
	}
)
