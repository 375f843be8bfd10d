package storage

import (
	"context"
	"os"
	"testing"

	"fintrack/internal/records"
	"fintrack/internal/records/recordstest"
)

// Set FINTRACK_TEST_DATABASE_URL to run these against a disposable database.
func TestPostgresRepositoryContract(t *testing.T) {
	url := os.Getenv("FINTRACK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FINTRACK_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	repo, err := NewPostgresRepository(ctx, url)
	if err != nil {
		t.Fatalf("open postgres repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	recordstest.Run(t, func(t *testing.T) records.Store {
		_, err := repo.pool.Exec(ctx,
			`TRUNCATE users, transactions, savings_goals, recurring_transactions, salary_allocations`)
		if err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return repo
	})
}
