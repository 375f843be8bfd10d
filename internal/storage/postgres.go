package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

var _ records.Store = (*PostgresRepository)(nil)

// PostgresRepository stores records in PostgreSQL. Money columns are
// NUMERIC and cross the driver boundary as text.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository migrates the schema and opens a connection pool.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func pgFound[T any](v T, err error) (T, bool, error) {
	var zero T
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("query: %w", err)
	}
	return v, true, nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func pgCollect[T any](rows pgx.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Users

func (r *PostgresRepository) GetUser(ctx context.Context, id string) (core.User, bool, error) {
	var u core.User
	err := r.pool.QueryRow(ctx, `SELECT id, username, password FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.Password)
	return pgFound(u, err)
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (core.User, bool, error) {
	var u core.User
	err := r.pool.QueryRow(ctx, `SELECT id, username, password FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.Password)
	return pgFound(u, err)
}

func (r *PostgresRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = records.NewID()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO users (id, username, password) VALUES ($1, $2, $3)`,
		u.ID, u.Username, u.Password)
	if isPgUniqueViolation(err) {
		return core.User{}, core.ErrUserExists
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Transactions

const pgTransactionColumns = `id, user_id, type, amount::text, category, description, date, created_at`

func scanPgTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt)
	return t, err
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgTransactionColumns+` FROM transactions
		 WHERE user_id = $1
		 ORDER BY date DESC, created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return pgCollect(rows, scanPgTransaction)
}

func (r *PostgresRepository) ListTransactionsByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgTransactionColumns+` FROM transactions
		 WHERE user_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date DESC, created_at DESC, id`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query transactions by range: %w", err)
	}
	return pgCollect(rows, scanPgTransaction)
}

func (r *PostgresRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pgTransactionColumns+` FROM transactions WHERE id = $1`, id)
	return pgFound(scanPgTransaction(row))
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, category, description, date)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		 RETURNING `+pgTransactionColumns,
		records.NewID(), t.UserID, string(t.Type), string(t.Amount), t.Category, t.Description, t.Date)
	created, err := scanPgTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, bool, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE transactions SET
		   type = COALESCE($1, type),
		   amount = COALESCE($2::numeric, amount),
		   category = COALESCE($3, category),
		   description = COALESCE($4, description),
		   date = COALESCE($5, date)
		 WHERE id = $6
		 RETURNING `+pgTransactionColumns,
		optional(p.Type, asText[core.TransactionType]),
		optional(p.Amount, asText[core.Amount]),
		optional(p.Category, asText[string]),
		optional(p.Description, asText[string]),
		p.Date,
		id)
	return pgFound(scanPgTransaction(row))
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "transactions", id)
}

// Savings goals

const pgGoalColumns = `id, user_id, name, target_amount::text, current_amount::text, monthly_target::text, created_at`

func scanPgGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g       core.SavingsGoal
		monthly *string
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &monthly, &g.CreatedAt); err != nil {
		return core.SavingsGoal{}, err
	}
	if monthly != nil {
		mt := core.Amount(*monthly)
		g.MonthlyTarget = &mt
	}
	return g, nil
}

func (r *PostgresRepository) ListSavingsGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgGoalColumns+` FROM savings_goals
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query savings goals: %w", err)
	}
	return pgCollect(rows, scanPgGoal)
}

func (r *PostgresRepository) CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if g.CurrentAmount.IsZero() {
		g.CurrentAmount = "0.00"
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO savings_goals (id, user_id, name, target_amount, current_amount, monthly_target)
		 VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric)
		 RETURNING `+pgGoalColumns,
		records.NewID(), g.UserID, g.Name, string(g.TargetAmount), string(g.CurrentAmount),
		optional(g.MonthlyTarget, asText[core.Amount]))
	created, err := scanPgGoal(row)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) UpdateSavingsGoal(ctx context.Context, id string, p core.SavingsGoalPatch) (core.SavingsGoal, bool, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE savings_goals SET
		   name = COALESCE($1, name),
		   target_amount = COALESCE($2::numeric, target_amount),
		   current_amount = COALESCE($3::numeric, current_amount),
		   monthly_target = COALESCE($4::numeric, monthly_target)
		 WHERE id = $5
		 RETURNING `+pgGoalColumns,
		optional(p.Name, asText[string]),
		optional(p.TargetAmount, asText[core.Amount]),
		optional(p.CurrentAmount, asText[core.Amount]),
		optional(p.MonthlyTarget, asText[core.Amount]),
		id)
	return pgFound(scanPgGoal(row))
}

func (r *PostgresRepository) DeleteSavingsGoal(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "savings_goals", id)
}

// Recurring transactions

const pgRecurringColumns = `id, user_id, type, amount::text, category, description, frequency, next_due_date, is_active, created_at`

func scanPgRecurring(row rowScanner) (core.RecurringTransaction, error) {
	var rt core.RecurringTransaction
	err := row.Scan(&rt.ID, &rt.UserID, &rt.Type, &rt.Amount, &rt.Category, &rt.Description,
		&rt.Frequency, &rt.NextDueDate, &rt.IsActive, &rt.CreatedAt)
	return rt, err
}

func (r *PostgresRepository) ListRecurringTransactions(ctx context.Context, userID string) ([]core.RecurringTransaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgRecurringColumns+` FROM recurring_transactions
		 WHERE user_id = $1
		 ORDER BY next_due_date ASC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query recurring transactions: %w", err)
	}
	return pgCollect(rows, scanPgRecurring)
}

func (r *PostgresRepository) CreateRecurringTransaction(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO recurring_transactions (id, user_id, type, amount, category, description, frequency, next_due_date, is_active)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, TRUE)
		 RETURNING `+pgRecurringColumns,
		records.NewID(), rt.UserID, string(rt.Type), string(rt.Amount), rt.Category, rt.Description,
		string(rt.Frequency), rt.NextDueDate)
	created, err := scanPgRecurring(row)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring transaction: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) UpdateRecurringTransaction(ctx context.Context, id string, p core.RecurringTransactionPatch) (core.RecurringTransaction, bool, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE recurring_transactions SET
		   type = COALESCE($1, type),
		   amount = COALESCE($2::numeric, amount),
		   category = COALESCE($3, category),
		   description = COALESCE($4, description),
		   frequency = COALESCE($5, frequency),
		   next_due_date = COALESCE($6, next_due_date),
		   is_active = COALESCE($7, is_active)
		 WHERE id = $8
		 RETURNING `+pgRecurringColumns,
		optional(p.Type, asText[core.TransactionType]),
		optional(p.Amount, asText[core.Amount]),
		optional(p.Category, asText[string]),
		optional(p.Description, asText[string]),
		optional(p.Frequency, asText[core.Frequency]),
		p.NextDueDate,
		p.IsActive,
		id)
	return pgFound(scanPgRecurring(row))
}

func (r *PostgresRepository) DeleteRecurringTransaction(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "recurring_transactions", id)
}

// Salary allocation

const pgAllocationColumns = `id, user_id, monthly_salary::text, essentials::text, savings::text, lifestyle::text, created_at`

func scanPgAllocation(row rowScanner) (core.SalaryAllocation, error) {
	var a core.SalaryAllocation
	err := row.Scan(&a.ID, &a.UserID, &a.MonthlySalary, &a.Essentials, &a.Savings, &a.Lifestyle, &a.CreatedAt)
	return a, err
}

func (r *PostgresRepository) GetSalaryAllocation(ctx context.Context, userID string) (core.SalaryAllocation, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pgAllocationColumns+` FROM salary_allocations WHERE user_id = $1`, userID)
	return pgFound(scanPgAllocation(row))
}

func (r *PostgresRepository) UpsertSalaryAllocation(ctx context.Context, a core.SalaryAllocation) (core.SalaryAllocation, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO salary_allocations (id, user_id, monthly_salary, essentials, savings, lifestyle)
		 VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric)
		 ON CONFLICT (user_id) DO UPDATE SET
		   monthly_salary = EXCLUDED.monthly_salary,
		   essentials = EXCLUDED.essentials,
		   savings = EXCLUDED.savings,
		   lifestyle = EXCLUDED.lifestyle
		 RETURNING `+pgAllocationColumns,
		records.NewID(), a.UserID, string(a.MonthlySalary), string(a.Essentials), string(a.Savings), string(a.Lifestyle))
	out, err := scanPgAllocation(row)
	if err != nil {
		return core.SalaryAllocation{}, fmt.Errorf("upsert salary allocation: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) deleteByID(ctx context.Context, table, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	return tag.RowsAffected() > 0, nil
}
