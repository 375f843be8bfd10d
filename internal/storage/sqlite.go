package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

var _ records.Store = (*SQLiteRepository)(nil)

// SQLiteRepository is the embedded persistent store. Dates are stored as unix
// milliseconds and read back in the local time zone.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + sqlitePragmas
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms) }

// optional maps a nil patch field to SQL NULL so COALESCE keeps the stored value.
func optional[T any](p *T, conv func(T) any) any {
	if p == nil {
		return nil
	}
	return conv(*p)
}

func asText[T ~string](v T) any { return string(v) }

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Users

const sqliteUserColumns = `id, username, password`

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, bool, error) {
	return r.getUser(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, bool, error) {
	return r.getUser(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE username = ?`, username)
}

func (r *SQLiteRepository) getUser(ctx context.Context, query string, arg string) (core.User, bool, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, false, nil
	}
	if err != nil {
		return core.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return u, true, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = records.NewID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password) VALUES (?, ?, ?)`,
		u.ID, u.Username, u.Password)
	if isUniqueViolation(err) {
		return core.User{}, core.ErrUserExists
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Transactions

const sqliteTransactionColumns = `id, user_id, type, amount, category, description, date, created_at`

func scanSQLiteTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t             core.Transaction
		date, created int64
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Category, &t.Description, &date, &created); err != nil {
		return core.Transaction{}, err
	}
	t.Date = fromMillis(date)
	t.CreatedAt = fromMillis(created)
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanSQLiteTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+sqliteTransactionColumns+` FROM transactions
		 WHERE user_id = ?
		 ORDER BY date DESC, created_at DESC, id`, userID)
}

func (r *SQLiteRepository) ListTransactionsByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+sqliteTransactionColumns+` FROM transactions
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date DESC, created_at DESC, id`, userID, toMillis(start), toMillis(end))
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteTransactionColumns+` FROM transactions WHERE id = ?`, id)
	return found(scanSQLiteTransaction(row))
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = records.NewID()
	t.CreatedAt = r.now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+sqliteTransactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), string(t.Amount), t.Category, t.Description, toMillis(t.Date), toMillis(t.CreatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE transactions SET
		   type = COALESCE(?, type),
		   amount = COALESCE(?, amount),
		   category = COALESCE(?, category),
		   description = COALESCE(?, description),
		   date = COALESCE(?, date)
		 WHERE id = ?
		 RETURNING `+sqliteTransactionColumns,
		optional(p.Type, asText[core.TransactionType]),
		optional(p.Amount, asText[core.Amount]),
		optional(p.Category, asText[string]),
		optional(p.Description, asText[string]),
		optional(p.Date, func(t time.Time) any { return toMillis(t) }),
		id)
	return found(scanSQLiteTransaction(row))
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "transactions", id)
}

// Savings goals

const sqliteGoalColumns = `id, user_id, name, target_amount, current_amount, monthly_target, created_at`

func scanSQLiteGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g       core.SavingsGoal
		monthly sql.NullString
		created int64
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &monthly, &created); err != nil {
		return core.SavingsGoal{}, err
	}
	if monthly.Valid {
		mt := core.Amount(monthly.String)
		g.MonthlyTarget = &mt
	}
	g.CreatedAt = fromMillis(created)
	return g, nil
}

func (r *SQLiteRepository) ListSavingsGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteGoalColumns+` FROM savings_goals
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query savings goals: %w", err)
	}
	defer rows.Close()

	out := []core.SavingsGoal{}
	for rows.Next() {
		g, err := scanSQLiteGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings goals: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	g.ID = records.NewID()
	g.CreatedAt = r.now()
	if g.CurrentAmount.IsZero() {
		g.CurrentAmount = "0.00"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (`+sqliteGoalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, string(g.TargetAmount), string(g.CurrentAmount),
		optional(g.MonthlyTarget, asText[core.Amount]), toMillis(g.CreatedAt))
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateSavingsGoal(ctx context.Context, id string, p core.SavingsGoalPatch) (core.SavingsGoal, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE savings_goals SET
		   name = COALESCE(?, name),
		   target_amount = COALESCE(?, target_amount),
		   current_amount = COALESCE(?, current_amount),
		   monthly_target = COALESCE(?, monthly_target)
		 WHERE id = ?
		 RETURNING `+sqliteGoalColumns,
		optional(p.Name, asText[string]),
		optional(p.TargetAmount, asText[core.Amount]),
		optional(p.CurrentAmount, asText[core.Amount]),
		optional(p.MonthlyTarget, asText[core.Amount]),
		id)
	return found(scanSQLiteGoal(row))
}

func (r *SQLiteRepository) DeleteSavingsGoal(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "savings_goals", id)
}

// Recurring transactions

const sqliteRecurringColumns = `id, user_id, type, amount, category, description, frequency, next_due_date, is_active, created_at`

func scanSQLiteRecurring(row rowScanner) (core.RecurringTransaction, error) {
	var (
		rt           core.RecurringTransaction
		due, created int64
	)
	if err := row.Scan(&rt.ID, &rt.UserID, &rt.Type, &rt.Amount, &rt.Category, &rt.Description,
		&rt.Frequency, &due, &rt.IsActive, &created); err != nil {
		return core.RecurringTransaction{}, err
	}
	rt.NextDueDate = fromMillis(due)
	rt.CreatedAt = fromMillis(created)
	return rt, nil
}

func (r *SQLiteRepository) ListRecurringTransactions(ctx context.Context, userID string) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteRecurringColumns+` FROM recurring_transactions
		 WHERE user_id = ?
		 ORDER BY next_due_date ASC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query recurring transactions: %w", err)
	}
	defer rows.Close()

	out := []core.RecurringTransaction{}
	for rows.Next() {
		rt, err := scanSQLiteRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateRecurringTransaction(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	rt.ID = records.NewID()
	rt.CreatedAt = r.now()
	rt.IsActive = true
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_transactions (`+sqliteRecurringColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.UserID, string(rt.Type), string(rt.Amount), rt.Category, rt.Description,
		string(rt.Frequency), toMillis(rt.NextDueDate), rt.IsActive, toMillis(rt.CreatedAt))
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring transaction: %w", err)
	}
	return rt, nil
}

func (r *SQLiteRepository) UpdateRecurringTransaction(ctx context.Context, id string, p core.RecurringTransactionPatch) (core.RecurringTransaction, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE recurring_transactions SET
		   type = COALESCE(?, type),
		   amount = COALESCE(?, amount),
		   category = COALESCE(?, category),
		   description = COALESCE(?, description),
		   frequency = COALESCE(?, frequency),
		   next_due_date = COALESCE(?, next_due_date),
		   is_active = COALESCE(?, is_active)
		 WHERE id = ?
		 RETURNING `+sqliteRecurringColumns,
		optional(p.Type, asText[core.TransactionType]),
		optional(p.Amount, asText[core.Amount]),
		optional(p.Category, asText[string]),
		optional(p.Description, asText[string]),
		optional(p.Frequency, asText[core.Frequency]),
		optional(p.NextDueDate, func(t time.Time) any { return toMillis(t) }),
		optional(p.IsActive, func(b bool) any { return b }),
		id)
	return found(scanSQLiteRecurring(row))
}

func (r *SQLiteRepository) DeleteRecurringTransaction(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "recurring_transactions", id)
}

// Salary allocation

const sqliteAllocationColumns = `id, user_id, monthly_salary, essentials, savings, lifestyle, created_at`

func scanSQLiteAllocation(row rowScanner) (core.SalaryAllocation, error) {
	var (
		a       core.SalaryAllocation
		created int64
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.MonthlySalary, &a.Essentials, &a.Savings, &a.Lifestyle, &created); err != nil {
		return core.SalaryAllocation{}, err
	}
	a.CreatedAt = fromMillis(created)
	return a, nil
}

func (r *SQLiteRepository) GetSalaryAllocation(ctx context.Context, userID string) (core.SalaryAllocation, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteAllocationColumns+` FROM salary_allocations WHERE user_id = ?`, userID)
	return found(scanSQLiteAllocation(row))
}

func (r *SQLiteRepository) UpsertSalaryAllocation(ctx context.Context, a core.SalaryAllocation) (core.SalaryAllocation, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO salary_allocations (`+sqliteAllocationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   monthly_salary = excluded.monthly_salary,
		   essentials = excluded.essentials,
		   savings = excluded.savings,
		   lifestyle = excluded.lifestyle
		 RETURNING `+sqliteAllocationColumns,
		records.NewID(), a.UserID, string(a.MonthlySalary), string(a.Essentials), string(a.Savings),
		string(a.Lifestyle), toMillis(r.now()))
	out, err := scanSQLiteAllocation(row)
	if err != nil {
		return core.SalaryAllocation{}, fmt.Errorf("upsert salary allocation: %w", err)
	}
	return out, nil
}

// deleteByID removes one row; table is always a package constant.
func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	return n > 0, nil
}

// found turns sql.ErrNoRows into an absent result.
func found[T any](v T, err error) (T, bool, error) {
	var zero T
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("query: %w", err)
	}
	return v, true, nil
}
