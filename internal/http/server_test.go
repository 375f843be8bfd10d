package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/records/memory"
)

const testUser = "demo-user-1"

var testNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func quietLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.New(cfg)
}

type testEnv struct {
	srv   *Server
	store *memory.Store
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	store := memory.New(memory.WithClock(func() time.Time { return testNow }))
	opts.UserID = testUser
	opts.Logger = quietLogger()
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return testNow }
	}
	if opts.RateLimitPerMinute == 0 {
		opts.RateLimitPerMinute = 1000
	}
	srv := NewServer(opts, store, nil)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorPaths(body ErrorBody) map[string]bool {
	paths := map[string]bool{}
	for _, e := range body.Errors {
		paths[e.Path] = true
	}
	return paths
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := env.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rec.Code, rec.Body)
		}
	}
}

type pingFailStore struct{ *memory.Store }

func (pingFailStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestReadyReportsStoreFailure(t *testing.T) {
	srv := NewServer(Options{UserID: testUser, Logger: quietLogger()}, pingFailStore{memory.New()}, nil)
	defer srv.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"not_ready"`) {
		t.Errorf("body=%s", rec.Body)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":42.5,"category":"Food","description":" Lunch ","date":"2025-03-10","userId":"someone-else"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body)
	}
	created := decode[core.Transaction](t, rec)
	if created.ID == "" || created.UserID != testUser {
		t.Fatalf("created = %+v, want id and server user", created)
	}
	if created.Amount != "42.50" || created.Description != "Lunch" {
		t.Errorf("amount=%q description=%q", created.Amount, created.Description)
	}

	list := decode[[]core.Transaction](t, env.do(t, http.MethodGet, "/api/transactions", ""))
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v", list)
	}

	rec = env.do(t, http.MethodPut, "/api/transactions/"+created.ID, `{"amount":"50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rec.Code, rec.Body)
	}
	if updated := decode[core.Transaction](t, rec); updated.Amount != "50.00" || updated.Category != "Food" {
		t.Errorf("updated = %+v", updated)
	}

	rec = env.do(t, http.MethodPut, "/api/transactions/missing", `{"amount":1}`)
	if rec.Code != http.StatusNotFound || decode[ErrorBody](t, rec).Message != "Transaction not found" {
		t.Errorf("update missing: status=%d body=%s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodDelete, "/api/transactions/"+created.ID, "")
	if rec.Code != http.StatusOK || decode[MessageBody](t, rec).Message != "Transaction deleted successfully" {
		t.Fatalf("delete: status=%d body=%s", rec.Code, rec.Body)
	}
	if rec := env.do(t, http.MethodDelete, "/api/transactions/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d, want 404", rec.Code)
	}
	if body := env.do(t, http.MethodGet, "/api/transactions", "").Body.String(); strings.TrimSpace(body) != "[]" {
		t.Errorf("empty list body = %s", body)
	}
}

func TestTransactionValidation(t *testing.T) {
	env := newTestEnv(t, Options{})

	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		wantPaths []string
	}{
		{
			name:      "every field invalid",
			method:    http.MethodPost,
			path:      "/api/transactions",
			body:      `{"type":"gift","amount":-3,"category":"","description":""}`,
			wantPaths: []string{"type", "amount", "category", "description", "date"},
		},
		{
			name:      "missing amount",
			method:    http.MethodPost,
			path:      "/api/transactions",
			body:      `{"type":"income","category":"Salary","description":"March","date":"2025-03-01T09:00:00Z"}`,
			wantPaths: []string{"amount"},
		},
		{
			name:      "unknown field",
			method:    http.MethodPost,
			path:      "/api/transactions",
			body:      `{"type":"income","color":"red"}`,
			wantPaths: []string{"color"},
		},
		{
			name:      "malformed json",
			method:    http.MethodPost,
			path:      "/api/transactions",
			body:      `{"type":`,
			wantPaths: []string{"body"},
		},
		{
			name:      "two objects",
			method:    http.MethodPost,
			path:      "/api/transactions",
			body:      `{} {}`,
			wantPaths: []string{"body"},
		},
		{
			name:      "wrong json type",
			method:    http.MethodPost,
			path:      "/api/transactions",
			body:      `{"category":12}`,
			wantPaths: []string{"category"},
		},
		{
			name:      "patch rejects bad type",
			method:    http.MethodPut,
			path:      "/api/transactions/whatever",
			body:      `{"type":"loan"}`,
			wantPaths: []string{"type"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
			}
			body := decode[ErrorBody](t, rec)
			if body.Message != "Invalid transaction data" {
				t.Errorf("message = %q", body.Message)
			}
			paths := errorPaths(body)
			for _, p := range tt.wantPaths {
				if !paths[p] {
					t.Errorf("missing error for %q in %+v", p, body.Errors)
				}
			}
		})
	}

	if n := len(decode[[]core.Transaction](t, env.do(t, http.MethodGet, "/api/transactions", ""))); n != 0 {
		t.Errorf("invalid requests stored %d transactions", n)
	}
}

func TestSalaryAllocation(t *testing.T) {
	env := newTestEnv(t, Options{})

	if body := strings.TrimSpace(env.do(t, http.MethodGet, "/api/salary-allocation", "").Body.String()); body != "null" {
		t.Fatalf("allocation before save = %s, want null", body)
	}

	rec := env.do(t, http.MethodPost, "/api/salary-allocation", `{"monthlySalary":5000,"essentials":50,"savings":30,"lifestyle":30}`)
	if rec.Code != http.StatusBadRequest || !errorPaths(decode[ErrorBody](t, rec))["allocation"] {
		t.Fatalf("sum check: status=%d body=%s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodPost, "/api/salary-allocation", `{"monthlySalary":5000,"essentials":50,"savings":30,"lifestyle":20}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status=%d body=%s", rec.Code, rec.Body)
	}
	first := decode[core.SalaryAllocation](t, rec)

	rec = env.do(t, http.MethodPost, "/api/salary-allocation", `{"monthlySalary":"6000","essentials":60,"savings":20,"lifestyle":20}`)
	if second := decode[core.SalaryAllocation](t, rec); second.ID != first.ID || second.MonthlySalary != "6000.00" {
		t.Errorf("upsert = %+v, want id %s kept", second, first.ID)
	}

	got := decode[allocationView](t, env.do(t, http.MethodGet, "/api/salary-allocation", ""))
	want := breakdownView{Essentials: "3600.00", Savings: "1200.00", Lifestyle: "1200.00"}
	if got.Breakdown != want {
		t.Errorf("breakdown = %+v, want %+v", got.Breakdown, want)
	}
}

func TestSavingsGoals(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/api/savings-goals", `{"name":"Laptop","targetAmount":1000,"currentAmount":250,"monthlyTarget":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body)
	}
	goal := decode[core.SavingsGoal](t, rec)

	goals := decode[[]goalView](t, env.do(t, http.MethodGet, "/api/savings-goals", ""))
	if len(goals) != 1 {
		t.Fatalf("goals = %+v", goals)
	}
	want := progressView{Percent: "25.00", Remaining: "750.00", MonthsToGoal: 8}
	if goals[0].Progress != want {
		t.Errorf("progress = %+v, want %+v", goals[0].Progress, want)
	}

	rec = env.do(t, http.MethodPut, "/api/savings-goals/"+goal.ID, `{"currentAmount":1000}`)
	if updated := decode[core.SavingsGoal](t, rec); updated.CurrentAmount != "1000.00" {
		t.Errorf("update = %+v", updated)
	}

	rec = env.do(t, http.MethodPost, "/api/savings-goals", `{"name":"","targetAmount":0}`)
	paths := errorPaths(decode[ErrorBody](t, rec))
	if rec.Code != http.StatusBadRequest || !paths["name"] || !paths["targetAmount"] {
		t.Errorf("invalid goal: status=%d body=%s", rec.Code, rec.Body)
	}

	if rec := env.do(t, http.MethodDelete, "/api/savings-goals/"+goal.ID, ""); rec.Code != http.StatusOK {
		t.Errorf("delete status=%d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/savings-goals/"+goal.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d", rec.Code)
	}
}

func TestRecurringTransactionsAndUpcomingBills(t *testing.T) {
	env := newTestEnv(t, Options{})

	bodies := []string{
		`{"type":"expense","amount":1200,"category":"Housing","description":"Rent","frequency":"monthly","nextDueDate":"2025-03-17T12:00:00Z","isActive":false}`,
		`{"type":"expense","amount":120,"category":"Insurance","description":"Car","frequency":"yearly","nextDueDate":"2025-03-25"}`,
		`{"type":"income","amount":100,"category":"Side","description":"Tutoring","frequency":"weekly","nextDueDate":"2025-03-14"}`,
	}
	var rentID string
	for i, b := range bodies {
		rec := env.do(t, http.MethodPost, "/api/recurring-transactions", b)
		if rec.Code != http.StatusOK {
			t.Fatalf("create %d: status=%d body=%s", i, rec.Code, rec.Body)
		}
		created := decode[core.RecurringTransaction](t, rec)
		if !created.IsActive {
			t.Errorf("create %d stored inactive", i)
		}
		if i == 0 {
			rentID = created.ID
		}
	}

	rec := env.do(t, http.MethodPut, "/api/recurring-transactions/"+rentID, `{"isActive":false}`)
	if rec.Code != http.StatusOK || decode[core.RecurringTransaction](t, rec).IsActive {
		t.Fatalf("deactivate: status=%d body=%s", rec.Code, rec.Body)
	}

	overview := decode[recurringOverviewView](t, env.do(t, http.MethodGet, "/api/recurring-transactions", ""))
	wantLabels := []string{"Overdue", "Due in 2 days", "Scheduled"}
	if len(overview.RecurringTransactions) != len(wantLabels) {
		t.Fatalf("items = %+v", overview.RecurringTransactions)
	}
	for i, want := range wantLabels {
		if got := overview.RecurringTransactions[i].Status.Label; got != want {
			t.Errorf("item %d label = %q, want %q", i, got, want)
		}
	}
	wantSummary := recurringSummaryView{MonthlyIncome: "433.00", MonthlyExpenses: "1210.00", ActiveCount: 2}
	if overview.Summary != wantSummary {
		t.Errorf("summary = %+v, want %+v", overview.Summary, wantSummary)
	}

	bills := decode[[]recurringView](t, env.do(t, http.MethodGet, "/api/upcoming-bills", ""))
	wantBills := []string{"Overdue", "Due in 2 days", "Auto-pay"}
	for i, want := range wantBills {
		if bills[i].Status.Label != want {
			t.Errorf("bill %d label = %q, want %q", i, bills[i].Status.Label, want)
		}
	}

	rec = env.do(t, http.MethodPost, "/api/recurring-transactions", `{"type":"expense","amount":10,"category":"x","description":"y","frequency":"daily","nextDueDate":"2025-04-01"}`)
	if rec.Code != http.StatusBadRequest || !errorPaths(decode[ErrorBody](t, rec))["frequency"] {
		t.Errorf("bad frequency: status=%d body=%s", rec.Code, rec.Body)
	}
}

func TestDashboardStatsCachedAndInvalidated(t *testing.T) {
	env := newTestEnv(t, Options{DashboardCacheTTL: time.Hour})

	env.do(t, http.MethodPost, "/api/salary-allocation", `{"monthlySalary":5000,"essentials":50,"savings":30,"lifestyle":20}`)

	stats := decode[dashboardView](t, env.do(t, http.MethodGet, "/api/dashboard-stats", ""))
	if stats.MonthlyExpenses != "0.00" || stats.BudgetUsed != "0" {
		t.Fatalf("empty stats = %+v", stats)
	}
	if len(stats.MonthlyData) != 6 || stats.MonthlyData[5].Month != "Mar" || stats.MonthlyData[0].Month != "Oct" {
		t.Errorf("trend = %+v", stats.MonthlyData)
	}

	// Writes that bypass the API are not visible until the entry is invalidated.
	_, err := env.store.CreateTransaction(context.Background(), core.Transaction{
		UserID: testUser, Type: core.Expense, Amount: "999.00", Category: "Hidden", Description: "direct", Date: testNow,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cached := decode[dashboardView](t, env.do(t, http.MethodGet, "/api/dashboard-stats", "")); cached.MonthlyExpenses != "0.00" {
		t.Fatalf("expected cached summary, got expenses %s", cached.MonthlyExpenses)
	}

	env.do(t, http.MethodPost, "/api/transactions", `{"type":"expense","amount":251,"category":"Food","description":"Groceries","date":"2025-03-02"}`)

	stats = decode[dashboardView](t, env.do(t, http.MethodGet, "/api/dashboard-stats", ""))
	if stats.MonthlyExpenses != "1250.00" {
		t.Errorf("monthlyExpenses = %s, want 1250.00", stats.MonthlyExpenses)
	}
	if stats.BudgetUsed != "25" {
		t.Errorf("budgetUsed = %s, want 25", stats.BudgetUsed)
	}
	if stats.CategoryExpenses["Food"] != "251.00" || stats.CategoryExpenses["Hidden"] != "999.00" {
		t.Errorf("categories = %+v", stats.CategoryExpenses)
	}
	if len(stats.RecentTransactions) != 2 {
		t.Errorf("recent = %d, want 2", len(stats.RecentTransactions))
	}
}

func TestDashboardStatsCacheFollowsMonth(t *testing.T) {
	now := testNow
	env := newTestEnv(t, Options{DashboardCacheTTL: time.Hour, Clock: func() time.Time { return now }})

	rec := env.do(t, http.MethodPost, "/api/transactions", `{"type":"expense","amount":40,"category":"Food","description":"Lunch","date":"2025-03-10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body)
	}

	march := decode[dashboardView](t, env.do(t, http.MethodGet, "/api/dashboard-stats", ""))
	if march.MonthlyExpenses != "40.00" || march.MonthlyData[5].Month != "Mar" {
		t.Fatalf("march stats = %+v", march)
	}

	now = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	april := decode[dashboardView](t, env.do(t, http.MethodGet, "/api/dashboard-stats", ""))
	if april.MonthlyExpenses != "0.00" {
		t.Errorf("april monthlyExpenses = %s, want 0.00", april.MonthlyExpenses)
	}
	if april.MonthlyData[5].Month != "Apr" || april.MonthlyData[4].Expenses != "40.00" {
		t.Errorf("april trend = %+v", april.MonthlyData)
	}
}

type brokenGoalsStore struct{ *memory.Store }

func (brokenGoalsStore) ListSavingsGoals(context.Context, string) ([]core.SavingsGoal, error) {
	return nil, errors.New("disk I/O error")
}

func TestStorageErrorsAreGeneric(t *testing.T) {
	srv := NewServer(Options{UserID: testUser, Logger: quietLogger()}, brokenGoalsStore{memory.New()}, nil)
	defer srv.Shutdown(context.Background())

	for path, want := range map[string]string{
		"/api/dashboard-stats": "Failed to fetch dashboard stats",
		"/api/savings-goals":   "Failed to fetch savings goals",
	} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s status=%d, want 500", path, rec.Code)
		}
		body := decode[ErrorBody](t, rec)
		if body.Message != want || strings.Contains(rec.Body.String(), "disk") {
			t.Errorf("%s body=%s", path, rec.Body)
		}
	}
}

func TestCalendar(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, b := range []string{
		`{"type":"income","amount":3000,"category":"Salary","description":"Pay","date":"2025-02-01"}`,
		`{"type":"expense","amount":40,"category":"Food","description":"Dinner","date":"2025-02-01T19:30:00Z"}`,
		`{"type":"expense","amount":15.5,"category":"Transport","description":"Train","date":"2025-02-20"}`,
		`{"type":"expense","amount":99,"category":"Food","description":"Other month","date":"2025-03-01"}`,
	} {
		if rec := env.do(t, http.MethodPost, "/api/transactions", b); rec.Code != http.StatusOK {
			t.Fatalf("seed: status=%d body=%s", rec.Code, rec.Body)
		}
	}

	cal := decode[calendarView](t, env.do(t, http.MethodGet, "/api/calendar?year=2025&month=2", ""))
	if cal.TransactionCount != 3 || len(cal.Days) != 2 {
		t.Fatalf("calendar = %+v", cal)
	}
	if cal.Days[0].Day != 1 || cal.Days[0].Net != "2960.00" || cal.Days[1].Expenses != "15.50" {
		t.Errorf("days = %+v", cal.Days)
	}
	if cal.TotalIncome != "3000.00" || cal.TotalExpenses != "55.50" || cal.Net != "2944.50" {
		t.Errorf("totals = %+v", cal)
	}

	current := decode[calendarView](t, env.do(t, http.MethodGet, "/api/calendar", ""))
	if current.Year != 2025 || current.Month != 3 || current.TransactionCount != 1 {
		t.Errorf("default month = %+v", current)
	}

	rec := env.do(t, http.MethodGet, "/api/calendar?month=13&year=abc", "")
	paths := errorPaths(decode[ErrorBody](t, rec))
	if rec.Code != http.StatusBadRequest || !paths["month"] || !paths["year"] {
		t.Errorf("invalid params: status=%d body=%s", rec.Code, rec.Body)
	}
}

func TestMiddlewareChain(t *testing.T) {
	env := newTestEnv(t, Options{RateLimitPerMinute: 2})

	body := `{"name":"x","targetAmount":10}`
	for i := 0; i < 2; i++ {
		if rec := env.do(t, http.MethodPost, "/api/savings-goals", body); rec.Code != http.StatusOK {
			t.Fatalf("post %d status=%d", i, rec.Code)
		}
	}
	rec := env.do(t, http.MethodPost, "/api/savings-goals", body)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("third post status=%d headers=%v", rec.Code, rec.Header())
	}
	if !strings.Contains(rec.Body.String(), "Rate limit exceeded") {
		t.Errorf("429 body = %s", rec.Body)
	}

	rec = env.do(t, http.MethodGet, "/api/savings-goals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reads are not limited, status=%d", rec.Code)
	}
	for _, h := range []string{"X-Request-ID", "Content-Security-Policy", "X-Content-Type-Options"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestUnsupportedMethod(t *testing.T) {
	env := newTestEnv(t, Options{})

	if rec := env.do(t, http.MethodPatch, "/api/transactions", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status=%d, want 405", rec.Code)
	}
}

func TestRequestBodyTooLarge(t *testing.T) {
	env := newTestEnv(t, Options{})

	big := `{"description":"` + string(bytes.Repeat([]byte("a"), maxBodyBytes)) + `"}`
	rec := env.do(t, http.MethodPost, "/api/transactions", big)
	if rec.Code != http.StatusBadRequest || !errorPaths(decode[ErrorBody](t, rec))["body"] {
		t.Errorf("status=%d body=%.200s", rec.Code, rec.Body)
	}
}
