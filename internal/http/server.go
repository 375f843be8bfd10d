package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/records"
	"fintrack/internal/services"
)

const (
	defaultCacheTTL      = 30 * time.Second
	defaultCacheSize     = 100
	cacheCleanupInterval = 5 * time.Minute
	dashboardLoadTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr string
	// UserID owns every record created through the API.
	UserID             string
	RateLimitPerMinute int
	DashboardCacheTTL  time.Duration
	DashboardCacheSize int
	Logger             *log.Logger
	// Clock overrides time.Now for dashboard computations.
	Clock func() time.Time
}

// Server is the fintrack JSON API.
type Server struct {
	http.Server

	logger    *log.Logger
	userID    string
	store     records.Store
	records   *services.RecordService
	dashboard *services.DashboardService
	now       func() time.Time
	started   time.Time

	// Dashboard summaries per user, dropped on every mutation of that user's records.
	summaries *cache.Loader[core.DashboardSummary]
	caches    *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// publisher may be nil.
func NewServer(opts Options, store records.Store, publisher services.EventPublisher) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.DashboardCacheTTL <= 0 {
		opts.DashboardCacheTTL = defaultCacheTTL
	}
	if opts.DashboardCacheSize <= 0 {
		opts.DashboardCacheSize = defaultCacheSize
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		logger:    logger,
		userID:    opts.UserID,
		store:     store,
		records:   services.NewRecordService(store, publisher, opts.Logger),
		dashboard: services.NewDashboardService(store).WithClock(opts.Clock),
		now:       opts.Clock,
		started:   time.Now(),
		summaries: cache.NewLoader(cache.NewLRUCache[core.DashboardSummary](opts.DashboardCacheSize, opts.DashboardCacheTTL)),
		caches:    cache.NewManager(opts.Logger),
		detector:  security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Methods:           ratelimit.MutatingMethods,
		}),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, opts.Logger)

	s.records.OnChange(s.invalidateDashboard)
	s.caches.Register(s.summaries.Cache())
	s.caches.StartCleanup(cacheCleanupInterval)

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/savings-goals", s.handleListSavingsGoals)
	mux.HandleFunc("POST /api/savings-goals", s.handleCreateSavingsGoal)
	mux.HandleFunc("PUT /api/savings-goals/{id}", s.handleUpdateSavingsGoal)
	mux.HandleFunc("DELETE /api/savings-goals/{id}", s.handleDeleteSavingsGoal)

	mux.HandleFunc("GET /api/recurring-transactions", s.handleListRecurring)
	mux.HandleFunc("POST /api/recurring-transactions", s.handleCreateRecurring)
	mux.HandleFunc("PUT /api/recurring-transactions/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("DELETE /api/recurring-transactions/{id}", s.handleDeleteRecurring)

	mux.HandleFunc("GET /api/salary-allocation", s.handleGetSalaryAllocation)
	mux.HandleFunc("POST /api/salary-allocation", s.handleSaveSalaryAllocation)

	mux.HandleFunc("GET /api/dashboard-stats", s.handleDashboardStats)
	mux.HandleFunc("GET /api/upcoming-bills", s.handleUpcomingBills)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
}

// middleware wraps the mux, outermost first: tracing, threat detection,
// security headers, rate limiting of mutating requests.
func (s *Server) middleware(next http.Handler) http.Handler {
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
		)
		TooManyRequestsError().Write(w)
	})

	h := limited(next)
	h = headers.Middleware(h)
	h = s.detector.Middleware(s.logger)(h)
	return s.tracer.Middleware(h)
}

// dashboardKey scopes a cached summary to the user and the calendar month it
// describes, so a new month never serves the previous month's totals.
func dashboardKey(userID string, now time.Time) string {
	return userID + "|" + now.Format("2006-01")
}

func (s *Server) invalidateDashboard(userID string) {
	s.summaries.Invalidate(dashboardKey(userID, s.now()))
}

// dashboardSummary serves the cached summary or computes it. The computation
// is shared by concurrent callers, so it runs detached from any single
// request's cancellation.
func (s *Server) dashboardSummary(ctx context.Context, userID string) (core.DashboardSummary, error) {
	return s.summaries.Get(dashboardKey(userID, s.now()), func() (core.DashboardSummary, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dashboardLoadTimeout)
		defer cancel()
		return s.dashboard.Summary(loadCtx, userID)
	})
}

// Shutdown gracefully shuts down the server and background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
