package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports 503 until the record store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"store": "ok"}

	if err := s.store.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeDatabase,
		)
		checks["store"] = "failed"
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traced := s.tracer.GetMetrics()
	limited := s.limiter.GetMetrics()
	detected := s.detector.GetMetrics()

	NewJSONResponse().Body(map[string]any{
		"uptime_seconds":          int64(time.Since(s.started).Seconds()),
		"requests_total":          traced.TotalRequests,
		"average_response_ms":     traced.AverageResponseTime().Milliseconds(),
		"rate_limited_total":      limited.TotalHits,
		"rate_limit_clients":      limited.ClientCount,
		"suspicious_requests":     detected.SuspiciousRequests,
		"blocked_requests":        detected.BlockedRequests,
		"dashboard_cache_entries": s.summaries.Cache().Size(),
	}).Write(w)
}

func (s *Server) logMutation(r *http.Request, operation, kind, id string) {
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogRecordMutation(r.Context(), operation, kind, id, s.userID)
}
