package http

import (
	"net/http"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// handleDashboardStats serves the current-month summary, cached per user.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboardSummary(r.Context(), s.userID)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to fetch dashboard stats")
		return
	}
	NewJSONResponse().Body(newDashboardView(summary)).Write(w)
}

func (s *Server) handleUpcomingBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.dashboard.UpcomingBills(r.Context(), s.userID)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to fetch upcoming bills")
		return
	}
	NewJSONResponse().Body(newRecurringViews(bills)).Write(w)
}

// handleCalendar serves /api/calendar?year=&month=, defaulting to this month.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		writeServiceError(w, r, err, "Invalid calendar parameters", "Failed to fetch calendar")
		return
	}

	cal, err := s.dashboard.Calendar(r.Context(), s.userID, params.Year, params.Month)
	if err != nil {
		writeServiceError(w, r, err, "Invalid calendar parameters", "Failed to fetch calendar")
		return
	}
	NewJSONResponse().Body(newCalendarView(cal)).Write(w)
}

// handleGetSalaryAllocation returns the allocation with its bucket amounts, or
// null when none has been saved.
func (s *Server) handleGetSalaryAllocation(w http.ResponseWriter, r *http.Request) {
	a, breakdown, found, err := s.dashboard.Allocation(r.Context(), s.userID)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to fetch salary allocation")
		return
	}
	if !found {
		NewJSONResponse().Body(nil).Write(w)
		return
	}
	NewJSONResponse().Body(newAllocationView(a, breakdown)).Write(w)
}

func (s *Server) handleSaveSalaryAllocation(w http.ResponseWriter, r *http.Request) {
	var in SalaryAllocationInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err, "Invalid salary allocation data", "Failed to save salary allocation")
		return
	}

	saved, err := s.records.SaveSalaryAllocation(r.Context(), in.SalaryAllocation(s.userID))
	if err != nil {
		writeServiceError(w, r, err, "Invalid salary allocation data", "Failed to save salary allocation")
		return
	}
	s.logMutation(r, log.OpUpdate, string(amqp.KindSalaryAllocation), saved.ID)
	NewJSONResponse().Body(saved).Write(w)
}
