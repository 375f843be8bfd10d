package http

import (
	"net/http"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// handleListSavingsGoals returns goals newest first, each with its progress.
func (s *Server) handleListSavingsGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.dashboard.SavingsGoals(r.Context(), s.userID)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to fetch savings goals")
		return
	}
	NewJSONResponse().Body(newGoalViews(goals)).Write(w)
}

func (s *Server) handleCreateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var in SavingsGoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err, "Invalid savings goal data", "Failed to create savings goal")
		return
	}

	created, err := s.records.CreateSavingsGoal(r.Context(), in.SavingsGoal(s.userID))
	if err != nil {
		writeServiceError(w, r, err, "Invalid savings goal data", "Failed to create savings goal")
		return
	}
	s.logMutation(r, log.OpCreate, string(amqp.KindSavingsGoal), created.ID)
	NewJSONResponse().Body(created).Write(w)
}

func (s *Server) handleUpdateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in SavingsGoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err, "Invalid savings goal data", "Failed to update savings goal")
		return
	}

	updated, found, err := s.records.UpdateSavingsGoal(r.Context(), id, in.Patch())
	if err != nil {
		writeServiceError(w, r, err, "Invalid savings goal data", "Failed to update savings goal")
		return
	}
	if !found {
		NotFoundError("Savings goal not found").Write(w)
		return
	}
	s.logMutation(r, log.OpUpdate, string(amqp.KindSavingsGoal), id)
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteSavingsGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := s.records.DeleteSavingsGoal(r.Context(), s.userID, id)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to delete savings goal")
		return
	}
	if !deleted {
		NotFoundError("Savings goal not found").Write(w)
		return
	}
	s.logMutation(r, log.OpDelete, string(amqp.KindSavingsGoal), id)
	NewJSONResponse().Message("Savings goal deleted successfully").Write(w)
}
