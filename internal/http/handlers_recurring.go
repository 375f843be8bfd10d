package http

import (
	"net/http"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// handleListRecurring returns recurring transactions by due date with their
// status and the monthly-normalized totals.
func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	items, summary, err := s.dashboard.Recurring(r.Context(), s.userID)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to fetch recurring transactions")
		return
	}
	NewJSONResponse().Body(newRecurringOverviewView(items, summary)).Write(w)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var in RecurringTransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err, "Invalid recurring transaction data", "Failed to create recurring transaction")
		return
	}

	created, err := s.records.CreateRecurringTransaction(r.Context(), in.RecurringTransaction(s.userID))
	if err != nil {
		writeServiceError(w, r, err, "Invalid recurring transaction data", "Failed to create recurring transaction")
		return
	}
	s.logMutation(r, log.OpCreate, string(amqp.KindRecurringTransaction), created.ID)
	NewJSONResponse().Body(created).Write(w)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in RecurringTransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err, "Invalid recurring transaction data", "Failed to update recurring transaction")
		return
	}

	updated, found, err := s.records.UpdateRecurringTransaction(r.Context(), id, in.Patch())
	if err != nil {
		writeServiceError(w, r, err, "Invalid recurring transaction data", "Failed to update recurring transaction")
		return
	}
	if !found {
		NotFoundError("Recurring transaction not found").Write(w)
		return
	}
	s.logMutation(r, log.OpUpdate, string(amqp.KindRecurringTransaction), id)
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := s.records.DeleteRecurringTransaction(r.Context(), s.userID, id)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to delete recurring transaction")
		return
	}
	if !deleted {
		NotFoundError("Recurring transaction not found").Write(w)
		return
	}
	s.logMutation(r, log.OpDelete, string(amqp.KindRecurringTransaction), id)
	NewJSONResponse().Message("Recurring transaction deleted successfully").Write(w)
}
