package http

import (
	"net/http"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.store.ListTransactions(r.Context(), s.userID)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to fetch transactions")
		return
	}
	NewJSONResponse().Body(nonNil(txs)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err, "Invalid transaction data", "Failed to create transaction")
		return
	}

	created, err := s.records.CreateTransaction(r.Context(), in.Transaction(s.userID))
	if err != nil {
		writeServiceError(w, r, err, "Invalid transaction data", "Failed to create transaction")
		return
	}
	s.logMutation(r, log.OpCreate, string(amqp.KindTransaction), created.ID)
	NewJSONResponse().Body(created).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err, "Invalid transaction data", "Failed to update transaction")
		return
	}

	updated, found, err := s.records.UpdateTransaction(r.Context(), id, in.Patch())
	if err != nil {
		writeServiceError(w, r, err, "Invalid transaction data", "Failed to update transaction")
		return
	}
	if !found {
		NotFoundError("Transaction not found").Write(w)
		return
	}
	s.logMutation(r, log.OpUpdate, string(amqp.KindTransaction), id)
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := s.records.DeleteTransaction(r.Context(), s.userID, id)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to delete transaction")
		return
	}
	if !deleted {
		NotFoundError("Transaction not found").Write(w)
		return
	}
	s.logMutation(r, log.OpDelete, string(amqp.KindTransaction), id)
	NewJSONResponse().Message("Transaction deleted successfully").Write(w)
}
