package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"count": 2}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"count":2}` {
		t.Errorf("Body = %q", got)
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Error("custom header not set")
	}
	if w.Header().Get("Content-Type") != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(func() {}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		code    int
		body    string
	}{
		{"not found", NotFoundError("Transaction not found"), http.StatusNotFound, `{"message":"Transaction not found"}`},
		{"internal", InternalServerError("Failed to fetch transactions"), http.StatusInternalServerError, `{"message":"Failed to fetch transactions"}`},
		{"message", NewJSONResponse().Message("Transaction deleted successfully"), http.StatusOK, `{"message":"Transaction deleted successfully"}`},
		{
			"validation",
			ValidationError("Invalid transaction data", core.ValidationErrors{{Path: "amount", Message: "must be greater than 0"}}),
			http.StatusBadRequest,
			`{"message":"Invalid transaction data","errors":[{"path":"amount","message":"must be greater than 0"}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.body {
				t.Errorf("Body = %s, want %s", got, tt.body)
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", core.ValidationErrors{{Path: "name", Message: "is required"}}, http.StatusBadRequest, "Invalid savings goal data"},
		{"wrapped validation", fmt.Errorf("create: %w", core.ValidationErrors{{Path: "name", Message: "is required"}}), http.StatusBadRequest, "Invalid savings goal data"},
		{"data integrity", fmt.Errorf("sum: %w", core.ErrDataIntegrity), http.StatusInternalServerError, "Failed to create savings goal"},
		{"storage", errors.New("database is locked"), http.StatusInternalServerError, "Failed to create savings goal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/savings-goals", nil)
			writeServiceError(w, r, tt.err, "Invalid savings goal data", "Failed to create savings goal")

			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			if !strings.Contains(w.Body.String(), `"message":"`+tt.msg+`"`) {
				t.Errorf("Body = %s", w.Body.String())
			}
			if strings.Contains(w.Body.String(), "locked") {
				t.Error("storage details leaked into the response")
			}
		})
	}
}
