package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

type createExpensesResponse struct {
	Message       string  `json:"message"`
	InsertedCount int     `json:"inserted_count"`
	InsertedIDs   []int64 `json:"inserted_ids"`
}

type deleteExpensesResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

func (s *Server) handleExpensesForDate(w http.ResponseWriter, r *http.Request) {
	date, err := parseDatePath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r, date)
	case http.MethodPost:
		s.createExpenses(w, r, date)
	case http.MethodDelete:
		s.deleteExpenses(w, r, date)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request, date core.Date) {
	if s.store == nil {
		writeStorageUnavailable(w)
		return
	}

	expenses, err := s.store.ExpensesForDate(r.Context(), date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to fetch expenses",
			applog.FieldError, err,
			applog.FieldDate, date.String(),
			applog.FieldOperation, "list")
		writeError(w, http.StatusInternalServerError, "an internal server error occurred while fetching expenses")
		return
	}

	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) createExpenses(w http.ResponseWriter, r *http.Request, date core.Date) {
	if s.store == nil {
		writeStorageUnavailable(w)
		return
	}

	var items []core.Expense
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: expected a JSON array of expenses")
		return
	}

	// The whole payload is validated before any insert begins: one bad
	// item rejects the entire batch with nothing persisted.
	for i := range items {
		items[i].ID = 0
		items[i].Date = date
		if err := items[i].Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid expense at index %d: %v", i, err))
			return
		}
	}

	// Each insert is its own transaction; a mid-batch storage failure
	// leaves earlier committed rows in place.
	insertedIDs := make([]int64, 0, len(items))
	for i, e := range items {
		id, err := s.store.InsertExpense(r.Context(), e)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to insert expense",
				applog.FieldError, err,
				applog.FieldDate, date.String(),
				applog.FieldCategory, e.Category,
				applog.FieldAmountCents, e.Amount.Cents,
				"index", i,
				"committed_so_far", len(insertedIDs),
				applog.FieldOperation, "create")
			writeError(w, http.StatusInternalServerError, "an internal server error occurred while adding expenses")
			return
		}
		insertedIDs = append(insertedIDs, id)
	}

	slog.InfoContext(r.Context(), "Expenses created",
		applog.FieldDate, date.String(),
		applog.FieldInsertedCount, len(insertedIDs))

	writeJSON(w, http.StatusOK, createExpensesResponse{
		Message:       fmt.Sprintf("Successfully added %d expense(s) for %s.", len(insertedIDs), date),
		InsertedCount: len(insertedIDs),
		InsertedIDs:   insertedIDs,
	})
}

func (s *Server) deleteExpenses(w http.ResponseWriter, r *http.Request, date core.Date) {
	if s.store == nil {
		writeStorageUnavailable(w)
		return
	}

	deleted, err := s.store.DeleteExpensesForDate(r.Context(), date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete expenses",
			applog.FieldError, err,
			applog.FieldDate, date.String(),
			applog.FieldOperation, "delete")
		writeError(w, http.StatusInternalServerError, "an internal server error occurred while deleting expenses")
		return
	}

	slog.InfoContext(r.Context(), "Expenses deleted",
		applog.FieldDate, date.String(),
		applog.FieldDeletedCount, deleted)

	writeJSON(w, http.StatusOK, deleteExpensesResponse{
		Message:      fmt.Sprintf("Successfully deleted %d expense(s) for %s.", deleted, date),
		DeletedCount: deleted,
	})
}
