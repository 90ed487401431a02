package http

import (
	"log/slog"
	"net/http"
	"strings"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		writeStorageUnavailable(w)
		return
	}

	startStr := strings.TrimSpace(r.URL.Query().Get("start_date"))
	endStr := strings.TrimSpace(r.URL.Query().Get("end_date"))
	if startStr == "" || endStr == "" {
		writeError(w, http.StatusBadRequest, "start_date and end_date query parameters are required")
		return
	}

	start, err := core.ParseDate(startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date: expected YYYY-MM-DD")
		return
	}
	end, err := core.ParseDate(endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date: expected YYYY-MM-DD")
		return
	}

	// Rejected before storage is queried.
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "the start_date cannot be after the end_date")
		return
	}

	totals, err := s.store.ExpenseSummary(r.Context(), start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to fetch expense summary",
			applog.FieldError, err,
			applog.FieldStartDate, start.String(),
			applog.FieldEndDate, end.String(),
			applog.FieldOperation, "summary")
		writeError(w, http.StatusInternalServerError, "an internal server error occurred while fetching the summary")
		return
	}

	if totals == nil {
		totals = []core.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}
