package http

import (
	"log/slog"
	"net/http"

	"expenses/internal/core"
)

const apiVersion = "1.0.0"

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "Expense Manager API",
		"version": apiVersion,
		"status":  "operational",
		"endpoints": map[string]string{
			"GET /":                   "API information",
			"GET /health":             "Health check",
			"GET /expenses/{date}":    "Get expenses for a date",
			"POST /expenses/{date}":   "Add expenses for a date",
			"DELETE /expenses/{date}": "Delete expenses for a date",
			"GET /summary":            "Get expense summary (requires start_date and end_date params)",
		},
	})
}

// handleHealth reports a three-valued status: unhealthy when no store
// was configured at startup, degraded when the probe read fails,
// healthy otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := healthResponse{
		Status:   "healthy",
		Database: "disconnected",
	}

	if s.store == nil {
		health.Status = "unhealthy"
		writeJSON(w, http.StatusOK, health)
		return
	}

	// Harmless read against today's date as the probe.
	if _, err := s.store.ExpensesForDate(r.Context(), core.Today()); err != nil {
		slog.ErrorContext(r.Context(), "Database health check failed", "error", err)
		health.Status = "degraded"
		health.Database = "error"
	} else {
		health.Database = "connected"
	}

	writeJSON(w, http.StatusOK, health)
}
