// Package http provides the JSON REST boundary of the expense manager.
package http

import (
	"log/slog"
	"net/http"
	"time"

	applog "expenses/internal/log"
	"expenses/internal/store"
)

// Server wires routes and middleware around the configured store. The
// store may be nil when startup initialization failed; data-bearing
// handlers then answer 503 and the health probe reports unhealthy.
type Server struct {
	http.Server
	store store.Store
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, st store.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store: st,
	}

	mux.HandleFunc("/{$}", s.withRequestLog(s.handleRoot))
	mux.HandleFunc("/health", s.withRequestLog(s.handleHealth))
	mux.HandleFunc("/expenses/{date}", s.withRequestLog(s.handleExpensesForDate))
	mux.HandleFunc("/summary", s.withRequestLog(s.handleSummary))

	return s
}

// withRequestLog adds CORS headers, a request id, and request logging.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		requestID := generateRequestID()
		ip := clientIP(r)

		slog.InfoContext(r.Context(), "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, ip,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(r.Context(), "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, ip)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
