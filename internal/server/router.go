// Package server assembles the HTTP surface: API routes, probes, metrics
// and the middleware chain.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/data-ashita/monitor-dash/internal/handlers"
	"github.com/data-ashita/monitor-dash/internal/middleware"
)

// NewRouter constructs a ServeMux with dashboard API routes registered
// and wraps it with request ID and CORS middleware.
func NewRouter(h *handlers.Handler, cors middleware.CORSConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/snapshot", h.Snapshot)
	mux.HandleFunc("/api/v1/latest", h.Latest)
	mux.HandleFunc("/api/v1/stats", h.Stats)
	mux.HandleFunc("/api/v1/trend", h.Trend)
	mux.HandleFunc("/api/v1/levels", h.Levels)
	mux.HandleFunc("/api/v1/alerts", h.Alerts)
	mux.HandleFunc("/api/v1/refresh", h.Refresh)
	mux.HandleFunc("/healthz", h.Health)
	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = middleware.CORS(cors)(handler)
	handler = middleware.RequestID(handler)
	return handler
}
