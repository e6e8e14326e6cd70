// Package handlers wires HTTP routes to the dashboard service. Every
// view endpoint is a projection of the same snapshot, so values returned
// by different endpoints for the same window always agree.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/data-ashita/monitor-dash/internal/httputil"
	"github.com/data-ashita/monitor-dash/internal/models"
	"github.com/data-ashita/monitor-dash/internal/store"
)

// Dashboard is the service surface the handlers depend on.
type Dashboard interface {
	Snapshot(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error)
	Health(ctx context.Context) models.HealthResponse
}

// Handler wires HTTP routes to the dashboard service.
type Handler struct {
	svc Dashboard
}

// New creates a Handler instance.
func New(svc Dashboard) *Handler {
	return &Handler{svc: svc}
}

// Snapshot handles GET /api/v1/snapshot.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, func(snap *models.Snapshot) interface{} { return snap })
}

// Latest handles GET /api/v1/latest.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, func(snap *models.Snapshot) interface{} { return snap.Latest })
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, func(snap *models.Snapshot) interface{} { return snap.Stats })
}

// Trend handles GET /api/v1/trend.
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, func(snap *models.Snapshot) interface{} { return snap.Trend })
}

// Levels handles GET /api/v1/levels.
func (h *Handler) Levels(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, func(snap *models.Snapshot) interface{} { return snap.Levels })
}

// Alerts handles GET /api/v1/alerts.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, func(snap *models.Snapshot) interface{} { return snap.Alert })
}

// Refresh handles POST /api/v1/refresh: invalidate the cached snapshot
// for the window and return the recomputed one.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost)
		return
	}
	days, ok := h.parseDays(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Snapshot(r.Context(), days, true)
	if err != nil {
		h.writeSnapshotError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// Health handles GET /healthz for liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.svc.Health(r.Context()))
}

// serveView runs the shared GET pipeline and projects one view out of
// the snapshot.
func (h *Handler) serveView(w http.ResponseWriter, r *http.Request, project func(*models.Snapshot) interface{}) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	days, ok := h.parseDays(w, r)
	if !ok {
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	snap, err := h.svc.Snapshot(r.Context(), days, refresh)
	if err != nil {
		h.writeSnapshotError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, project(snap))
}

// writeSnapshotError maps pipeline failures onto status codes: an
// unreachable store is a 502, anything else a 500.
func (h *Handler) writeSnapshotError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		httputil.WriteError(w, http.StatusBadGateway, "store_unavailable", err.Error())
		return
	}
	httputil.WriteError(w, http.StatusInternalServerError, "snapshot_failed", err.Error())
}

// parseDays reads the optional ?days parameter. A missing parameter
// falls back to the default window; a non-integer value is a 400. Out of
// range integers are clamped by the service.
func (h *Handler) parseDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return models.DefaultWindowDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid_days", "days must be an integer")
		return 0, false
	}
	return days, true
}
