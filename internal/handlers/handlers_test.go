package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-ashita/monitor-dash/internal/models"
	"github.com/data-ashita/monitor-dash/internal/store"
)

// mockDashboard is a mock implementation of the Dashboard interface
type mockDashboard struct {
	snapshotFunc func(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error)
	healthFunc   func(ctx context.Context) models.HealthResponse
}

func (m *mockDashboard) Snapshot(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error) {
	if m.snapshotFunc != nil {
		return m.snapshotFunc(ctx, days, forceRefresh)
	}
	return &models.Snapshot{Days: models.ClampDays(days)}, nil
}

func (m *mockDashboard) Health(ctx context.Context) models.HealthResponse {
	if m.healthFunc != nil {
		return m.healthFunc(ctx)
	}
	return models.HealthResponse{Status: "ok"}
}

func testSnapshot(days int) *models.Snapshot {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	return &models.Snapshot{
		Days:        days,
		From:        now.AddDate(0, 0, -days),
		To:          now,
		FetchedAt:   now,
		TotalEvents: 3,
		TaskCount:   2,
		SuccessRate: 33.3,
		Latest: []models.TaskStatus{
			{TaskName: "ingest", Level: models.LevelCritical, Message: "oom", LastRun: now.Add(-3 * time.Hour)},
			{TaskName: "sync-users", Level: models.LevelInfo, Success: true, LastRun: now.Add(-1 * time.Hour)},
		},
		Stats: []models.TaskStats{
			{TaskName: "ingest", Total: 1, Failure: 1},
			{TaskName: "sync-users", Total: 2, Success: 1, Failure: 1, SuccessRate: 50},
		},
		Trend: []models.TrendPoint{
			{Date: "2026-08-23", Count: 3},
		},
		Levels: []models.LevelCount{
			{Level: models.LevelCritical, Count: 1},
			{Level: models.LevelError, Count: 1},
			{Level: models.LevelInfo, Count: 1},
		},
		Alert: models.AlertState{HasAlert: true, FailureCount: 2, FailedTasks: []string{"ingest", "sync-users"}},
	}
}

func TestSnapshotHandler(t *testing.T) {
	var gotDays int
	var gotRefresh bool
	h := New(&mockDashboard{
		snapshotFunc: func(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error) {
			gotDays = days
			gotRefresh = forceRefresh
			return testSnapshot(models.ClampDays(days)), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot?days=14", nil)
	rec := httptest.NewRecorder()
	h.Snapshot(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 14, gotDays)
	assert.False(t, gotRefresh)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 14, snap.Days)
	assert.Equal(t, 3, snap.TotalEvents)
	assert.Len(t, snap.Latest, 2)
}

func TestSnapshotHandler_DefaultDays(t *testing.T) {
	var gotDays int
	h := New(&mockDashboard{
		snapshotFunc: func(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error) {
			gotDays = days
			return testSnapshot(days), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil)
	rec := httptest.NewRecorder()
	h.Snapshot(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DefaultWindowDays, gotDays)
}

func TestSnapshotHandler_InvalidDays(t *testing.T) {
	h := New(&mockDashboard{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot?days=week", nil)
	rec := httptest.NewRecorder()
	h.Snapshot(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_days", resp.Code)
}

func TestSnapshotHandler_RefreshParam(t *testing.T) {
	var gotRefresh bool
	h := New(&mockDashboard{
		snapshotFunc: func(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error) {
			gotRefresh = forceRefresh
			return testSnapshot(days), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot?days=7&refresh=true", nil)
	rec := httptest.NewRecorder()
	h.Snapshot(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotRefresh)
}

func TestSnapshotHandler_MethodNotAllowed(t *testing.T) {
	h := New(&mockDashboard{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshot", nil)
	rec := httptest.NewRecorder()
	h.Snapshot(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestSnapshotHandler_StoreUnavailable(t *testing.T) {
	h := New(&mockDashboard{
		snapshotFunc: func(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error) {
			return nil, fmt.Errorf("fetch events: %w: connection refused", store.ErrUnavailable)
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil)
	rec := httptest.NewRecorder()
	h.Snapshot(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "store_unavailable", resp.Code)
}

func TestSnapshotHandler_InternalError(t *testing.T) {
	h := New(&mockDashboard{
		snapshotFunc: func(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error) {
			return nil, errors.New("something unexpected")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil)
	rec := httptest.NewRecorder()
	h.Snapshot(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "snapshot_failed", resp.Code)
}

func TestViewHandlers_ProjectSnapshot(t *testing.T) {
	h := New(&mockDashboard{
		snapshotFunc: func(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error) {
			return testSnapshot(models.ClampDays(days)), nil
		},
	})

	t.Run("latest", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Latest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/latest", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var latest []models.TaskStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
		require.Len(t, latest, 2)
		assert.Equal(t, "ingest", latest[0].TaskName)
	})

	t.Run("stats", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var stats []models.TaskStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		require.Len(t, stats, 2)
		assert.Equal(t, 50.0, stats[1].SuccessRate)
	})

	t.Run("trend", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Trend(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trend", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var trend []models.TrendPoint
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trend))
		require.Len(t, trend, 1)
		assert.Equal(t, "2026-08-23", trend[0].Date)
	})

	t.Run("levels", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Levels(rec, httptest.NewRequest(http.MethodGet, "/api/v1/levels", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var levels []models.LevelCount
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &levels))
		assert.Len(t, levels, 3)
	})

	t.Run("alerts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Alerts(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var alert models.AlertState
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alert))
		assert.True(t, alert.HasAlert)
		assert.Equal(t, []string{"ingest", "sync-users"}, alert.FailedTasks)
	})
}

func TestRefreshHandler(t *testing.T) {
	var gotRefresh bool
	h := New(&mockDashboard{
		snapshotFunc: func(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error) {
			gotRefresh = forceRefresh
			return testSnapshot(models.ClampDays(days)), nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh?days=7", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotRefresh, "refresh endpoint always forces a recompute")

	// GET is not accepted.
	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodGet, "/api/v1/refresh", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	h := New(&mockDashboard{
		healthFunc: func(ctx context.Context) models.HealthResponse {
			return models.HealthResponse{Status: "ok", Store: "postgres", CacheEnabled: true}
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "postgres", resp.Store)
	assert.True(t, resp.CacheEnabled)
}
