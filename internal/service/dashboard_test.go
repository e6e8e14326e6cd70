package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-ashita/monitor-dash/internal/cache"
	"github.com/data-ashita/monitor-dash/internal/logging"
	"github.com/data-ashita/monitor-dash/internal/models"
)

// mockStore is a mock implementation of store.EventStore
type mockStore struct {
	fetchEventsFunc func(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error)
	fetchCalls      int
}

func (m *mockStore) FetchEvents(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error) {
	m.fetchCalls++
	if m.fetchEventsFunc != nil {
		return m.fetchEventsFunc(ctx, window)
	}
	return nil, nil
}

func (m *mockStore) Close() error { return nil }

// mockNotifier records snapshot notices.
type mockNotifier struct {
	snapshots []*models.Snapshot
	err       error
}

func (m *mockNotifier) SnapshotComputed(ctx context.Context, snap *models.Snapshot) error {
	m.snapshots = append(m.snapshots, snap)
	return m.err
}

// failingCache errors on every operation.
type failingCache struct{}

func (failingCache) Get(ctx context.Context, days int) (*models.Snapshot, bool, error) {
	return nil, false, errors.New("redis down")
}
func (failingCache) Set(ctx context.Context, days int, snap *models.Snapshot) error {
	return errors.New("redis down")
}
func (failingCache) Invalidate(ctx context.Context, days int) error {
	return errors.New("redis down")
}

func testLogger() *logging.Logger {
	return logging.New(slog.LevelError, "text")
}

func testRedisCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisCache(client, time.Minute)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sampleEvents(now time.Time) []models.LogEvent {
	return []models.LogEvent{
		{TaskName: "sync-users", Level: models.LevelInfo, CreatedAt: now.Add(-1 * time.Hour)},
		{TaskName: "sync-users", Level: models.LevelError, Message: "timeout", CreatedAt: now.Add(-2 * time.Hour)},
		{TaskName: "ingest", Level: models.LevelCritical, Message: "oom", CreatedAt: now.Add(-3 * time.Hour)},
	}
}

func TestSnapshot_ComputesAndCaches(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := &mockStore{
		fetchEventsFunc: func(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error) {
			assert.True(t, window.To.Equal(now))
			assert.True(t, window.From.Equal(now.AddDate(0, 0, -7)))
			return sampleEvents(now), nil
		},
	}
	svc := NewDashboardService(st, testRedisCache(t), nil, testLogger(), Info{})
	svc.now = fixedClock(now)

	snap, err := svc.Snapshot(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Days)
	assert.Equal(t, 3, snap.TotalEvents)
	assert.Equal(t, 2, snap.TaskCount)
	assert.True(t, snap.Alert.HasAlert)
	assert.Equal(t, []string{"ingest", "sync-users"}, snap.Alert.FailedTasks)

	// Second call within the TTL is served from cache.
	again, err := svc.Snapshot(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Equal(t, 1, st.fetchCalls)
	assert.Equal(t, snap.TotalEvents, again.TotalEvents)
	assert.True(t, snap.FetchedAt.Equal(again.FetchedAt))
}

func TestSnapshot_ForceRefreshRecomputes(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := &mockStore{
		fetchEventsFunc: func(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error) {
			return sampleEvents(now), nil
		},
	}
	svc := NewDashboardService(st, testRedisCache(t), nil, testLogger(), Info{})
	svc.now = fixedClock(now)

	_, err := svc.Snapshot(context.Background(), 7, false)
	require.NoError(t, err)

	_, err = svc.Snapshot(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Equal(t, 2, st.fetchCalls, "refresh must bypass the cache")
}

func TestSnapshot_ClampsWindow(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := &mockStore{}
	svc := NewDashboardService(st, cache.Noop{}, nil, testLogger(), Info{})
	svc.now = fixedClock(now)

	snap, err := svc.Snapshot(context.Background(), 100, false)
	require.NoError(t, err)
	assert.Equal(t, models.MaxWindowDays, snap.Days)

	snap, err = svc.Snapshot(context.Background(), 0, false)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultWindowDays, snap.Days)
}

func TestSnapshot_EmptyStore(t *testing.T) {
	svc := NewDashboardService(&mockStore{}, cache.Noop{}, nil, testLogger(), Info{})

	snap, err := svc.Snapshot(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalEvents)
	assert.Equal(t, 0, snap.TaskCount)
	assert.Equal(t, float64(0), snap.SuccessRate)
	assert.Empty(t, snap.Latest)
	assert.False(t, snap.Alert.HasAlert)
}

func TestSnapshot_StoreErrorPropagates(t *testing.T) {
	st := &mockStore{
		fetchEventsFunc: func(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewDashboardService(st, cache.Noop{}, nil, testLogger(), Info{})

	_, err := svc.Snapshot(context.Background(), 7, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch events")
}

func TestSnapshot_CacheFailureDegradesToRecompute(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := &mockStore{
		fetchEventsFunc: func(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error) {
			return sampleEvents(now), nil
		},
	}
	svc := NewDashboardService(st, failingCache{}, nil, testLogger(), Info{})
	svc.now = fixedClock(now)

	snap, err := svc.Snapshot(context.Background(), 7, false)
	require.NoError(t, err, "a broken cache must not fail the request")
	assert.Equal(t, 3, snap.TotalEvents)
	assert.Equal(t, 1, st.fetchCalls)
}

func TestRefresh_NotifiesAndReplacesCache(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := &mockStore{
		fetchEventsFunc: func(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error) {
			return sampleEvents(now), nil
		},
	}
	notifier := &mockNotifier{}
	c := testRedisCache(t)
	svc := NewDashboardService(st, c, notifier, testLogger(), Info{})
	svc.now = fixedClock(now)

	snap, err := svc.Refresh(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, notifier.snapshots, 1)
	assert.Equal(t, snap.TotalEvents, notifier.snapshots[0].TotalEvents)

	cached, ok, err := c.Get(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, ok, "refresh must repopulate the cache")
	assert.Equal(t, snap.TotalEvents, cached.TotalEvents)
}

func TestSnapshot_NotifierErrorDoesNotFailRequest(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := &mockStore{
		fetchEventsFunc: func(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error) {
			return sampleEvents(now), nil
		},
	}
	notifier := &mockNotifier{err: errors.New("nats down")}
	svc := NewDashboardService(st, cache.Noop{}, notifier, testLogger(), Info{})
	svc.now = fixedClock(now)

	snap, err := svc.Snapshot(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.TotalEvents)
}
