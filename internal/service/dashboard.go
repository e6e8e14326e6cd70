// Package service implements the dashboard pipeline: fetch events for a
// window, derive every view in one pass, and cache the bundled snapshot.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/data-ashita/monitor-dash/internal/aggregate"
	"github.com/data-ashita/monitor-dash/internal/cache"
	"github.com/data-ashita/monitor-dash/internal/logging"
	"github.com/data-ashita/monitor-dash/internal/metrics"
	"github.com/data-ashita/monitor-dash/internal/models"
	"github.com/data-ashita/monitor-dash/internal/store"
)

// Triggers recorded against computed snapshots.
const (
	TriggerAPI     = "api"
	TriggerRefresh = "refresh"
	TriggerMessage = "message"
)

// Notifier is told whenever a fresh snapshot has been computed. Used to
// publish snapshot notices on the message bus; may be nil.
type Notifier interface {
	SnapshotComputed(ctx context.Context, snap *models.Snapshot) error
}

// Info describes the running deployment for health responses.
type Info struct {
	Version      string
	Store        string
	CacheEnabled bool
}

// DashboardService coordinates the event store, the aggregation engine
// and the snapshot cache.
type DashboardService struct {
	store  store.EventStore
	cache  cache.SnapshotCache
	notify Notifier
	logger *logging.Logger
	info   Info
	start  time.Time

	// now is swappable in tests; fetch windows anchor on it.
	now func() time.Time
}

// NewDashboardService creates a service instance. notify may be nil when
// no message bus is configured.
func NewDashboardService(st store.EventStore, c cache.SnapshotCache, notify Notifier, logger *logging.Logger, info Info) *DashboardService {
	return &DashboardService{
		store:  st,
		cache:  c,
		notify: notify,
		logger: logger,
		info:   info,
		start:  time.Now(),
		now:    time.Now,
	}
}

// Health reports liveness details for probes.
func (s *DashboardService) Health(ctx context.Context) models.HealthResponse {
	return models.HealthResponse{
		Status:        "ok",
		Version:       s.info.Version,
		UptimeSeconds: int64(time.Since(s.start).Seconds()),
		Store:         s.info.Store,
		CacheEnabled:  s.info.CacheEnabled,
	}
}

// Snapshot returns the dashboard snapshot for a window. Cached snapshots
// are served until their TTL lapses; forceRefresh invalidates the entry
// and recomputes. Cache read failures degrade to a recompute rather than
// failing the request.
func (s *DashboardService) Snapshot(ctx context.Context, days int, forceRefresh bool) (*models.Snapshot, error) {
	days = models.ClampDays(days)

	if forceRefresh {
		if err := s.cache.Invalidate(ctx, days); err != nil {
			s.logger.WarnContext(ctx, "cache invalidate failed", logging.Error(err), logging.Days(days))
		}
	} else {
		snap, ok, err := s.cache.Get(ctx, days)
		if err != nil {
			s.logger.WarnContext(ctx, "cache read failed, recomputing", logging.Error(err), logging.Days(days))
		} else if ok {
			metrics.CacheHits.Inc()
			return snap, nil
		}
		metrics.CacheMisses.Inc()
	}

	trigger := TriggerAPI
	if forceRefresh {
		trigger = TriggerRefresh
	}
	return s.compute(ctx, days, trigger)
}

// Refresh recomputes the snapshot for a window on behalf of a message
// bus trigger, bypassing and replacing any cached entry.
func (s *DashboardService) Refresh(ctx context.Context, days int) (*models.Snapshot, error) {
	days = models.ClampDays(days)
	if err := s.cache.Invalidate(ctx, days); err != nil {
		s.logger.WarnContext(ctx, "cache invalidate failed", logging.Error(err), logging.Days(days))
	}
	return s.compute(ctx, days, TriggerMessage)
}

func (s *DashboardService) compute(ctx context.Context, days int, trigger string) (*models.Snapshot, error) {
	window, days := models.WindowForDays(s.now(), days)

	start := time.Now()
	events, err := s.store.FetchEvents(ctx, window)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	metrics.EventsFetched.Add(float64(len(events)))

	snap := aggregate.BuildSnapshot(window, days, s.now(), events)

	metrics.SnapshotsComputed.WithLabelValues(trigger).Inc()
	metrics.FailingTasks.Set(float64(len(snap.Alert.FailedTasks)))

	if err := s.cache.Set(ctx, days, snap); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", logging.Error(err), logging.Days(days))
	}

	if s.notify != nil {
		if err := s.notify.SnapshotComputed(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "snapshot notice failed", logging.Error(err), logging.Days(days))
		}
	}

	s.logger.InfoContext(ctx, "snapshot computed",
		logging.Days(days),
		logging.Events(snap.TotalEvents),
		"trigger", trigger,
		"tasks", snap.TaskCount,
		"has_alert", snap.Alert.HasAlert,
	)
	return snap, nil
}
