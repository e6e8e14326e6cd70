// Package nats provides NATS message handling for the dashboard service.
// External producers publish refresh requests when a batch of task logs
// lands; the dashboard broadcasts a notice whenever a fresh snapshot has
// been computed.
package nats

import (
	"time"

	"github.com/data-ashita/monitor-dash/internal/models"
)

// Subjects and queue groups used by the dashboard.
const (
	// SubjectRefresh carries RefreshRequest messages. Consumed with a
	// queue group so only one worker recomputes per request.
	SubjectRefresh = "tasklog.refresh"

	// SubjectSnapshotComputed carries SnapshotNotice broadcasts.
	SubjectSnapshotComputed = "tasklog.snapshot.computed"

	// QueueDashWorkers is the queue group for refresh consumers.
	QueueDashWorkers = "dash-workers"
)

// RefreshRequest asks the dashboard to recompute a window. Days outside
// the supported range are clamped; zero means the default window.
type RefreshRequest struct {
	Days   int    `json:"days,omitempty"`
	Source string `json:"source,omitempty"`
}

// SnapshotNotice is broadcast after every snapshot computation so
// downstream consumers can react to alert transitions without polling.
type SnapshotNotice struct {
	Days         int       `json:"days"`
	FetchedAt    time.Time `json:"fetched_at"`
	TotalEvents  int       `json:"total_events"`
	TaskCount    int       `json:"task_count"`
	SuccessRate  float64   `json:"success_rate"`
	HasAlert     bool      `json:"has_alert"`
	FailureCount int       `json:"failure_count"`
	FailedTasks  []string  `json:"failed_tasks,omitempty"`
}

func noticeFromSnapshot(snap *models.Snapshot) SnapshotNotice {
	return SnapshotNotice{
		Days:         snap.Days,
		FetchedAt:    snap.FetchedAt,
		TotalEvents:  snap.TotalEvents,
		TaskCount:    snap.TaskCount,
		SuccessRate:  snap.SuccessRate,
		HasAlert:     snap.Alert.HasAlert,
		FailureCount: snap.Alert.FailureCount,
		FailedTasks:  snap.Alert.FailedTasks,
	}
}
