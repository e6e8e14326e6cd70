package models

import "time"

// Level is the severity reported by a task execution. Values outside the
// known constants are legal; they count toward totals and the level
// distribution but are neither successes nor failures.
type Level string

const (
	LevelInfo     Level = "INFO"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

// IsSuccess reports whether the level marks a successful run.
func (l Level) IsSuccess() bool {
	return l == LevelInfo
}

// IsFailure reports whether the level marks a failed run.
func (l Level) IsFailure() bool {
	return l == LevelError || l == LevelCritical
}

// LogEvent is one reported outcome of a task execution, as stored in the
// task_logs table. Rows are immutable; CreatedAt is the source of truth
// for ordering and date bucketing.
type LogEvent struct {
	TaskName  string    `json:"task_name"`
	Level     Level     `json:"level"`
	Message   string    `json:"message,omitempty"`
	RunSource string    `json:"run_source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskStatus is the most recent event for a task within the queried
// window, shaped for the dashboard's task table.
type TaskStatus struct {
	TaskName  string    `json:"task_name"`
	Level     Level     `json:"level"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	RunSource string    `json:"run_source,omitempty"`
	LastRun   time.Time `json:"last_run"`
}

// TaskStats holds per-task rollup counts for the queried window.
type TaskStats struct {
	TaskName    string  `json:"task_name"`
	Total       int     `json:"total"`
	Success     int     `json:"success"`
	Failure     int     `json:"failure"`
	SuccessRate float64 `json:"success_rate"`
}

// TrendPoint is the event count for one calendar date. Dates with no
// events are not emitted.
type TrendPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// LevelCount is the frequency of one level value in the window.
type LevelCount struct {
	Level Level `json:"level"`
	Count int   `json:"count"`
}

// AlertState flags whether any failure-level event exists in the window
// and which tasks are implicated. FailedTasks is sorted ascending.
type AlertState struct {
	HasAlert     bool     `json:"has_alert"`
	FailureCount int      `json:"failure_count"`
	FailedTasks  []string `json:"failed_tasks"`
}

// Snapshot bundles every derived view computed from one fetch so the
// rendered metrics always agree with each other.
type Snapshot struct {
	Days        int       `json:"days"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	FetchedAt   time.Time `json:"fetched_at"`
	TotalEvents int       `json:"total_events"`
	TaskCount   int       `json:"task_count"`
	SuccessRate float64   `json:"success_rate"`

	Latest []TaskStatus `json:"latest"`
	Stats  []TaskStats  `json:"stats"`
	Trend  []TrendPoint `json:"trend"`
	Levels []LevelCount `json:"levels"`
	Alert  AlertState   `json:"alert"`
}

// TimeRange bounds an event fetch. From is inclusive, To is inclusive.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

const (
	// MinWindowDays and MaxWindowDays bound the queryable window, matching
	// the dashboard's range selector.
	MinWindowDays = 1
	MaxWindowDays = 30

	// DefaultWindowDays is used when the caller supplies no window.
	DefaultWindowDays = 7
)

// ClampDays normalizes a caller-supplied day count into the supported
// window. Zero and negative values fall back to the default.
func ClampDays(days int) int {
	if days <= 0 {
		return DefaultWindowDays
	}
	if days < MinWindowDays {
		return MinWindowDays
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

// WindowForDays builds the fetch range [now-days, now] for a clamped day
// count, anchored at the supplied clock time.
func WindowForDays(now time.Time, days int) (TimeRange, int) {
	days = ClampDays(days)
	return TimeRange{
		From: now.AddDate(0, 0, -days),
		To:   now,
	}, days
}

// HealthResponse is emitted for liveness probes.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Store         string `json:"store"`
	CacheEnabled  bool   `json:"cache_enabled"`
}

// ErrorResponse formalizes error messages returned to clients.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
