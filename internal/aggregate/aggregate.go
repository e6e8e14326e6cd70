// Package aggregate derives the dashboard views from a window of task
// log events. Every function is a pure transformation over its input
// slice: no I/O, no clocks, no state between calls. All views for one
// request are built from the same slice so their totals always agree.
package aggregate

import (
	"sort"
	"time"

	"github.com/data-ashita/monitor-dash/internal/models"
)

// LatestStatuses returns the most recent event per task name.
// Events are stable-sorted by CreatedAt descending; when two events for
// the same task carry an identical timestamp, the one earlier in input
// order wins. Returns an empty map for empty input.
func LatestStatuses(events []models.LogEvent) map[string]models.LogEvent {
	sorted := make([]models.LogEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	latest := make(map[string]models.LogEvent, len(sorted))
	for _, ev := range sorted {
		if _, seen := latest[ev.TaskName]; !seen {
			latest[ev.TaskName] = ev
		}
	}
	return latest
}

// ComputeTaskStats rolls up per-task counts. Output is sorted ascending
// by task name regardless of input order. Unrecognized levels count in
// Total but in neither Success nor Failure.
func ComputeTaskStats(events []models.LogEvent) []models.TaskStats {
	byTask := make(map[string]*models.TaskStats)
	for _, ev := range events {
		st, ok := byTask[ev.TaskName]
		if !ok {
			st = &models.TaskStats{TaskName: ev.TaskName}
			byTask[ev.TaskName] = st
		}
		st.Total++
		switch {
		case ev.Level.IsSuccess():
			st.Success++
		case ev.Level.IsFailure():
			st.Failure++
		}
	}

	stats := make([]models.TaskStats, 0, len(byTask))
	for _, st := range byTask {
		st.SuccessRate = successRate(st.Success, st.Total)
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].TaskName < stats[j].TaskName
	})
	return stats
}

// TrendSeries counts events per calendar date of CreatedAt, in whatever
// location each timestamp already carries. Output is sorted ascending by
// date and is sparse: dates without events are not synthesized.
func TrendSeries(events []models.LogEvent) []models.TrendPoint {
	byDate := make(map[string]int)
	for _, ev := range events {
		byDate[ev.CreatedAt.Format(time.DateOnly)]++
	}

	points := make([]models.TrendPoint, 0, len(byDate))
	for date, count := range byDate {
		points = append(points, models.TrendPoint{Date: date, Count: count})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

// LevelDistribution counts events per level value. Only levels present
// in the input appear as keys.
func LevelDistribution(events []models.LogEvent) map[models.Level]int {
	dist := make(map[models.Level]int)
	for _, ev := range events {
		dist[ev.Level]++
	}
	return dist
}

// ComputeAlertState reports whether any failure-level event exists and
// which tasks produced one. FailedTasks is sorted ascending.
func ComputeAlertState(events []models.LogEvent) models.AlertState {
	failed := make(map[string]struct{})
	count := 0
	for _, ev := range events {
		if ev.Level.IsFailure() {
			count++
			failed[ev.TaskName] = struct{}{}
		}
	}

	tasks := make([]string, 0, len(failed))
	for name := range failed {
		tasks = append(tasks, name)
	}
	sort.Strings(tasks)

	return models.AlertState{
		HasAlert:     count > 0,
		FailureCount: count,
		FailedTasks:  tasks,
	}
}

// BuildSnapshot computes every derived view from one event slice and
// attaches window metadata. fetchedAt is recorded verbatim so cached
// snapshots keep their original fetch time.
func BuildSnapshot(window models.TimeRange, days int, fetchedAt time.Time, events []models.LogEvent) *models.Snapshot {
	latest := LatestStatuses(events)
	stats := ComputeTaskStats(events)

	statuses := make([]models.TaskStatus, 0, len(latest))
	for _, ev := range latest {
		statuses = append(statuses, models.TaskStatus{
			TaskName:  ev.TaskName,
			Level:     ev.Level,
			Success:   ev.Level.IsSuccess(),
			Message:   failureMessage(ev),
			RunSource: ev.RunSource,
			LastRun:   ev.CreatedAt,
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].TaskName < statuses[j].TaskName
	})

	dist := LevelDistribution(events)
	levels := make([]models.LevelCount, 0, len(dist))
	for level, count := range dist {
		levels = append(levels, models.LevelCount{Level: level, Count: count})
	}
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Level < levels[j].Level
	})

	success := 0
	for _, ev := range events {
		if ev.Level.IsSuccess() {
			success++
		}
	}

	return &models.Snapshot{
		Days:        days,
		From:        window.From,
		To:          window.To,
		FetchedAt:   fetchedAt,
		TotalEvents: len(events),
		TaskCount:   len(latest),
		SuccessRate: successRate(success, len(events)),
		Latest:      statuses,
		Stats:       stats,
		Trend:       TrendSeries(events),
		Levels:      levels,
		Alert:       ComputeAlertState(events),
	}
}

// failureMessage surfaces the event message only for failure levels; the
// dashboard hides messages for healthy runs.
func failureMessage(ev models.LogEvent) string {
	if ev.Level.IsFailure() {
		return ev.Message
	}
	return ""
}

// successRate guards the empty-window case explicitly.
func successRate(success, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(success) / float64(total) * 100
}
