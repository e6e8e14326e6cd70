// Package store provides access to the hosted task_logs table. The
// aggregation engine treats the store as an opaque collaborator: it only
// ever receives a well-typed (possibly empty) slice of events for a
// window, never partial results.
package store

import (
	"context"
	"errors"

	"github.com/data-ashita/monitor-dash/internal/models"
)

// Backend names accepted by the store config.
const (
	BackendPostgres   = "postgres"
	BackendOpenSearch = "opensearch"
)

// ErrUnavailable indicates the backing store could not be reached.
var ErrUnavailable = errors.New("event store unavailable")

// EventStore fetches log events for a time window. Implementations must
// tolerate empty result sets and return events in any order; the
// aggregation engine sorts what it needs.
type EventStore interface {
	// FetchEvents returns all events with created_at inside the window.
	FetchEvents(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error)

	// Close releases any resources held by the store.
	Close() error
}

// EventWriter is implemented by stores that accept rows, used only by
// the seeding tool. The dashboard itself never writes.
type EventWriter interface {
	InsertEvents(ctx context.Context, events []models.LogEvent) error
}
