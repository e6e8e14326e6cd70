package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/data-ashita/monitor-dash/internal/models"
)

// PostgresStore reads task_logs rows from PostgreSQL. This matches the
// hosted-table deployment where task runners insert directly into the
// database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pgx pool and verifies the connection.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// FetchEvents returns all events inside the window, newest first.
func (s *PostgresStore) FetchEvents(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error) {
	q := `SELECT task_name, level, message, run_source, created_at
	      FROM task_logs
	      WHERE created_at >= $1 AND created_at <= $2
	      ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("query task_logs: %w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var events []models.LogEvent
	for rows.Next() {
		var ev models.LogEvent
		var level string
		if err := rows.Scan(&ev.TaskName, &level, &ev.Message, &ev.RunSource, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task_logs row: %w", err)
		}
		ev.Level = models.Level(level)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task_logs rows: %w", err)
	}
	return events, nil
}

// InsertEvents bulk-inserts rows in a single transaction. Used by the
// seeding tool only.
func (s *PostgresStore) InsertEvents(ctx context.Context, events []models.LogEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	q := `INSERT INTO task_logs (task_name, level, message, run_source, created_at)
	      VALUES ($1, $2, $3, $4, $5)`
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(q, ev.TaskName, string(ev.Level), ev.Message, ev.RunSource, ev.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	for range events {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert task_logs row: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
