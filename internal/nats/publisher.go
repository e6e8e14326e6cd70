package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/data-ashita/monitor-dash/internal/models"
)

// Publisher broadcasts snapshot notices. It implements the service
// Notifier interface.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher wraps an established NATS connection.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// SnapshotComputed publishes a SnapshotNotice for the given snapshot.
func (p *Publisher) SnapshotComputed(ctx context.Context, snap *models.Snapshot) error {
	data, err := json.Marshal(noticeFromSnapshot(snap))
	if err != nil {
		return fmt.Errorf("marshal snapshot notice: %w", err)
	}
	if err := p.conn.Publish(SubjectSnapshotComputed, data); err != nil {
		return fmt.Errorf("publish snapshot notice: %w", err)
	}
	return nil
}
