package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/data-ashita/monitor-dash/internal/logging"
	"github.com/data-ashita/monitor-dash/internal/models"
)

// Refresher recomputes a window on demand. Implemented by the dashboard
// service.
type Refresher interface {
	Refresh(ctx context.Context, days int) (*models.Snapshot, error)
}

// Handler consumes refresh requests from NATS and triggers snapshot
// recomputation.
type Handler struct {
	conn   *nats.Conn
	svc    Refresher
	sub    *nats.Subscription
	logger *logging.Logger
}

// NewHandler creates a NATS handler bound to the dashboard service.
func NewHandler(conn *nats.Conn, svc Refresher, logger *logging.Logger) *Handler {
	return &Handler{conn: conn, svc: svc, logger: logger}
}

// Start subscribes to the refresh subject with a queue group so a single
// worker handles each request.
func (h *Handler) Start(ctx context.Context) error {
	sub, err := h.conn.QueueSubscribe(SubjectRefresh, QueueDashWorkers, func(msg *nats.Msg) {
		h.handleRefresh(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", SubjectRefresh, err)
	}
	h.sub = sub

	h.logger.InfoContext(ctx, "nats handler started",
		"subject", SubjectRefresh,
		"queue_group", QueueDashWorkers,
	)
	return nil
}

// Stop unsubscribes from the refresh subject.
func (h *Handler) Stop() error {
	if h.sub == nil {
		return nil
	}
	if err := h.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("unsubscribe from %s: %w", SubjectRefresh, err)
	}
	h.sub = nil
	return nil
}

func (h *Handler) handleRefresh(ctx context.Context, msg *nats.Msg) {
	var req RefreshRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		h.logger.ErrorContext(ctx, "bad refresh request", logging.Error(err))
		return
	}

	days := models.ClampDays(req.Days)
	snap, err := h.svc.Refresh(ctx, days)
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh failed",
			logging.Error(err),
			logging.Days(days),
			"source", req.Source,
		)
		return
	}

	// Request-reply callers get the notice directly.
	if msg.Reply != "" {
		data, err := json.Marshal(noticeFromSnapshot(snap))
		if err == nil {
			if err := h.conn.Publish(msg.Reply, data); err != nil {
				h.logger.WarnContext(ctx, "refresh reply failed", logging.Error(err))
			}
		}
	}

	h.logger.InfoContext(ctx, "refresh handled",
		logging.Days(days),
		logging.Events(snap.TotalEvents),
		"source", req.Source,
	)
}
