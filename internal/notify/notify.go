// Package notify is the producer side of the notification queue.
// Enqueues are best effort: a failure is logged and swallowed so the
// business operation that triggered it never fails on its account.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/revxrent/storefront/internal/jobs"
	"github.com/revxrent/storefront/internal/store"
)

// Notifier accepts domain events for asynchronous delivery.
type Notifier interface {
	OrderConfirmation(ctx context.Context, payload jobs.OrderConfirmationPayload)
	OrderUpdate(ctx context.Context, payload jobs.OrderUpdatePayload)
}

// Queue persists notifications through the store for the worker to
// drain.
type Queue struct {
	store  store.Store
	logger *slog.Logger
}

// NewQueue builds a store-backed notifier.
func NewQueue(s store.Store, logger *slog.Logger) *Queue {
	return &Queue{store: s, logger: logger}
}

func (q *Queue) enqueue(ctx context.Context, kind jobs.Kind, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		q.logger.Error("failed to encode notification payload",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return
	}
	n := &jobs.Notification{Kind: kind, Payload: data}
	if err := q.store.EnqueueNotification(ctx, n); err != nil {
		q.logger.Error("failed to enqueue notification",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
	}
}

func (q *Queue) OrderConfirmation(ctx context.Context, payload jobs.OrderConfirmationPayload) {
	q.enqueue(ctx, jobs.KindOrderConfirmation, payload)
}

func (q *Queue) OrderUpdate(ctx context.Context, payload jobs.OrderUpdatePayload) {
	q.enqueue(ctx, jobs.KindOrderUpdate, payload)
}

// Noop discards every notification. Used in tests and when email is
// not configured.
type Noop struct{}

func (Noop) OrderConfirmation(context.Context, jobs.OrderConfirmationPayload) {}
func (Noop) OrderUpdate(context.Context, jobs.OrderUpdatePayload)             {}
