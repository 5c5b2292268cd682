// Package worker drains the notification queue in the background.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/revxrent/storefront/internal/email"
	"github.com/revxrent/storefront/internal/jobs"
	"github.com/revxrent/storefront/internal/store"
)

// Config tunes the polling loop.
type Config struct {
	PollInterval time.Duration
	MaxAttempts  int
	Concurrency  int
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
}

// Worker polls the store for pending notifications and delivers them
// through the email service. Delivery failures are retried up to
// MaxAttempts, then parked as failed.
type Worker struct {
	store  store.Store
	emails *email.Service
	logger *slog.Logger
	cfg    Config
}

// New builds a worker.
func New(s store.Store, emails *email.Service, logger *slog.Logger, cfg Config) *Worker {
	cfg.applyDefaults()
	return &Worker{store: s, emails: emails, logger: logger, cfg: cfg}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.logger.Info("notification worker started",
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Int("max_attempts", w.cfg.MaxAttempts))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain processes everything pending, bounded by Concurrency per tick.
func (w *Worker) drain(ctx context.Context) {
	sem := make(chan struct{}, w.cfg.Concurrency)
	for {
		n, err := w.store.ClaimNextNotification(ctx)
		if errors.Is(err, store.ErrNotFound) {
			break
		}
		if err != nil {
			w.logger.Error("failed to claim notification", slog.String("error", err.Error()))
			break
		}

		sem <- struct{}{}
		go func(n *jobs.Notification) {
			defer func() { <-sem }()
			w.process(ctx, n)
		}(n)
	}
	for i := 0; i < w.cfg.Concurrency; i++ {
		sem <- struct{}{}
	}
}

func (w *Worker) process(ctx context.Context, n *jobs.Notification) {
	err := w.deliver(ctx, n)
	if err == nil {
		if err := w.store.CompleteNotification(ctx, n.ID); err != nil {
			w.logger.Error("failed to mark notification delivered",
				slog.String("notification_id", n.ID),
				slog.String("error", err.Error()))
		}
		return
	}

	attempts := n.Attempts + 1
	terminal := attempts >= w.cfg.MaxAttempts
	w.logger.Warn("notification delivery failed",
		slog.String("notification_id", n.ID),
		slog.String("kind", string(n.Kind)),
		slog.Int("attempts", attempts),
		slog.Bool("terminal", terminal),
		slog.String("error", err.Error()))

	if err := w.store.FailNotification(ctx, n.ID, attempts, err.Error(), terminal); err != nil {
		w.logger.Error("failed to record notification failure",
			slog.String("notification_id", n.ID),
			slog.String("error", err.Error()))
	}
}

func (w *Worker) deliver(ctx context.Context, n *jobs.Notification) error {
	switch n.Kind {
	case jobs.KindOrderConfirmation:
		var payload jobs.OrderConfirmationPayload
		if err := json.Unmarshal(n.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode confirmation payload: %w", err)
		}
		return w.emails.SendOrderConfirmation(ctx, payload)
	case jobs.KindOrderUpdate:
		var payload jobs.OrderUpdatePayload
		if err := json.Unmarshal(n.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode update payload: %w", err)
		}
		return w.emails.SendOrderUpdate(ctx, payload)
	default:
		return fmt.Errorf("unknown notification kind: %s", n.Kind)
	}
}
