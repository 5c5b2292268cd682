package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revxrent/storefront/internal/email"
	"github.com/revxrent/storefront/internal/jobs"
	"github.com/revxrent/storefront/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func enqueueConfirmation(t *testing.T, m *store.Memory, to string) *jobs.Notification {
	t.Helper()
	payload, err := json.Marshal(jobs.OrderConfirmationPayload{
		To:           to,
		CustomerName: "Ada Lovelace",
		Order:        jobs.OrderSummary{OrderNumber: "ORD-1-1", Total: "10.00"},
	})
	require.NoError(t, err)
	n := &jobs.Notification{Kind: jobs.KindOrderConfirmation, Payload: payload}
	require.NoError(t, m.EnqueueNotification(context.Background(), n))
	return n
}

func TestWorkerDeliversPending(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	sender := &email.MockSender{}
	svc, err := email.NewService(sender)
	require.NoError(t, err)

	enqueueConfirmation(t, m, "ada@example.com")
	w := New(m, svc, testLogger(), Config{})

	w.drain(ctx)

	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "ada@example.com", sender.Sent[0].To)

	// queue is empty after delivery
	_, err = m.ClaimNextNotification(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWorkerRetriesThenParksFailure(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	sender := &email.MockSender{
		SendFunc: func(context.Context, email.Email) error {
			return errors.New("smtp timeout")
		},
	}
	svc, err := email.NewService(sender)
	require.NoError(t, err)

	enqueueConfirmation(t, m, "ada@example.com")
	w := New(m, svc, testLogger(), Config{MaxAttempts: 2, Concurrency: 1})

	// first attempt fails and re-queues
	w.drain(ctx)
	// second attempt fails and parks
	w.drain(ctx)

	assert.Len(t, sender.Sent, 2)
	_, err = m.ClaimNextNotification(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWorkerUnknownKindIsTerminal(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc, err := email.NewService(&email.MockSender{})
	require.NoError(t, err)

	n := &jobs.Notification{Kind: "sms.blast", Payload: []byte(`{}`)}
	require.NoError(t, m.EnqueueNotification(ctx, n))

	w := New(m, svc, testLogger(), Config{MaxAttempts: 1, Concurrency: 1})
	w.drain(ctx)

	_, err = m.ClaimNextNotification(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
