package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revxrent/storefront/internal/billing"
	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/handler/webhook"
	"github.com/revxrent/storefront/internal/service"
	"github.com/revxrent/storefront/internal/store"
)

func newHandler(t *testing.T, provider *billing.MockProvider) (*webhook.PaymentHandler, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orders, err := service.NewOrderService(m, nil, provider, logger, service.OrderServiceConfig{StrictTransitions: true})
	require.NoError(t, err)
	return webhook.NewPaymentHandler(provider, orders), m
}

func seedOrder(t *testing.T, m *store.Memory) *domain.Order {
	t.Helper()
	order := &domain.Order{
		OrderNumber: domain.NewOrderNumber(),
		UserRef:     "user-1",
		Status:      domain.StatusProcessing,
		Customer:    domain.CustomerInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		Items: []domain.LineItem{
			{ProductRef: "p1", Name: "Roof Rack", UnitPrice: decimal.NewFromInt(100), Quantity: 1, Mode: domain.ModePurchase},
		},
		Subtotal:    decimal.NewFromInt(100),
		Tax:         decimal.NewFromInt(8),
		ShippingFee: decimal.NewFromInt(15),
		Total:       decimal.NewFromInt(123),
		Offer:       domain.NoOffer(),
		OrderedAt:   time.Now().UTC(),
	}
	require.NoError(t, m.CreateOrder(context.Background(), order))
	return order
}

func TestHandleMarksOrderPaid(t *testing.T) {
	provider := &billing.MockProvider{}
	h, m := newHandler(t, provider)
	order := seedOrder(t, m)
	provider.VerifyWebhookFunc = func(payload []byte, signature string) (*billing.WebhookEvent, error) {
		assert.Equal(t, "sig_valid", signature)
		return &billing.WebhookEvent{Type: billing.EventCheckoutCompleted, OrderID: order.ID}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "sig_valid")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["received"])

	got, err := m.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status)
}

func TestHandleReplayStaysOK(t *testing.T) {
	provider := &billing.MockProvider{}
	h, m := newHandler(t, provider)
	order := seedOrder(t, m)
	provider.VerifyWebhookFunc = func([]byte, string) (*billing.WebhookEvent, error) {
		return &billing.WebhookEvent{Type: billing.EventCheckoutCompleted, OrderID: order.ID}, nil
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Handle(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{}`)))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	got, err := m.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status)
	// first delivery bumped the revision, the replay did not
	assert.Equal(t, int64(2), got.Revision)
}

func TestHandleRejectsBadSignature(t *testing.T) {
	provider := &billing.MockProvider{
		VerifyWebhookFunc: func([]byte, string) (*billing.WebhookEvent, error) {
			return nil, errors.New("signature mismatch")
		},
	}
	h, _ := newHandler(t, provider)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIgnoresOtherEvents(t *testing.T) {
	provider := &billing.MockProvider{
		VerifyWebhookFunc: func([]byte, string) (*billing.WebhookEvent, error) {
			return &billing.WebhookEvent{Type: "invoice.paid"}, nil
		},
	}
	h, m := newHandler(t, provider)
	order := seedOrder(t, m)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := m.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)
}

func TestHandleUnknownOrder(t *testing.T) {
	provider := &billing.MockProvider{
		VerifyWebhookFunc: func([]byte, string) (*billing.WebhookEvent, error) {
			return &billing.WebhookEvent{Type: billing.EventCheckoutCompleted, OrderID: "no-such-order"}, nil
		},
	}
	h, _ := newHandler(t, provider)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
