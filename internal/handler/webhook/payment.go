// Package webhook receives asynchronous callbacks from the payment
// provider.
package webhook

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/revxrent/storefront/internal/billing"
	"github.com/revxrent/storefront/internal/handler"
	"github.com/revxrent/storefront/internal/middleware"
	"github.com/revxrent/storefront/internal/service"
)

// maxPayloadBytes bounds webhook bodies.
const maxPayloadBytes = 65536

// PaymentHandler verifies payment callbacks and marks orders paid.
type PaymentHandler struct {
	provider billing.Provider
	orders   service.OrderService
}

// NewPaymentHandler builds the handler.
func NewPaymentHandler(provider billing.Provider, orders service.OrderService) *PaymentHandler {
	return &PaymentHandler{provider: provider, orders: orders}
}

// Handle processes POST /webhooks/payment. The provider retries on
// non-2xx, so anything already handled answers 200.
func (h *PaymentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFrom(r.Context())

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		logger.Error("failed to read webhook payload", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := h.provider.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		logger.Warn("rejected webhook", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if event.Type != billing.EventCheckoutCompleted {
		// Acknowledge event types we do not act on.
		handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	order, err := h.orders.MarkPaid(r.Context(), event.OrderID)
	if err != nil {
		logger.Error("failed to mark order paid",
			slog.String("order_id", event.OrderID),
			slog.String("error", err.Error()))
		handler.Error(w, r, err)
		return
	}

	logger.Info("order marked paid",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber))
	handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
}
