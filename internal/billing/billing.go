// Package billing abstracts the payment provider. The storefront only
// ever needs two things from it: a hosted checkout session for an
// order, and verification of the asynchronous payment callback.
package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// SessionParams describes the order a checkout session is created for.
type SessionParams struct {
	OrderID     string
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	Email       string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is a created hosted-payment session.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified payment callback.
type WebhookEvent struct {
	Type    string
	OrderID string
}

// EventCheckoutCompleted is the event type that marks an order paid.
const EventCheckoutCompleted = "checkout.session.completed"

// Provider is the payment gateway boundary.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
