package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig carries the Stripe credentials and redirect URLs.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider configures the Stripe client.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret is required")
	}
	stripe.Key = cfg.SecretKey
	return &StripeProvider{webhookSecret: cfg.WebhookSecret}, nil
}

// CreateCheckoutSession creates a hosted checkout page for the order
// total. The order ID rides along in metadata so the webhook can find
// its way back.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error) {
	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(params.SuccessURL),
		CancelURL:     stripe.String(params.CancelURL),
		CustomerEmail: stripe.String(params.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(toMinorUnits(params.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Order %s", params.OrderNumber)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"orderId": params.OrderID,
		},
	}
	sessionParams.Context = ctx

	sess, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// toMinorUnits converts a decimal amount to integer cents.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// VerifyWebhook checks the signature and extracts the order reference
// from the event metadata.
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to verify webhook signature: %w", err)
	}

	out := &WebhookEvent{Type: string(event.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session event: %w", err)
	}
	out.OrderID = sess.Metadata["orderId"]
	if out.OrderID == "" {
		return nil, fmt.Errorf("checkout session %s has no order reference", sess.ID)
	}
	return out, nil
}
