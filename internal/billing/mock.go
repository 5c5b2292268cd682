package billing

import "context"

// MockProvider is a func-field test double for Provider.
type MockProvider struct {
	CreateCheckoutSessionFunc func(ctx context.Context, params SessionParams) (*CheckoutSession, error)
	VerifyWebhookFunc         func(payload []byte, signature string) (*WebhookEvent, error)
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error) {
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}
	return &CheckoutSession{ID: "cs_test", URL: "https://pay.example.com/cs_test"}, nil
}

func (m *MockProvider) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if m.VerifyWebhookFunc != nil {
		return m.VerifyWebhookFunc(payload, signature)
	}
	return &WebhookEvent{Type: EventCheckoutCompleted}, nil
}
