package email

import "context"

// MockSender records sent emails for tests.
type MockSender struct {
	SendFunc func(ctx context.Context, email Email) error
	Sent     []Email
}

func (m *MockSender) Send(ctx context.Context, email Email) error {
	m.Sent = append(m.Sent, email)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}
	return nil
}
