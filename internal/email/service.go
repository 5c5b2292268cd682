package email

import (
	"context"
	"fmt"

	"github.com/revxrent/storefront/internal/jobs"
)

// Service renders notification payloads and hands them to a Sender.
type Service struct {
	sender Sender
}

// NewService builds the email service.
func NewService(sender Sender) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	return &Service{sender: sender}, nil
}

// SendOrderConfirmation renders and sends the confirmation email.
func (s *Service) SendOrderConfirmation(ctx context.Context, payload jobs.OrderConfirmationPayload) error {
	msg, err := renderConfirmation(payload)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, msg)
}

// SendOrderUpdate renders and sends the order-updated email. Payloads
// with no changes render nothing and send nothing.
func (s *Service) SendOrderUpdate(ctx context.Context, payload jobs.OrderUpdatePayload) error {
	if len(payload.Changes) == 0 {
		return nil
	}
	msg, err := renderUpdate(payload)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, msg)
}
