package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revxrent/storefront/internal/jobs"
)

func confirmationPayload() jobs.OrderConfirmationPayload {
	return jobs.OrderConfirmationPayload{
		To:           "ada@example.com",
		CustomerName: "Ada Lovelace",
		Order: jobs.OrderSummary{
			OrderNumber: "ORD-1700000000000-42",
			Status:      "processing",
			Subtotal:    "279.98",
			Tax:         "22.40",
			ShippingFee: "5.99",
			Total:       "308.37",
			ItemCount:   2,
		},
		Lines: []jobs.SummaryLine{
			{Name: "Roof Rack", Quantity: 2, LineTotal: "99.98"},
			{Name: "Compact SUV", Quantity: 1, LineTotal: "180.00", Rental: "3 days @ 60.00"},
		},
		HasRentals: true,
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	sender := &MockSender{}
	svc, err := NewService(sender)
	require.NoError(t, err)

	require.NoError(t, svc.SendOrderConfirmation(context.Background(), confirmationPayload()))
	require.Len(t, sender.Sent, 1)

	sent := sender.Sent[0]
	assert.Equal(t, "ada@example.com", sent.To)
	assert.Equal(t, "Order confirmation - ORD-1700000000000-42", sent.Subject)
	assert.Contains(t, sent.HTML, "Compact SUV")
	assert.Contains(t, sent.HTML, "3 days @ 60.00")
	assert.Contains(t, sent.HTML, "308.37")
	assert.Contains(t, sent.HTML, "rental items")
	assert.Contains(t, sent.Text, "Roof Rack x2: 99.98")
}

func TestSendOrderUpdate(t *testing.T) {
	sender := &MockSender{}
	svc, err := NewService(sender)
	require.NoError(t, err)

	payload := jobs.OrderUpdatePayload{
		To:           "ada@example.com",
		CustomerName: "Ada Lovelace",
		Order: jobs.OrderSummary{
			OrderNumber: "ORD-1700000000000-42",
			Status:      "confirmed",
			Subtotal:    "279.98",
			Tax:         "22.40",
			ShippingFee: "10.00",
			Total:       "312.38",
		},
		Changes: []jobs.FieldChange{
			{Field: "status", Summary: "Order status is now confirmed"},
			{Field: "shippingFee", Summary: "Shipping fee updated to 10.00"},
		},
	}

	require.NoError(t, svc.SendOrderUpdate(context.Background(), payload))
	require.Len(t, sender.Sent, 1)

	sent := sender.Sent[0]
	assert.Equal(t, "Order update - ORD-1700000000000-42", sent.Subject)
	assert.Contains(t, sent.HTML, "Order status is now confirmed")
	assert.Contains(t, sent.HTML, "Shipping fee updated to 10.00")
	assert.Contains(t, sent.Text, "Status: confirmed")
}

func TestSendOrderUpdateNoChangesSendsNothing(t *testing.T) {
	sender := &MockSender{}
	svc, err := NewService(sender)
	require.NoError(t, err)

	require.NoError(t, svc.SendOrderUpdate(context.Background(), jobs.OrderUpdatePayload{To: "ada@example.com"}))
	assert.Empty(t, sender.Sent)
}
