package jobs

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revxrent/storefront/internal/domain"
)

func sampleOrder() *domain.Order {
	return &domain.Order{
		OrderNumber: "ORD-1700000000000-42",
		Status:      domain.StatusProcessing,
		Customer: domain.CustomerInfo{
			Name:  "Ada Lovelace",
			Email: "ada@example.com",
		},
		Items: []domain.LineItem{
			{Name: "Roof Rack", UnitPrice: decimal.RequireFromString("49.99"), Quantity: 2, Mode: domain.ModePurchase},
			{
				Name:     "Compact SUV",
				Quantity: 1,
				Mode:     domain.ModeRental,
				Rental:   &domain.RentalDetails{Unit: domain.RentalDaily, Rate: decimal.NewFromInt(60), Duration: 3},
			},
		},
		Subtotal:       decimal.RequireFromString("279.98"),
		Tax:            decimal.RequireFromString("22.40"),
		ShippingFee:    decimal.RequireFromString("5.99"),
		Total:          decimal.RequireFromString("308.37"),
		HasRentalItems: true,
		HasMixedItems:  true,
	}
}

func TestBuildOrderConfirmation(t *testing.T) {
	p := BuildOrderConfirmation(sampleOrder())

	assert.Equal(t, "ada@example.com", p.To)
	assert.Equal(t, "308.37", p.Order.Total)
	require.Len(t, p.Lines, 2)
	assert.Equal(t, "99.98", p.Lines[0].LineTotal)
	assert.Empty(t, p.Lines[0].Rental)
	assert.Equal(t, "180.00", p.Lines[1].LineTotal)
	assert.Equal(t, "3 days @ 60.00", p.Lines[1].Rental)
	assert.True(t, p.HasMixedItems)
}

func TestBuildOrderUpdateOnlyChangedFields(t *testing.T) {
	status := domain.StatusConfirmed
	total := decimal.RequireFromString("250.00")
	p := BuildOrderUpdate(sampleOrder(), domain.OrderChanges{Status: &status, Total: &total})

	require.Len(t, p.Changes, 2)
	assert.Equal(t, "status", p.Changes[0].Field)
	assert.Contains(t, p.Changes[0].Summary, "confirmed")
	assert.Equal(t, "total", p.Changes[1].Field)
	assert.Contains(t, p.Changes[1].Summary, "250.00")
}

func TestBuildOrderUpdateOfferSummaries(t *testing.T) {
	fixed := domain.Offer{Type: domain.OfferFixed, Value: decimal.NewFromInt(30), Description: "Loyalty discount"}
	p := BuildOrderUpdate(sampleOrder(), domain.OrderChanges{Offer: &fixed})
	require.Len(t, p.Changes, 1)
	assert.Equal(t, "Discount applied: Loyalty discount (30.00 off)", p.Changes[0].Summary)

	pct := domain.Offer{Type: domain.OfferPercentage, Value: decimal.NewFromInt(10)}
	p = BuildOrderUpdate(sampleOrder(), domain.OrderChanges{Offer: &pct})
	assert.Equal(t, "Discount applied: 10% off", p.Changes[0].Summary)

	none := domain.NoOffer()
	p = BuildOrderUpdate(sampleOrder(), domain.OrderChanges{Offer: &none})
	assert.Equal(t, "Discount removed", p.Changes[0].Summary)
}
