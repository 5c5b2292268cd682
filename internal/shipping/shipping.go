// Package shipping abstracts shipping rate lookup behind a provider
// interface.
package shipping

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateParams describes a shipment to be priced.
type RateParams struct {
	Subtotal   decimal.Decimal
	ItemCount  int
	Street     string
	City       string
	State      string
	PostalCode string
}

// Rate is one quoted shipping option.
type Rate struct {
	ServiceName string
	ServiceCode string
	Cost        decimal.Decimal
	DaysMin     int
	DaysMax     int
}

// Provider quotes shipping rates for an order.
type Provider interface {
	GetRates(ctx context.Context, params RateParams) ([]Rate, error)
}
