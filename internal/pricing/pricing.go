// Package pricing computes order totals. Every function here is pure:
// same inputs, same outputs, no I/O and no mutation of arguments.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/revxrent/storefront/internal/domain"
)

// Totals is the financial breakdown of an order.
type Totals struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	ShippingFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// ComputeTotals prices a set of line items: sum of line totals, plus
// tax and shipping, minus the offer discount.
func ComputeTotals(items []domain.LineItem, tax, shippingFee decimal.Decimal, offer domain.Offer) Totals {
	return ComputeTotalsFromSubtotal(domain.SumLineTotals(items), tax, shippingFee, offer)
}

// ComputeTotalsFromSubtotal prices an order whose subtotal is already
// known. The discount applies to the post-tax, post-shipping base: a
// fixed offer is capped at the base, a percentage offer takes that
// share of the base, and the total never goes below zero.
func ComputeTotalsFromSubtotal(subtotal, tax, shippingFee decimal.Decimal, offer domain.Offer) Totals {
	base := subtotal.Add(tax).Add(shippingFee)

	var discount decimal.Decimal
	switch offer.Type {
	case domain.OfferFixed:
		discount = decimal.Min(offer.Value, base)
	case domain.OfferPercentage:
		discount = base.Mul(offer.Value).Div(decimal.NewFromInt(100))
	default:
		discount = decimal.Zero
	}

	total := base.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		ShippingFee: shippingFee,
		Discount:    discount,
		Total:       total,
	}
}
