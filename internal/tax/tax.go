// Package tax abstracts sales tax calculation behind a small provider
// interface so the checkout flow does not care where rates come from.
package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// Params is the input to a tax calculation.
type Params struct {
	Subtotal decimal.Decimal
	State    string
}

// Result is a computed tax amount plus the rate that produced it.
type Result struct {
	Amount decimal.Decimal
	Rate   decimal.Decimal
}

// Calculator computes the tax owed on an order subtotal.
type Calculator interface {
	Calculate(ctx context.Context, params Params) (Result, error)
}
