package tax

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// PercentageCalculator applies a single flat rate to every subtotal.
type PercentageCalculator struct {
	rate decimal.Decimal
}

// NewPercentageCalculator builds a calculator for the given rate,
// expressed as a fraction (0.08 for 8%).
func NewPercentageCalculator(rate decimal.Decimal) (*PercentageCalculator, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("tax rate must be between 0 and 1, got %s", rate)
	}
	return &PercentageCalculator{rate: rate}, nil
}

// Calculate returns subtotal*rate. Negative subtotals tax as zero.
func (c *PercentageCalculator) Calculate(_ context.Context, params Params) (Result, error) {
	if params.Subtotal.IsNegative() {
		return Result{Amount: decimal.Zero, Rate: c.rate}, nil
	}
	return Result{
		Amount: params.Subtotal.Mul(c.rate),
		Rate:   c.rate,
	}, nil
}
