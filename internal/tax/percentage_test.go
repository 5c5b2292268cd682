package tax

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentageCalculator(t *testing.T) {
	calc, err := NewPercentageCalculator(decimal.RequireFromString("0.08"))
	require.NoError(t, err)

	res, err := calc.Calculate(context.Background(), Params{Subtotal: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(8)))
	assert.True(t, res.Rate.Equal(decimal.RequireFromString("0.08")))
}

func TestPercentageCalculatorNegativeSubtotal(t *testing.T) {
	calc, err := NewPercentageCalculator(decimal.RequireFromString("0.08"))
	require.NoError(t, err)

	res, err := calc.Calculate(context.Background(), Params{Subtotal: decimal.NewFromInt(-10)})
	require.NoError(t, err)
	assert.True(t, res.Amount.IsZero())
}

func TestNewPercentageCalculatorRejectsBadRate(t *testing.T) {
	_, err := NewPercentageCalculator(decimal.RequireFromString("1.5"))
	assert.Error(t, err)

	_, err = NewPercentageCalculator(decimal.RequireFromString("-0.01"))
	assert.Error(t, err)
}
