package shipping

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFlatRateProvider(t *testing.T) {
	p := NewDefaultFlatRateProvider()

	rates, err := p.GetRates(context.Background(), RateParams{Subtotal: decimal.NewFromInt(100)})
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "standard", rates[0].ServiceCode)
	assert.True(t, rates[0].Cost.Equal(decimal.RequireFromString("5.99")))
}

func TestNewFlatRateProviderValidation(t *testing.T) {
	_, err := NewFlatRateProvider(nil)
	assert.Error(t, err)

	_, err = NewFlatRateProvider([]Rate{{ServiceCode: "bad", Cost: decimal.NewFromInt(-1)}})
	assert.Error(t, err)
}

func TestFlatRateFind(t *testing.T) {
	p := NewDefaultFlatRateProvider()

	rate, ok := p.Find("standard")
	assert.True(t, ok)
	assert.Equal(t, "Standard Shipping", rate.ServiceName)

	_, ok = p.Find("overnight")
	assert.False(t, ok)
}
