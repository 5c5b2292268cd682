package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/revxrent/storefront/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotalsNoOffer(t *testing.T) {
	totals := ComputeTotalsFromSubtotal(d("100"), d("8"), d("15"), domain.NoOffer())

	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Total.Equal(d("123")))
}

func TestComputeTotalsFixedOffer(t *testing.T) {
	offer := domain.Offer{Type: domain.OfferFixed, Value: d("30")}
	totals := ComputeTotalsFromSubtotal(d("100"), d("8"), d("15"), offer)

	assert.True(t, totals.Discount.Equal(d("30")))
	assert.True(t, totals.Total.Equal(d("93")))
}

func TestComputeTotalsFixedOfferCappedAtBase(t *testing.T) {
	offer := domain.Offer{Type: domain.OfferFixed, Value: d("500")}
	totals := ComputeTotalsFromSubtotal(d("100"), d("8"), d("15"), offer)

	assert.True(t, totals.Discount.Equal(d("123")))
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotalsPercentageBounds(t *testing.T) {
	zero := domain.Offer{Type: domain.OfferPercentage, Value: d("0")}
	totals := ComputeTotalsFromSubtotal(d("100"), d("8"), d("15"), zero)
	assert.True(t, totals.Total.Equal(d("123")))

	full := domain.Offer{Type: domain.OfferPercentage, Value: d("100")}
	totals = ComputeTotalsFromSubtotal(d("100"), d("8"), d("15"), full)
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotalsPercentageOffer(t *testing.T) {
	offer := domain.Offer{Type: domain.OfferPercentage, Value: d("10")}
	totals := ComputeTotalsFromSubtotal(d("100"), d("8"), d("15"), offer)

	assert.True(t, totals.Discount.Equal(d("12.3")))
	assert.True(t, totals.Total.Equal(d("110.7")))
}

func TestComputeTotalsDecimalExact(t *testing.T) {
	// 0.1 + 0.2 style inputs stay exact with decimals
	totals := ComputeTotalsFromSubtotal(d("0.1"), d("0.2"), d("0"), domain.NoOffer())
	assert.True(t, totals.Total.Equal(d("0.3")))
}

func TestComputeTotalsFromItems(t *testing.T) {
	items := []domain.LineItem{
		{ProductRef: "p1", UnitPrice: d("19.99"), Quantity: 2, Mode: domain.ModePurchase},
		{
			ProductRef: "p2",
			Quantity:   2,
			Mode:       domain.ModeRental,
			Rental:     &domain.RentalDetails{Unit: domain.RentalDaily, Rate: d("25"), Duration: 3},
		},
	}
	totals := ComputeTotals(items, d("0"), d("5.99"), domain.NoOffer())

	// 39.98 + 150 + 5.99
	assert.True(t, totals.Subtotal.Equal(d("189.98")))
	assert.True(t, totals.Total.Equal(d("195.97")))
}

func TestComputeTotalsIsPure(t *testing.T) {
	offer := domain.Offer{Type: domain.OfferPercentage, Value: d("25")}
	first := ComputeTotalsFromSubtotal(d("80"), d("6.4"), d("5.99"), offer)
	second := ComputeTotalsFromSubtotal(d("80"), d("6.4"), d("5.99"), offer)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Discount.Equal(second.Discount))
}
