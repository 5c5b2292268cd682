package shipping

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// FlatRateProvider quotes the same fixed options for every shipment.
type FlatRateProvider struct {
	rates []Rate
}

// NewFlatRateProvider builds a provider from a fixed rate table.
func NewFlatRateProvider(rates []Rate) (*FlatRateProvider, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("at least one flat rate is required")
	}
	for _, r := range rates {
		if r.Cost.IsNegative() {
			return nil, fmt.Errorf("flat rate %s has negative cost", r.ServiceCode)
		}
	}
	return &FlatRateProvider{rates: rates}, nil
}

// NewDefaultFlatRateProvider returns the standard single-option table.
func NewDefaultFlatRateProvider() *FlatRateProvider {
	return &FlatRateProvider{
		rates: []Rate{
			{
				ServiceName: "Standard Shipping",
				ServiceCode: "standard",
				Cost:        decimal.RequireFromString("5.99"),
				DaysMin:     3,
				DaysMax:     7,
			},
		},
	}
}

// GetRates returns the configured rates regardless of destination.
func (p *FlatRateProvider) GetRates(_ context.Context, _ RateParams) ([]Rate, error) {
	out := make([]Rate, len(p.rates))
	copy(out, p.rates)
	return out, nil
}

// Find returns the rate with the given service code.
func (p *FlatRateProvider) Find(code string) (Rate, bool) {
	for _, r := range p.rates {
		if r.ServiceCode == code {
			return r, true
		}
	}
	return Rate{}, false
}
