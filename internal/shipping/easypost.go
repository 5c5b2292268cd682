package shipping

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/EasyPost/easypost-go/v5"
	"github.com/shopspring/decimal"
)

// Parcel weight assumptions when the catalog carries no physical
// dimensions. EasyPost wants ounces.
const (
	baseParcelOunces    = 16.0
	perItemParcelOunces = 8.0
)

// Origin is the warehouse address shipments leave from.
type Origin struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// EasyPostConfig configures the EasyPost provider.
type EasyPostConfig struct {
	APIKey string
	Origin Origin
	Logger *slog.Logger
}

// EasyPostProvider quotes live carrier rates through the EasyPost API.
type EasyPostProvider struct {
	client *easypost.Client
	origin Origin
	logger *slog.Logger
}

// NewEasyPostProvider builds the provider.
func NewEasyPostProvider(cfg EasyPostConfig) (*EasyPostProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("easypost api key is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EasyPostProvider{
		client: easypost.New(cfg.APIKey),
		origin: cfg.Origin,
		logger: logger,
	}, nil
}

// GetRates prices a single-parcel shipment to the given destination.
func (p *EasyPostProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if params.PostalCode == "" {
		return nil, fmt.Errorf("destination postal code is required")
	}

	shipment, err := p.client.CreateShipmentWithContext(ctx, &easypost.Shipment{
		FromAddress: &easypost.Address{
			Street1: p.origin.Street,
			City:    p.origin.City,
			State:   p.origin.State,
			Zip:     p.origin.PostalCode,
			Country: p.origin.Country,
		},
		ToAddress: &easypost.Address{
			Street1: params.Street,
			City:    params.City,
			State:   params.State,
			Zip:     params.PostalCode,
			Country: p.origin.Country,
		},
		Parcel: &easypost.Parcel{
			Weight: baseParcelOunces + perItemParcelOunces*float64(params.ItemCount),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}
	if len(shipment.Rates) == 0 {
		return nil, fmt.Errorf("no rates available for destination %s", params.PostalCode)
	}

	rates := make([]Rate, 0, len(shipment.Rates))
	for _, r := range shipment.Rates {
		cost, err := decimal.NewFromString(r.Rate)
		if err != nil {
			p.logger.Warn("skipping unparsable rate",
				slog.String("carrier", r.Carrier),
				slog.String("rate", r.Rate))
			continue
		}
		daysMin, daysMax := 1, 5
		if r.DeliveryDays > 0 {
			daysMin, daysMax = r.DeliveryDays, r.DeliveryDays
		}
		rates = append(rates, Rate{
			ServiceName: fmt.Sprintf("%s %s", r.Carrier, r.Service),
			ServiceCode: r.Service,
			Cost:        cost,
			DaysMin:     daysMin,
			DaysMax:     daysMax,
		})
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no usable rates for destination %s", params.PostalCode)
	}
	return rates, nil
}
