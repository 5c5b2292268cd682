package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalPricing holds the per-unit rental rates of a rentable product.
type RentalPricing struct {
	Hourly decimal.Decimal `json:"hourly" bson:"hourly"`
	Daily  decimal.Decimal `json:"daily" bson:"daily"`
}

// Product is a catalog entry. Orders and carts snapshot its name and
// price at add time rather than referencing it live.
type Product struct {
	ID          string          `json:"id" bson:"_id,omitempty"`
	Name        string          `json:"name" bson:"name"`
	Price       decimal.Decimal `json:"price" bson:"price"`
	Brand       string          `json:"brand,omitempty" bson:"brand,omitempty"`
	Category    string          `json:"category,omitempty" bson:"category,omitempty"`
	Image       string          `json:"image,omitempty" bson:"image,omitempty"`
	IsRentable  bool            `json:"isRentable" bson:"isRentable"`
	RentalPrice *RentalPricing  `json:"rentalPrice,omitempty" bson:"rentalPrice,omitempty"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// RentalRate returns the product's rate for the given unit.
func (p Product) RentalRate(unit RentalUnit) (decimal.Decimal, error) {
	const op = "product.rentalRate"

	if !p.IsRentable || p.RentalPrice == nil {
		return decimal.Zero, Errorf(EINVALID, op, "product %s is not rentable", p.ID)
	}
	switch unit {
	case RentalHourly:
		return p.RentalPrice.Hourly, nil
	case RentalDaily:
		return p.RentalPrice.Daily, nil
	}
	return decimal.Zero, Errorf(EINVALID, op, "unknown rental unit: %s", unit)
}
