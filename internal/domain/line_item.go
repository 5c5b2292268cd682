package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemMode distinguishes a flat purchase from a timed rental.
type ItemMode string

const (
	ModePurchase ItemMode = "purchase"
	ModeRental   ItemMode = "rental"
)

// RentalUnit is the billing granularity for a rental line item.
type RentalUnit string

const (
	RentalHourly RentalUnit = "hourly"
	RentalDaily  RentalUnit = "daily"
)

// RentalDetails carries the rental-specific billing terms of a line item.
// Rate is the snapshotted rate for the selected unit, captured when the
// item entered the order; it is never re-read from the live catalog.
type RentalDetails struct {
	Unit        RentalUnit      `json:"unit" bson:"unit"`
	Rate        decimal.Decimal `json:"rate" bson:"rate"`
	Duration    int             `json:"duration" bson:"duration"`
	ReturnDueAt time.Time       `json:"returnDueAt" bson:"returnDueAt"`
}

// LineItem is one product line within a cart or order.
// Name and UnitPrice are snapshots taken when the item was added, so
// historical totals stay stable when catalog prices move.
type LineItem struct {
	ProductRef string          `json:"productRef" bson:"productRef"`
	Name       string          `json:"name" bson:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice" bson:"unitPrice"`
	Quantity   int             `json:"quantity" bson:"quantity"`
	Mode       ItemMode        `json:"mode" bson:"mode"`
	Rental     *RentalDetails  `json:"rentalDetails,omitempty" bson:"rentalDetails,omitempty"`
	Image      string          `json:"image,omitempty" bson:"image,omitempty"`
}

// LineTotal computes this line's contribution to the order subtotal.
// Purchases bill unitPrice*quantity; rentals bill rate*duration*quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	qty := decimal.NewFromInt(int64(li.Quantity))
	if li.Mode == ModeRental && li.Rental != nil {
		duration := decimal.NewFromInt(int64(li.Rental.Duration))
		return li.Rental.Rate.Mul(duration).Mul(qty)
	}
	return li.UnitPrice.Mul(qty)
}

// Validate checks the line item invariants: positive quantity, and
// rental details present (with a positive rate and duration) exactly
// when the mode is rental.
func (li LineItem) Validate() error {
	const op = "lineItem.validate"

	if li.ProductRef == "" {
		return Invalid(op, "product reference is required")
	}
	if li.Quantity < 1 {
		return Invalid(op, "quantity must be at least 1")
	}
	if li.UnitPrice.IsNegative() {
		return Invalid(op, "unit price must not be negative")
	}

	switch li.Mode {
	case ModePurchase:
		if li.Rental != nil {
			return Invalid(op, "purchase items must not carry rental details")
		}
	case ModeRental:
		if li.Rental == nil {
			return Invalid(op, "rental items require rental details")
		}
		if li.Rental.Unit != RentalHourly && li.Rental.Unit != RentalDaily {
			return Errorf(EINVALID, op, "unknown rental unit: %s", li.Rental.Unit)
		}
		if li.Rental.Duration < 1 {
			return Invalid(op, "rental duration must be at least 1")
		}
		if !li.Rental.Rate.IsPositive() {
			return Invalid(op, "rental rate must be positive")
		}
	default:
		return Errorf(EINVALID, op, "unknown item mode: %s", li.Mode)
	}

	return nil
}

// SumLineTotals returns the subtotal of a set of line items.
func SumLineTotals(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}
