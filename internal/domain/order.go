package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusPaid       OrderStatus = "paid"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusSent       OrderStatus = "sent"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusProcessing, StatusPaid, StatusConfirmed, StatusSent, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// transitions is the allowed forward edges of the status graph.
// Delivered and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusProcessing: {StatusPaid, StatusConfirmed, StatusCancelled},
	StatusPaid:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusSent, StatusCancelled},
	StatusSent:       {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to
// another. A no-op transition (from == to) is always allowed.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TerminalStatus reports whether no further transitions are possible.
func TerminalStatus(s OrderStatus) bool {
	return len(transitions[s]) == 0 && ValidOrderStatus(s)
}

// OfferType classifies an order-level discount.
type OfferType string

const (
	OfferNone       OfferType = "none"
	OfferFixed      OfferType = "fixed"
	OfferPercentage OfferType = "percentage"
)

// Offer is an order-level discount applied after tax and shipping.
type Offer struct {
	Type        OfferType       `json:"type" bson:"type"`
	Value       decimal.Decimal `json:"value" bson:"value"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
}

// NoOffer is the zero discount.
func NoOffer() Offer {
	return Offer{Type: OfferNone, Value: decimal.Zero}
}

// Equal reports whether two offers are the same discount. Descriptions
// participate so an edit that only rewords the offer is still a change.
func (o Offer) Equal(other Offer) bool {
	return o.Type == other.Type && o.Value.Equal(other.Value) && o.Description == other.Description
}

// Validate enforces the offer invariants. Percentage values outside
// [0, 100] are rejected rather than clamped.
func (o Offer) Validate() error {
	const op = "offer.validate"

	switch o.Type {
	case OfferNone:
		return nil
	case OfferFixed:
		if o.Value.IsNegative() {
			return Invalid(op, "fixed discount must not be negative")
		}
	case OfferPercentage:
		if o.Value.IsNegative() || o.Value.GreaterThan(decimal.NewFromInt(100)) {
			return Invalid(op, "percentage discount must be between 0 and 100")
		}
	default:
		return Errorf(EINVALID, op, "unknown offer type: %s", o.Type)
	}
	return nil
}

// Address is a postal address captured at checkout.
type Address struct {
	Street     string `json:"street" bson:"street"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
}

// CustomerInfo is the contact snapshot embedded in an order.
type CustomerInfo struct {
	Name    string  `json:"name" bson:"name"`
	Email   string  `json:"email" bson:"email"`
	Phone   string  `json:"phone,omitempty" bson:"phone,omitempty"`
	Address Address `json:"address" bson:"address"`
}

// OriginalValues preserves the pre-edit financials of an order. It is
// captured exactly once, before the first financial edit, and never
// overwritten afterwards.
type OriginalValues struct {
	Subtotal    decimal.Decimal `json:"subtotal" bson:"subtotal"`
	Tax         decimal.Decimal `json:"tax" bson:"tax"`
	ShippingFee decimal.Decimal `json:"shippingFee" bson:"shippingFee"`
	Total       decimal.Decimal `json:"total" bson:"total"`
	TaxRate     decimal.Decimal `json:"taxRate" bson:"taxRate"`
}

// Order is the root aggregate for a placed order.
type Order struct {
	ID             string          `json:"id" bson:"_id,omitempty"`
	OrderNumber    string          `json:"orderNumber" bson:"orderNumber"`
	UserRef        string          `json:"userRef" bson:"userRef"`
	Items          []LineItem      `json:"items" bson:"items"`
	Customer       CustomerInfo    `json:"customer" bson:"customer"`
	Status         OrderStatus     `json:"status" bson:"status"`
	PaymentEnabled bool            `json:"paymentEnabled" bson:"paymentEnabled"`
	Subtotal       decimal.Decimal `json:"subtotal" bson:"subtotal"`
	Tax            decimal.Decimal `json:"tax" bson:"tax"`
	ShippingFee    decimal.Decimal `json:"shippingFee" bson:"shippingFee"`
	Total          decimal.Decimal `json:"total" bson:"total"`
	Offer          Offer           `json:"offer" bson:"offer"`
	OriginalValues *OriginalValues `json:"originalValues,omitempty" bson:"originalValues,omitempty"`
	HasRentalItems bool            `json:"hasRentalItems" bson:"hasRentalItems"`
	HasMixedItems  bool            `json:"hasMixedItems" bson:"hasMixedItems"`
	Revision       int64           `json:"revision" bson:"revision"`
	OrderedAt      time.Time       `json:"orderedAt" bson:"orderedAt"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// RefreshItemFlags recomputes the rental/mixed markers from the items.
func (o *Order) RefreshItemFlags() {
	var rentals, purchases bool
	for _, item := range o.Items {
		if item.Mode == ModeRental {
			rentals = true
		} else {
			purchases = true
		}
	}
	o.HasRentalItems = rentals
	o.HasMixedItems = rentals && purchases
}

// NewOrderNumber generates a human-readable order number of the form
// ORD-<epoch millis>-<3 digit suffix>.
func NewOrderNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), suffix)
}

// OrderChanges records which fields an edit actually modified. Nil
// fields were untouched; set fields carry the new value. Consumers use
// it to decide whether to persist and what to notify about.
type OrderChanges struct {
	Status         *OrderStatus
	ShippingFee    *decimal.Decimal
	Tax            *decimal.Decimal
	Offer          *Offer
	PaymentEnabled *bool
	Total          *decimal.Decimal
}

// Empty reports whether the edit changed nothing.
func (c OrderChanges) Empty() bool {
	return c.Status == nil && c.ShippingFee == nil && c.Tax == nil &&
		c.Offer == nil && c.PaymentEnabled == nil && c.Total == nil
}
