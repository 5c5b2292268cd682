package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line in a user's cart. Name and UnitPrice are
// snapshots taken when the item was added.
type CartItem struct {
	ProductRef string          `json:"productRef" bson:"productRef"`
	Name       string          `json:"name" bson:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice" bson:"unitPrice"`
	Quantity   int             `json:"quantity" bson:"quantity"`
	Mode       ItemMode        `json:"mode" bson:"mode"`
	Rental     *RentalDetails  `json:"rentalDetails,omitempty" bson:"rentalDetails,omitempty"`
	Image      string          `json:"image,omitempty" bson:"image,omitempty"`
	AddedAt    time.Time       `json:"addedAt" bson:"addedAt"`
}

// LineItem converts the cart line into an order line item.
func (ci CartItem) LineItem() LineItem {
	return LineItem{
		ProductRef: ci.ProductRef,
		Name:       ci.Name,
		UnitPrice:  ci.UnitPrice,
		Quantity:   ci.Quantity,
		Mode:       ci.Mode,
		Rental:     ci.Rental,
		Image:      ci.Image,
	}
}

// Cart is a per-user singleton. One cart per user; replacing it is the
// only way to bulk-edit its contents.
type Cart struct {
	UserRef   string     `json:"userRef" bson:"userRef"`
	Items     []CartItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// NewCart returns an empty cart for the user.
func NewCart(userRef string) Cart {
	now := time.Now().UTC()
	return Cart{UserRef: userRef, Items: []CartItem{}, CreatedAt: now, UpdatedAt: now}
}

// itemKey: a product appears at most once per mode. Adding the same
// product in the same mode increments quantity instead of duplicating.
func (ci CartItem) sameLine(other CartItem) bool {
	return ci.ProductRef == other.ProductRef && ci.Mode == other.Mode
}

// Upsert adds the item, or increments the quantity of the matching
// existing line (same product, same mode).
func (c *Cart) Upsert(item CartItem) {
	for i := range c.Items {
		if c.Items[i].sameLine(item) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	c.Items = append(c.Items, item)
}

// SetQuantity changes the quantity of an existing line.
func (c *Cart) SetQuantity(productRef string, mode ItemMode, quantity int) error {
	const op = "cart.setQuantity"

	if quantity < 1 {
		return Invalid(op, "quantity must be at least 1")
	}
	for i := range c.Items {
		if c.Items[i].ProductRef == productRef && c.Items[i].Mode == mode {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return Errorf(ENOTFOUND, op, "product %s not in cart", productRef)
}

// Remove deletes the matching line. Removing an absent item is a no-op.
func (c *Cart) Remove(productRef string, mode ItemMode) bool {
	for i := range c.Items {
		if c.Items[i].ProductRef == productRef && c.Items[i].Mode == mode {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// Subtotal sums the cart's line totals.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.LineItem().LineTotal())
	}
	return sum
}
