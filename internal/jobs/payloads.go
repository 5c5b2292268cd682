package jobs

import (
	"fmt"

	"github.com/revxrent/storefront/internal/domain"
)

// OrderSummary is the financial snapshot rendered in every order
// email. Money fields are pre-formatted to two decimal places so the
// templates never do arithmetic.
type OrderSummary struct {
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	ShippingFee string `json:"shippingFee"`
	Total       string `json:"total"`
	ItemCount   int    `json:"itemCount"`
}

// SummaryLine is one item row in a confirmation email.
type SummaryLine struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
	Rental    string `json:"rental,omitempty"`
}

// OrderConfirmationPayload is sent when an order is placed.
type OrderConfirmationPayload struct {
	To            string        `json:"to"`
	CustomerName  string        `json:"customerName"`
	Order         OrderSummary  `json:"order"`
	Lines         []SummaryLine `json:"lines"`
	HasRentals    bool          `json:"hasRentals"`
	HasMixedItems bool          `json:"hasMixedItems"`
}

// FieldChange is one human-readable line describing an edit.
type FieldChange struct {
	Field   string `json:"field"`
	Summary string `json:"summary"`
}

// OrderUpdatePayload is sent when an admin edit changed an order.
type OrderUpdatePayload struct {
	To           string        `json:"to"`
	CustomerName string        `json:"customerName"`
	Order        OrderSummary  `json:"order"`
	Changes      []FieldChange `json:"changes"`
}

func summarize(o *domain.Order) OrderSummary {
	return OrderSummary{
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		Subtotal:    o.Subtotal.StringFixed(2),
		Tax:         o.Tax.StringFixed(2),
		ShippingFee: o.ShippingFee.StringFixed(2),
		Total:       o.Total.StringFixed(2),
		ItemCount:   len(o.Items),
	}
}

// BuildOrderConfirmation assembles the confirmation payload from a
// freshly created order.
func BuildOrderConfirmation(o *domain.Order) OrderConfirmationPayload {
	lines := make([]SummaryLine, 0, len(o.Items))
	for _, item := range o.Items {
		line := SummaryLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().StringFixed(2),
		}
		if item.Mode == domain.ModeRental && item.Rental != nil {
			line.Rental = fmt.Sprintf("%d %s @ %s", item.Rental.Duration, rentalUnitLabel(item.Rental), item.Rental.Rate.StringFixed(2))
		}
		lines = append(lines, line)
	}

	return OrderConfirmationPayload{
		To:            o.Customer.Email,
		CustomerName:  o.Customer.Name,
		Order:         summarize(o),
		Lines:         lines,
		HasRentals:    o.HasRentalItems,
		HasMixedItems: o.HasMixedItems,
	}
}

func rentalUnitLabel(r *domain.RentalDetails) string {
	unit := "day"
	if r.Unit == domain.RentalHourly {
		unit = "hour"
	}
	if r.Duration != 1 {
		unit += "s"
	}
	return unit
}

// BuildOrderUpdate assembles the update payload from the edited order
// and the change set the edit produced. Only changed fields get a
// summary line.
func BuildOrderUpdate(o *domain.Order, changes domain.OrderChanges) OrderUpdatePayload {
	var fields []FieldChange
	if changes.Status != nil {
		fields = append(fields, FieldChange{
			Field:   "status",
			Summary: fmt.Sprintf("Order status is now %s", *changes.Status),
		})
	}
	if changes.ShippingFee != nil {
		fields = append(fields, FieldChange{
			Field:   "shippingFee",
			Summary: fmt.Sprintf("Shipping fee updated to %s", changes.ShippingFee.StringFixed(2)),
		})
	}
	if changes.Tax != nil {
		fields = append(fields, FieldChange{
			Field:   "tax",
			Summary: fmt.Sprintf("Tax updated to %s", changes.Tax.StringFixed(2)),
		})
	}
	if changes.Offer != nil {
		fields = append(fields, FieldChange{
			Field:   "offer",
			Summary: offerSummary(*changes.Offer),
		})
	}
	if changes.PaymentEnabled != nil {
		summary := "Online payment has been disabled for this order"
		if *changes.PaymentEnabled {
			summary = "Online payment is now available for this order"
		}
		fields = append(fields, FieldChange{Field: "paymentEnabled", Summary: summary})
	}
	if changes.Total != nil {
		fields = append(fields, FieldChange{
			Field:   "total",
			Summary: fmt.Sprintf("Order total is now %s", changes.Total.StringFixed(2)),
		})
	}

	return OrderUpdatePayload{
		To:           o.Customer.Email,
		CustomerName: o.Customer.Name,
		Order:        summarize(o),
		Changes:      fields,
	}
}

func offerSummary(offer domain.Offer) string {
	switch offer.Type {
	case domain.OfferFixed:
		if offer.Description != "" {
			return fmt.Sprintf("Discount applied: %s (%s off)", offer.Description, offer.Value.StringFixed(2))
		}
		return fmt.Sprintf("Discount applied: %s off", offer.Value.StringFixed(2))
	case domain.OfferPercentage:
		if offer.Description != "" {
			return fmt.Sprintf("Discount applied: %s (%s%% off)", offer.Description, offer.Value.String())
		}
		return fmt.Sprintf("Discount applied: %s%% off", offer.Value.String())
	default:
		return "Discount removed"
	}
}
