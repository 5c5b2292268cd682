// Package api holds the JSON API handlers.
package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/handler"
	"github.com/revxrent/storefront/internal/service"
)

// OrderHandler serves the order endpoints.
type OrderHandler struct {
	orders   service.OrderService
	checkout service.CheckoutService
}

// NewOrderHandler builds the handler.
func NewOrderHandler(orders service.OrderService, checkout service.CheckoutService) *OrderHandler {
	return &OrderHandler{orders: orders, checkout: checkout}
}

func principal(r *http.Request) domain.Principal {
	if p := domain.PrincipalFromContext(r.Context()); p != nil {
		return *p
	}
	return domain.Principal{}
}

// List handles GET /api/orders. Admins see every order, everyone else
// their own, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), principal(r))
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, order)
}

type itemSelectionRequest struct {
	ProductRef     string `json:"productRef" validate:"required"`
	Quantity       int    `json:"quantity" validate:"required,min=1"`
	Mode           string `json:"mode" validate:"required,oneof=purchase rental"`
	RentalUnit     string `json:"rentalUnit" validate:"omitempty,oneof=hourly daily"`
	RentalDuration int    `json:"rentalDuration" validate:"omitempty,min=1"`
}

type addressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type customerRequest struct {
	Name    string         `json:"name" validate:"required"`
	Email   string         `json:"email" validate:"required,email"`
	Phone   string         `json:"phone"`
	Address addressRequest `json:"address"`
}

type createOrderRequest struct {
	Items        []itemSelectionRequest `json:"items" validate:"required,min=1,dive"`
	Customer     customerRequest        `json:"customer" validate:"required"`
	ShippingCode string                 `json:"shippingCode"`
	FromCart     bool                   `json:"fromCart"`
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	params := service.CheckoutParams{
		Customer: domain.CustomerInfo{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
			Address: domain.Address{
				Street:     req.Customer.Address.Street,
				City:       req.Customer.Address.City,
				State:      req.Customer.Address.State,
				PostalCode: req.Customer.Address.PostalCode,
			},
		},
		ShippingCode: req.ShippingCode,
		FromCart:     req.FromCart,
	}
	for _, item := range req.Items {
		params.Items = append(params.Items, service.ItemSelection{
			ProductRef:     item.ProductRef,
			Quantity:       item.Quantity,
			Mode:           domain.ItemMode(item.Mode),
			RentalUnit:     domain.RentalUnit(item.RentalUnit),
			RentalDuration: item.RentalDuration,
		})
	}

	order, err := h.checkout.CreateOrder(r.Context(), principal(r), params)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, order)
}

type offerRequest struct {
	Type        string          `json:"type" validate:"required,oneof=none fixed percentage"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
}

type updateOrderRequest struct {
	Status         *string          `json:"status"`
	ShippingFee    *decimal.Decimal `json:"shippingFee"`
	Tax            *decimal.Decimal `json:"tax"`
	Offer          *offerRequest    `json:"offer"`
	PaymentEnabled *bool            `json:"paymentEnabled"`
	Revision       int64            `json:"revision"`
}

// Update handles PUT /api/orders/{id}. The route is admin-gated;
// absent fields are left untouched.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	edit := service.EditRequest{
		ShippingFee:    req.ShippingFee,
		Tax:            req.Tax,
		PaymentEnabled: req.PaymentEnabled,
		Revision:       req.Revision,
	}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		edit.Status = &status
	}
	if req.Offer != nil {
		offer := domain.Offer{
			Type:        domain.OfferType(req.Offer.Type),
			Value:       req.Offer.Value,
			Description: req.Offer.Description,
		}
		edit.Offer = &offer
	}

	order, changes, err := h.orders.ApplyEdit(r.Context(), r.PathValue("id"), edit)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{
		"order":    order,
		"modified": !changes.Empty(),
	})
}

// CreateCheckoutSession handles POST /api/orders/{id}/checkout-session.
func (h *OrderHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.orders.CreatePaymentSession(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, map[string]string{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}
