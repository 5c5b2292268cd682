package api

import (
	"net/http"

	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/handler"
	"github.com/revxrent/storefront/internal/service"
)

// CartHandler serves the caller's cart.
type CartHandler struct {
	carts service.CartService
}

// NewCartHandler builds the handler.
func NewCartHandler(carts service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Get(r.Context(), principal(r).UserID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart)
}

type addCartItemRequest struct {
	ProductRef     string `json:"productRef" validate:"required"`
	Quantity       int    `json:"quantity" validate:"required,min=1"`
	Mode           string `json:"mode" validate:"required,oneof=purchase rental"`
	RentalUnit     string `json:"rentalUnit" validate:"omitempty,oneof=hourly daily"`
	RentalDuration int    `json:"rentalDuration" validate:"omitempty,min=1"`
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	cart, err := h.carts.AddItem(r.Context(), principal(r).UserID, service.AddItemParams{
		ProductRef:     req.ProductRef,
		Quantity:       req.Quantity,
		Mode:           domain.ItemMode(req.Mode),
		RentalUnit:     domain.RentalUnit(req.RentalUnit),
		RentalDuration: req.RentalDuration,
	})
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart)
}

type replaceCartRequest struct {
	Items []addCartItemRequest `json:"items" validate:"dive"`
}

// Replace handles PUT /api/cart, swapping the cart wholesale.
func (h *CartHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req replaceCartRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	items := make([]service.AddItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.AddItemParams{
			ProductRef:     item.ProductRef,
			Quantity:       item.Quantity,
			Mode:           domain.ItemMode(item.Mode),
			RentalUnit:     domain.RentalUnit(item.RentalUnit),
			RentalDuration: item.RentalDuration,
		})
	}

	cart, err := h.carts.Replace(r.Context(), principal(r).UserID, items)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart)
}

type setQuantityRequest struct {
	Mode     string `json:"mode" validate:"required,oneof=purchase rental"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// SetQuantity handles PUT /api/cart/items/{productRef}.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	cart, err := h.carts.SetQuantity(r.Context(), principal(r).UserID, r.PathValue("productRef"), domain.ItemMode(req.Mode), req.Quantity)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{productRef}. The mode
// rides in a query parameter, defaulting to purchase.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mode := domain.ItemMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = domain.ModePurchase
	}

	cart, err := h.carts.RemoveItem(r.Context(), principal(r).UserID, r.PathValue("productRef"), mode)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), principal(r).UserID); err != nil {
		handler.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
