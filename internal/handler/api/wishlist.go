package api

import (
	"net/http"

	"github.com/revxrent/storefront/internal/handler"
	"github.com/revxrent/storefront/internal/service"
)

// WishlistHandler serves the caller's wishlist.
type WishlistHandler struct {
	wishlists service.WishlistService
}

// NewWishlistHandler builds the handler.
func NewWishlistHandler(wishlists service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

// Get handles GET /api/wishlist.
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.wishlists.Get(r.Context(), principal(r).UserID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, wishlist)
}

type addWishlistItemRequest struct {
	ProductRef string `json:"productRef" validate:"required"`
}

// AddItem handles POST /api/wishlist/items.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addWishlistItemRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	wishlist, err := h.wishlists.AddItem(r.Context(), principal(r).UserID, req.ProductRef)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, wishlist)
}

type replaceWishlistRequest struct {
	ProductRefs []string `json:"productRefs"`
}

// Replace handles PUT /api/wishlist, swapping the list wholesale.
func (h *WishlistHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req replaceWishlistRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	wishlist, err := h.wishlists.Replace(r.Context(), principal(r).UserID, req.ProductRefs)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, wishlist)
}

// RemoveItem handles DELETE /api/wishlist/items/{productRef}.
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.wishlists.RemoveItem(r.Context(), principal(r).UserID, r.PathValue("productRef"))
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, wishlist)
}

// Clear handles DELETE /api/wishlist.
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.wishlists.Clear(r.Context(), principal(r).UserID); err != nil {
		handler.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
