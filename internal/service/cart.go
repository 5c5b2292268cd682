package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/store"
)

// AddItemParams describes an item being added to a cart. The price is
// snapshotted from the catalog, never taken from the client.
type AddItemParams struct {
	ProductRef     string
	Quantity       int
	Mode           domain.ItemMode
	RentalUnit     domain.RentalUnit
	RentalDuration int
}

// CartService manages the caller's per-user cart.
type CartService interface {
	Get(ctx context.Context, userRef string) (*domain.Cart, error)
	AddItem(ctx context.Context, userRef string, params AddItemParams) (*domain.Cart, error)
	Replace(ctx context.Context, userRef string, items []AddItemParams) (*domain.Cart, error)
	SetQuantity(ctx context.Context, userRef, productRef string, mode domain.ItemMode, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userRef, productRef string, mode domain.ItemMode) (*domain.Cart, error)
	Clear(ctx context.Context, userRef string) error
}

type cartService struct {
	store store.Store
}

// NewCartService builds the cart service.
func NewCartService(s store.Store) (CartService, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &cartService{store: s}, nil
}

// Get returns the cart, or an empty one if the user has none yet.
func (s *cartService) Get(ctx context.Context, userRef string) (*domain.Cart, error) {
	cart, err := s.store.GetCart(ctx, userRef)
	if errors.Is(err, store.ErrNotFound) {
		empty := domain.NewCart(userRef)
		return &empty, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for %s: %w", userRef, err)
	}
	return cart, nil
}

// buildCartItem snapshots a catalog product into a cart line.
func (s *cartService) buildCartItem(ctx context.Context, op string, params AddItemParams) (domain.CartItem, error) {
	if params.Quantity < 1 {
		return domain.CartItem{}, domain.Invalid(op, "quantity must be at least 1")
	}

	product, err := s.store.GetProduct(ctx, params.ProductRef)
	if errors.Is(err, store.ErrNotFound) {
		return domain.CartItem{}, domain.Errorf(domain.ENOTFOUND, op, "product %s not found", params.ProductRef)
	}
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("failed to load product %s: %w", params.ProductRef, err)
	}

	item := domain.CartItem{
		ProductRef: product.ID,
		Name:       product.Name,
		UnitPrice:  product.Price,
		Quantity:   params.Quantity,
		Mode:       params.Mode,
		Image:      product.Image,
		AddedAt:    time.Now().UTC(),
	}
	if params.Mode == domain.ModeRental {
		rate, err := product.RentalRate(params.RentalUnit)
		if err != nil {
			return domain.CartItem{}, err
		}
		if params.RentalDuration < 1 {
			return domain.CartItem{}, domain.Invalid(op, "rental duration must be at least 1")
		}
		item.Rental = &domain.RentalDetails{
			Unit:     params.RentalUnit,
			Rate:     rate,
			Duration: params.RentalDuration,
		}
	}
	return item, nil
}

// AddItem snapshots the product and upserts it into the cart.
func (s *cartService) AddItem(ctx context.Context, userRef string, params AddItemParams) (*domain.Cart, error) {
	const op = "cart.addItem"

	item, err := s.buildCartItem(ctx, op, params)
	if err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, userRef)
	if err != nil {
		return nil, err
	}
	cart.Upsert(item)

	if err := s.store.PutCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart for %s: %w", userRef, err)
	}
	return cart, nil
}

// Replace swaps the whole cart for the given items. Prices are
// re-snapshotted from the catalog, not carried over.
func (s *cartService) Replace(ctx context.Context, userRef string, items []AddItemParams) (*domain.Cart, error) {
	const op = "cart.replace"

	cart := domain.NewCart(userRef)
	for _, params := range items {
		item, err := s.buildCartItem(ctx, op, params)
		if err != nil {
			return nil, err
		}
		cart.Upsert(item)
	}

	if err := s.store.PutCart(ctx, &cart); err != nil {
		return nil, fmt.Errorf("failed to save cart for %s: %w", userRef, err)
	}
	return &cart, nil
}

// SetQuantity changes the quantity of an existing line.
func (s *cartService) SetQuantity(ctx context.Context, userRef, productRef string, mode domain.ItemMode, quantity int) (*domain.Cart, error) {
	cart, err := s.Get(ctx, userRef)
	if err != nil {
		return nil, err
	}
	if err := cart.SetQuantity(productRef, mode, quantity); err != nil {
		return nil, err
	}
	if err := s.store.PutCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart for %s: %w", userRef, err)
	}
	return cart, nil
}

// RemoveItem deletes a line. Removing what is not there succeeds.
func (s *cartService) RemoveItem(ctx context.Context, userRef, productRef string, mode domain.ItemMode) (*domain.Cart, error) {
	cart, err := s.Get(ctx, userRef)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(productRef, mode) {
		return cart, nil
	}
	if err := s.store.PutCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart for %s: %w", userRef, err)
	}
	return cart, nil
}

// Clear deletes the cart outright.
func (s *cartService) Clear(ctx context.Context, userRef string) error {
	if err := s.store.DeleteCart(ctx, userRef); err != nil {
		return fmt.Errorf("failed to clear cart for %s: %w", userRef, err)
	}
	return nil
}
