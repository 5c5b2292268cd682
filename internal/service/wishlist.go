package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/store"
)

// WishlistService manages the caller's per-user wishlist.
type WishlistService interface {
	Get(ctx context.Context, userRef string) (*domain.Wishlist, error)
	AddItem(ctx context.Context, userRef, productRef string) (*domain.Wishlist, error)
	Replace(ctx context.Context, userRef string, productRefs []string) (*domain.Wishlist, error)
	RemoveItem(ctx context.Context, userRef, productRef string) (*domain.Wishlist, error)
	Clear(ctx context.Context, userRef string) error
}

type wishlistService struct {
	store store.Store
}

// NewWishlistService builds the wishlist service.
func NewWishlistService(s store.Store) (WishlistService, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &wishlistService{store: s}, nil
}

// Get returns the wishlist, or an empty one if the user has none yet.
func (s *wishlistService) Get(ctx context.Context, userRef string) (*domain.Wishlist, error) {
	w, err := s.store.GetWishlist(ctx, userRef)
	if errors.Is(err, store.ErrNotFound) {
		empty := domain.NewWishlist(userRef)
		return &empty, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist for %s: %w", userRef, err)
	}
	return w, nil
}

// AddItem saves the product. Saving an already-saved product succeeds
// without duplicating it.
func (s *wishlistService) AddItem(ctx context.Context, userRef, productRef string) (*domain.Wishlist, error) {
	const op = "wishlist.addItem"

	product, err := s.store.GetProduct(ctx, productRef)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.Errorf(domain.ENOTFOUND, op, "product %s not found", productRef)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productRef, err)
	}

	w, err := s.Get(ctx, userRef)
	if err != nil {
		return nil, err
	}
	if !w.Add(domain.WishlistItem{ProductRef: product.ID, Name: product.Name, Image: product.Image}) {
		return w, nil
	}

	if err := s.store.PutWishlist(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to save wishlist for %s: %w", userRef, err)
	}
	return w, nil
}

// Replace swaps the whole wishlist for the given products, deduplicated.
func (s *wishlistService) Replace(ctx context.Context, userRef string, productRefs []string) (*domain.Wishlist, error) {
	const op = "wishlist.replace"

	w := domain.NewWishlist(userRef)
	for _, ref := range productRefs {
		product, err := s.store.GetProduct(ctx, ref)
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.Errorf(domain.ENOTFOUND, op, "product %s not found", ref)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", ref, err)
		}
		w.Add(domain.WishlistItem{ProductRef: product.ID, Name: product.Name, Image: product.Image})
	}

	if err := s.store.PutWishlist(ctx, &w); err != nil {
		return nil, fmt.Errorf("failed to save wishlist for %s: %w", userRef, err)
	}
	return &w, nil
}

// RemoveItem drops the product. Removing what is not there succeeds.
func (s *wishlistService) RemoveItem(ctx context.Context, userRef, productRef string) (*domain.Wishlist, error) {
	w, err := s.Get(ctx, userRef)
	if err != nil {
		return nil, err
	}
	if !w.Remove(productRef) {
		return w, nil
	}
	if err := s.store.PutWishlist(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to save wishlist for %s: %w", userRef, err)
	}
	return w, nil
}

// Clear deletes the wishlist outright.
func (s *wishlistService) Clear(ctx context.Context, userRef string) error {
	if err := s.store.DeleteWishlist(ctx, userRef); err != nil {
		return fmt.Errorf("failed to clear wishlist for %s: %w", userRef, err)
	}
	return nil
}
