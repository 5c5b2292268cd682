// Package store defines the persistence interface for the storefront
// aggregates and provides an in-memory and a MongoDB implementation.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/jobs"
)

var (
	// ErrNotFound means no document matched the lookup.
	ErrNotFound = errors.New("store: not found")
	// ErrRevisionConflict means the document changed since it was
	// loaded; the caller must reload and retry.
	ErrRevisionConflict = errors.New("store: revision conflict")
)

// OrderPatch is a partial order update. Nil fields are untouched. The
// store bumps the revision on every applied patch.
type OrderPatch struct {
	Status         *domain.OrderStatus
	PaymentEnabled *bool
	ShippingFee    *decimal.Decimal
	Tax            *decimal.Decimal
	Subtotal       *decimal.Decimal
	Total          *decimal.Decimal
	Offer          *domain.Offer
	OriginalValues *domain.OriginalValues
}

// Empty reports whether the patch would change nothing.
func (p OrderPatch) Empty() bool {
	return p.Status == nil && p.PaymentEnabled == nil && p.ShippingFee == nil &&
		p.Tax == nil && p.Subtotal == nil && p.Total == nil &&
		p.Offer == nil && p.OriginalValues == nil
}

// OrderFilter narrows an order listing. The zero value matches all.
type OrderFilter struct {
	UserRef string
}

// Store is the persistence boundary. Implementations must be safe for
// concurrent use.
type Store interface {
	// Orders. UpdateOrder applies the patch only when the stored
	// revision equals expectedRevision, returning ErrRevisionConflict
	// otherwise; on success the revision is incremented. ListOrders
	// returns newest first by order time.
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, id string, expectedRevision int64, patch OrderPatch) (*domain.Order, error)

	// Carts and wishlists are per-user singletons keyed by user.
	GetCart(ctx context.Context, userRef string) (*domain.Cart, error)
	PutCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userRef string) error
	GetWishlist(ctx context.Context, userRef string) (*domain.Wishlist, error)
	PutWishlist(ctx context.Context, wishlist *domain.Wishlist) error
	DeleteWishlist(ctx context.Context, userRef string) error

	// Catalog.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	PutProduct(ctx context.Context, product *domain.Product) error

	// Notification queue. ClaimNextNotification returns ErrNotFound
	// when nothing is pending.
	EnqueueNotification(ctx context.Context, n *jobs.Notification) error
	ClaimNextNotification(ctx context.Context) (*jobs.Notification, error)
	CompleteNotification(ctx context.Context, id string) error
	FailNotification(ctx context.Context, id string, attempts int, lastError string, terminal bool) error

	Ping(ctx context.Context) error
}
