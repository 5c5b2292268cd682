package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/jobs"
)

// Memory is an in-memory Store for tests and local development. It is
// explicitly selected via configuration, never a silent fallback.
type Memory struct {
	mu            sync.Mutex
	orders        map[string]*domain.Order
	carts         map[string]*domain.Cart
	wishlists     map[string]*domain.Wishlist
	products      map[string]*domain.Product
	notifications map[string]*jobs.Notification
	queue         []string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		orders:        make(map[string]*domain.Order),
		carts:         make(map[string]*domain.Cart),
		wishlists:     make(map[string]*domain.Wishlist),
		products:      make(map[string]*domain.Product),
		notifications: make(map[string]*jobs.Notification),
	}
}

func copyOrder(o *domain.Order) *domain.Order {
	out := *o
	out.Items = append([]domain.LineItem(nil), o.Items...)
	for i, item := range out.Items {
		if item.Rental != nil {
			r := *item.Rental
			out.Items[i].Rental = &r
		}
	}
	if o.OriginalValues != nil {
		ov := *o.OriginalValues
		out.OriginalValues = &ov
	}
	return &out
}

func copyCart(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = append([]domain.CartItem(nil), c.Items...)
	for i, item := range out.Items {
		if item.Rental != nil {
			r := *item.Rental
			out.Items[i].Rental = &r
		}
	}
	return &out
}

func copyWishlist(w *domain.Wishlist) *domain.Wishlist {
	out := *w
	out.Items = append([]domain.WishlistItem(nil), w.Items...)
	return &out
}

func copyProduct(p *domain.Product) *domain.Product {
	out := *p
	if p.RentalPrice != nil {
		rp := *p.RentalPrice
		out.RentalPrice = &rp
	}
	return &out
}

func (m *Memory) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Revision == 0 {
		order.Revision = 1
	}
	m.orders[order.ID] = copyOrder(order)
	return nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyOrder(o), nil
}

func (m *Memory) ListOrders(_ context.Context, filter OrderFilter) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Order
	for _, o := range m.orders {
		if filter.UserRef != "" && o.UserRef != filter.UserRef {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderedAt.After(out[j].OrderedAt)
	})
	return out, nil
}

func (m *Memory) UpdateOrder(_ context.Context, id string, expectedRevision int64, patch OrderPatch) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Revision != expectedRevision {
		return nil, ErrRevisionConflict
	}

	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.PaymentEnabled != nil {
		o.PaymentEnabled = *patch.PaymentEnabled
	}
	if patch.ShippingFee != nil {
		o.ShippingFee = *patch.ShippingFee
	}
	if patch.Tax != nil {
		o.Tax = *patch.Tax
	}
	if patch.Subtotal != nil {
		o.Subtotal = *patch.Subtotal
	}
	if patch.Total != nil {
		o.Total = *patch.Total
	}
	if patch.Offer != nil {
		o.Offer = *patch.Offer
	}
	if patch.OriginalValues != nil {
		ov := *patch.OriginalValues
		o.OriginalValues = &ov
	}
	o.Revision++
	o.UpdatedAt = time.Now().UTC()

	return copyOrder(o), nil
}

func (m *Memory) GetCart(_ context.Context, userRef string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[userRef]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCart(c), nil
}

func (m *Memory) PutCart(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart.UpdatedAt = time.Now().UTC()
	m.carts[cart.UserRef] = copyCart(cart)
	return nil
}

func (m *Memory) DeleteCart(_ context.Context, userRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, userRef)
	return nil
}

func (m *Memory) GetWishlist(_ context.Context, userRef string) (*domain.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wishlists[userRef]
	if !ok {
		return nil, ErrNotFound
	}
	return copyWishlist(w), nil
}

func (m *Memory) PutWishlist(_ context.Context, wishlist *domain.Wishlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wishlist.UpdatedAt = time.Now().UTC()
	m.wishlists[wishlist.UserRef] = copyWishlist(wishlist)
	return nil
}

func (m *Memory) DeleteWishlist(_ context.Context, userRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.wishlists, userRef)
	return nil
}

func (m *Memory) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyProduct(p), nil
}

func (m *Memory) PutProduct(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	m.products[product.ID] = copyProduct(product)
	return nil
}

func (m *Memory) EnqueueNotification(_ context.Context, n *jobs.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Status = jobs.StatusPending
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	cp := *n
	cp.Payload = append([]byte(nil), n.Payload...)
	m.notifications[n.ID] = &cp
	m.queue = append(m.queue, n.ID)
	return nil
}

func (m *Memory) ClaimNextNotification(_ context.Context) (*jobs.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.queue) > 0 {
		id := m.queue[0]
		m.queue = m.queue[1:]
		n, ok := m.notifications[id]
		if !ok || n.Status != jobs.StatusPending {
			continue
		}
		n.Status = jobs.StatusClaimed
		cp := *n
		cp.Payload = append([]byte(nil), n.Payload...)
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) CompleteNotification(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.Status = jobs.StatusDelivered
	n.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) FailNotification(_ context.Context, id string, attempts int, lastError string, terminal bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.Attempts = attempts
	n.LastError = lastError
	n.UpdatedAt = time.Now().UTC()
	if terminal {
		n.Status = jobs.StatusFailed
	} else {
		n.Status = jobs.StatusPending
		m.queue = append(m.queue, id)
	}
	return nil
}

func (m *Memory) Ping(_ context.Context) error {
	return nil
}
