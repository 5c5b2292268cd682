package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/revxrent/storefront/internal/billing"
	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/jobs"
	"github.com/revxrent/storefront/internal/notify"
	"github.com/revxrent/storefront/internal/pricing"
	"github.com/revxrent/storefront/internal/store"
)

// EditRequest is an admin edit of an order. Nil fields are left
// untouched. Revision is the revision the caller loaded; zero means
// "apply against whatever is current".
type EditRequest struct {
	Status         *domain.OrderStatus
	ShippingFee    *decimal.Decimal
	Tax            *decimal.Decimal
	Offer          *domain.Offer
	PaymentEnabled *bool
	Revision       int64
}

// OrderService exposes order reads, admin edits, and payment flows.
type OrderService interface {
	Get(ctx context.Context, principal domain.Principal, id string) (*domain.Order, error)
	List(ctx context.Context, principal domain.Principal) ([]*domain.Order, error)
	ApplyEdit(ctx context.Context, id string, edit EditRequest) (*domain.Order, domain.OrderChanges, error)
	MarkPaid(ctx context.Context, orderID string) (*domain.Order, error)
	CreatePaymentSession(ctx context.Context, principal domain.Principal, orderID string) (*billing.CheckoutSession, error)
}

// OrderServiceConfig tunes the order service.
type OrderServiceConfig struct {
	// StrictTransitions enforces the status graph on edits. When off,
	// any known status is accepted.
	StrictTransitions bool
	PaymentSuccessURL string
	PaymentCancelURL  string
	Currency          string
}

type orderService struct {
	store    store.Store
	notifier notify.Notifier
	billing  billing.Provider
	logger   *slog.Logger
	cfg      OrderServiceConfig
}

// NewOrderService builds the order service.
func NewOrderService(s store.Store, notifier notify.Notifier, b billing.Provider, logger *slog.Logger, cfg OrderServiceConfig) (OrderService, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &orderService{store: s, notifier: notifier, billing: b, logger: logger, cfg: cfg}, nil
}

// Get returns the order if the caller owns it or is an admin.
func (s *orderService) Get(ctx context.Context, principal domain.Principal, id string) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	if !principal.IsAdmin && order.UserRef != principal.UserID {
		// Hide existence from non-owners.
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List returns all orders for admins, the caller's own otherwise,
// newest first.
func (s *orderService) List(ctx context.Context, principal domain.Principal) ([]*domain.Order, error) {
	filter := store.OrderFilter{}
	if !principal.IsAdmin {
		filter.UserRef = principal.UserID
	}
	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ApplyEdit applies an admin edit to an order: it detects which fields
// actually change, captures the pre-edit financials exactly once,
// recomputes the total, and persists only the changed fields. An edit
// that changes nothing writes nothing and notifies nobody.
func (s *orderService) ApplyEdit(ctx context.Context, id string, edit EditRequest) (*domain.Order, domain.OrderChanges, error) {
	const op = "order.applyEdit"

	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.OrderChanges{}, ErrOrderNotFound
	}
	if err != nil {
		return nil, domain.OrderChanges{}, fmt.Errorf("failed to load order %s: %w", id, err)
	}

	if edit.Revision != 0 && edit.Revision != order.Revision {
		return nil, domain.OrderChanges{}, ErrEditConflict
	}

	if err := s.validateEdit(order, edit); err != nil {
		return nil, domain.OrderChanges{}, err
	}

	var changes domain.OrderChanges
	if edit.Status != nil && *edit.Status != order.Status {
		changes.Status = edit.Status
	}
	if edit.PaymentEnabled != nil && *edit.PaymentEnabled != order.PaymentEnabled {
		changes.PaymentEnabled = edit.PaymentEnabled
	}

	newFee := order.ShippingFee
	if edit.ShippingFee != nil && !edit.ShippingFee.Equal(order.ShippingFee) {
		changes.ShippingFee = edit.ShippingFee
		newFee = *edit.ShippingFee
	}
	newTax := order.Tax
	if edit.Tax != nil && !edit.Tax.Equal(order.Tax) {
		changes.Tax = edit.Tax
		newTax = *edit.Tax
	}
	newOffer := order.Offer
	if edit.Offer != nil && !edit.Offer.Equal(order.Offer) {
		changes.Offer = edit.Offer
		newOffer = *edit.Offer
	}

	financialChange := changes.ShippingFee != nil || changes.Tax != nil || changes.Offer != nil

	patch := store.OrderPatch{
		Status:         changes.Status,
		PaymentEnabled: changes.PaymentEnabled,
		ShippingFee:    changes.ShippingFee,
		Tax:            changes.Tax,
		Offer:          changes.Offer,
	}

	if financialChange {
		// The pre-edit snapshot is captured before the first financial
		// edit and never touched again.
		if order.OriginalValues == nil {
			patch.OriginalValues = snapshotOriginals(order)
		}

		totals := pricing.ComputeTotalsFromSubtotal(order.Subtotal, newTax, newFee, newOffer)
		if !totals.Total.Equal(order.Total) {
			total := totals.Total
			changes.Total = &total
			patch.Total = &total
		}
	}

	if changes.Empty() {
		return order, changes, nil
	}

	updated, err := s.store.UpdateOrder(ctx, id, order.Revision, patch)
	if errors.Is(err, store.ErrRevisionConflict) {
		return nil, domain.OrderChanges{}, ErrEditConflict
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.OrderChanges{}, ErrOrderNotFound
	}
	if err != nil {
		return nil, domain.OrderChanges{}, fmt.Errorf("%s: failed to persist edit: %w", op, err)
	}

	s.logger.Info("order edited",
		slog.String("order_id", updated.ID),
		slog.Int64("revision", updated.Revision))
	s.notifier.OrderUpdate(ctx, jobs.BuildOrderUpdate(updated, changes))

	return updated, changes, nil
}

func (s *orderService) validateEdit(order *domain.Order, edit EditRequest) error {
	const op = "order.applyEdit"

	if edit.Status != nil {
		if !domain.ValidOrderStatus(*edit.Status) {
			return domain.Errorf(domain.EINVALID, op, "unknown order status: %s", *edit.Status)
		}
		if s.cfg.StrictTransitions && !domain.CanTransition(order.Status, *edit.Status) {
			return domain.Errorf(domain.EINVALID, op, "cannot move order from %s to %s", order.Status, *edit.Status)
		}
	}
	if edit.ShippingFee != nil && edit.ShippingFee.IsNegative() {
		return domain.Invalid(op, "shipping fee must not be negative")
	}
	if edit.Tax != nil && edit.Tax.IsNegative() {
		return domain.Invalid(op, "tax must not be negative")
	}
	if edit.Offer != nil {
		if err := edit.Offer.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// snapshotOriginals captures the order's current financials. The tax
// rate is derived from the stored amounts so a later tax edit can be
// compared against what the order was originally charged.
func snapshotOriginals(order *domain.Order) *domain.OriginalValues {
	ov := &domain.OriginalValues{
		Subtotal:    order.Subtotal,
		Tax:         order.Tax,
		ShippingFee: order.ShippingFee,
		Total:       order.Total,
	}
	if order.Subtotal.IsPositive() {
		ov.TaxRate = order.Tax.Div(order.Subtotal)
	}
	return ov
}

// MarkPaid transitions the order to paid in response to a verified
// payment callback. Already-paid orders are a no-op, making replayed
// callbacks harmless. A revision race is retried once against the
// fresh revision.
func (s *orderService) MarkPaid(ctx context.Context, orderID string) (*domain.Order, error) {
	for attempt := 0; ; attempt++ {
		order, err := s.store.GetOrder(ctx, orderID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
		}

		if order.Status == domain.StatusPaid {
			return order, nil
		}
		if domain.TerminalStatus(order.Status) {
			return nil, domain.Errorf(domain.ECONFLICT, "order.markPaid", "order %s is %s and cannot be marked paid", orderID, order.Status)
		}

		status := domain.StatusPaid
		updated, err := s.store.UpdateOrder(ctx, orderID, order.Revision, store.OrderPatch{Status: &status})
		if errors.Is(err, store.ErrRevisionConflict) && attempt == 0 {
			s.logger.Warn("payment callback raced another write, retrying",
				slog.String("order_id", orderID))
			continue
		}
		if errors.Is(err, store.ErrRevisionConflict) {
			return nil, ErrEditConflict
		}
		if err != nil {
			return nil, fmt.Errorf("failed to mark order %s paid: %w", orderID, err)
		}

		s.notifier.OrderUpdate(ctx, jobs.BuildOrderUpdate(updated, domain.OrderChanges{Status: &status}))
		return updated, nil
	}
}

// CreatePaymentSession creates a hosted checkout session for an order
// the caller may pay. Payment must have been enabled by an admin and
// the order must still be awaiting payment.
func (s *orderService) CreatePaymentSession(ctx context.Context, principal domain.Principal, orderID string) (*billing.CheckoutSession, error) {
	if s.billing == nil {
		return nil, ErrPaymentUnavailable
	}

	order, err := s.Get(ctx, principal, orderID)
	if err != nil {
		return nil, err
	}
	if !order.PaymentEnabled {
		return nil, ErrPaymentUnavailable
	}
	if order.Status != domain.StatusProcessing {
		return nil, domain.Errorf(domain.EPAYMENT, "order.createPaymentSession", "order %s is %s and no longer payable", orderID, order.Status)
	}

	session, err := s.billing.CreateCheckoutSession(ctx, billing.SessionParams{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Currency:    s.cfg.Currency,
		Email:       order.Customer.Email,
		SuccessURL:  s.cfg.PaymentSuccessURL,
		CancelURL:   s.cfg.PaymentCancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment session for order %s: %w", orderID, err)
	}
	return session, nil
}
