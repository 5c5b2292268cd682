package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/jobs"
	"github.com/revxrent/storefront/internal/notify"
	"github.com/revxrent/storefront/internal/pricing"
	"github.com/revxrent/storefront/internal/shipping"
	"github.com/revxrent/storefront/internal/store"
	"github.com/revxrent/storefront/internal/tax"
)

// ItemSelection is one requested line at checkout. Prices are never
// taken from the client; they are snapshotted from the catalog here.
type ItemSelection struct {
	ProductRef     string
	Quantity       int
	Mode           domain.ItemMode
	RentalUnit     domain.RentalUnit
	RentalDuration int
}

// CheckoutParams is the input to placing an order.
type CheckoutParams struct {
	Items        []ItemSelection
	Customer     domain.CustomerInfo
	ShippingCode string
	// FromCart clears the caller's cart once the order is placed.
	FromCart bool
}

// CheckoutService turns a selection of items into a placed order.
type CheckoutService interface {
	CreateOrder(ctx context.Context, principal domain.Principal, params CheckoutParams) (*domain.Order, error)
}

type checkoutService struct {
	store    store.Store
	tax      tax.Calculator
	shipping shipping.Provider
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewCheckoutService builds the checkout service.
func NewCheckoutService(s store.Store, taxCalc tax.Calculator, shippingProv shipping.Provider, notifier notify.Notifier, logger *slog.Logger) (CheckoutService, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	if taxCalc == nil {
		return nil, fmt.Errorf("tax calculator is required")
	}
	if shippingProv == nil {
		return nil, fmt.Errorf("shipping provider is required")
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &checkoutService{
		store:    s,
		tax:      taxCalc,
		shipping: shippingProv,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// CreateOrder prices the selection against the live catalog, creates
// the order in processing state, and queues the confirmation email.
func (s *checkoutService) CreateOrder(ctx context.Context, principal domain.Principal, params CheckoutParams) (*domain.Order, error) {
	const op = "checkout.createOrder"

	if len(params.Items) == 0 {
		return nil, domain.Invalid(op, "order must contain at least one item")
	}
	if params.Customer.Name == "" || params.Customer.Email == "" {
		return nil, domain.Invalid(op, "customer name and email are required")
	}

	items, err := s.buildLineItems(ctx, params.Items)
	if err != nil {
		return nil, err
	}

	subtotal := domain.SumLineTotals(items)

	taxRes, err := s.tax.Calculate(ctx, tax.Params{Subtotal: subtotal, State: params.Customer.Address.State})
	if err != nil {
		return nil, fmt.Errorf("failed to calculate tax: %w", err)
	}

	fee, err := s.shippingFee(ctx, params, subtotal, len(items))
	if err != nil {
		return nil, err
	}

	totals := pricing.ComputeTotalsFromSubtotal(subtotal, taxRes.Amount, fee, domain.NoOffer())

	now := time.Now().UTC()
	order := &domain.Order{
		OrderNumber: domain.NewOrderNumber(),
		UserRef:     principal.UserID,
		Items:       items,
		Customer:    params.Customer,
		Status:      domain.StatusProcessing,
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		ShippingFee: totals.ShippingFee,
		Total:       totals.Total,
		Offer:       domain.NoOffer(),
		OrderedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	order.RefreshItemFlags()

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	s.logger.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.String("total", order.Total.StringFixed(2)))

	s.notifier.OrderConfirmation(ctx, jobs.BuildOrderConfirmation(order))

	if params.FromCart {
		// The order exists either way; a stale cart is an annoyance,
		// not a failure.
		if err := s.store.DeleteCart(ctx, principal.UserID); err != nil {
			s.logger.Warn("failed to clear cart after checkout",
				slog.String("user_id", principal.UserID),
				slog.String("error", err.Error()))
		}
	}

	return order, nil
}

func (s *checkoutService) buildLineItems(ctx context.Context, selections []ItemSelection) ([]domain.LineItem, error) {
	const op = "checkout.createOrder"

	items := make([]domain.LineItem, 0, len(selections))
	for _, sel := range selections {
		product, err := s.store.GetProduct(ctx, sel.ProductRef)
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.Errorf(domain.ENOTFOUND, op, "product %s not found", sel.ProductRef)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", sel.ProductRef, err)
		}

		item := domain.LineItem{
			ProductRef: product.ID,
			Name:       product.Name,
			UnitPrice:  product.Price,
			Quantity:   sel.Quantity,
			Mode:       sel.Mode,
			Image:      product.Image,
		}
		if sel.Mode == domain.ModeRental {
			rate, err := product.RentalRate(sel.RentalUnit)
			if err != nil {
				return nil, err
			}
			item.Rental = &domain.RentalDetails{
				Unit:        sel.RentalUnit,
				Rate:        rate,
				Duration:    sel.RentalDuration,
				ReturnDueAt: returnDueAt(sel.RentalUnit, sel.RentalDuration),
			}
		}

		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func returnDueAt(unit domain.RentalUnit, duration int) time.Time {
	now := time.Now().UTC()
	if unit == domain.RentalHourly {
		return now.Add(time.Duration(duration) * time.Hour)
	}
	return now.AddDate(0, 0, duration)
}

func (s *checkoutService) shippingFee(ctx context.Context, params CheckoutParams, subtotal decimal.Decimal, itemCount int) (decimal.Decimal, error) {
	const op = "checkout.createOrder"

	rates, err := s.shipping.GetRates(ctx, shipping.RateParams{
		Subtotal:   subtotal,
		ItemCount:  itemCount,
		Street:     params.Customer.Address.Street,
		City:       params.Customer.Address.City,
		State:      params.Customer.Address.State,
		PostalCode: params.Customer.Address.PostalCode,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get shipping rates: %w", err)
	}
	if len(rates) == 0 {
		return decimal.Zero, domain.Errorf(domain.EINTERNAL, op, "no shipping rates available")
	}

	if params.ShippingCode == "" {
		return rates[0].Cost, nil
	}
	for _, rate := range rates {
		if rate.ServiceCode == params.ShippingCode {
			return rate.Cost, nil
		}
	}
	return decimal.Zero, domain.Errorf(domain.EINVALID, op, "unknown shipping option: %s", params.ShippingCode)
}
