package service

import "github.com/revxrent/storefront/internal/domain"

var (
	// ErrOrderNotFound is returned when an order lookup misses.
	ErrOrderNotFound = domain.Errorf(domain.ENOTFOUND, "service.order", "order not found")

	// ErrEditConflict is returned when an edit raced a concurrent
	// write; the caller should reload and retry.
	ErrEditConflict = domain.Errorf(domain.ECONFLICT, "service.order", "order was modified by another request, reload and retry")

	// ErrPaymentUnavailable is returned when a checkout session is
	// requested for an order that does not accept online payment.
	ErrPaymentUnavailable = domain.Errorf(domain.EPAYMENT, "service.order", "online payment is not available for this order")
)
