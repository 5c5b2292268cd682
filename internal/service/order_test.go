package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revxrent/storefront/internal/billing"
	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/jobs"
	"github.com/revxrent/storefront/internal/store"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingNotifier captures queued notifications for assertions.
type recordingNotifier struct {
	confirmations []jobs.OrderConfirmationPayload
	updates       []jobs.OrderUpdatePayload
}

func (r *recordingNotifier) OrderConfirmation(_ context.Context, p jobs.OrderConfirmationPayload) {
	r.confirmations = append(r.confirmations, p)
}

func (r *recordingNotifier) OrderUpdate(_ context.Context, p jobs.OrderUpdatePayload) {
	r.updates = append(r.updates, p)
}

func seedOrder(t *testing.T, m *store.Memory, userRef string) *domain.Order {
	t.Helper()
	order := &domain.Order{
		OrderNumber: domain.NewOrderNumber(),
		UserRef:     userRef,
		Status:      domain.StatusProcessing,
		Customer:    domain.CustomerInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		Items: []domain.LineItem{
			{ProductRef: "p1", Name: "Roof Rack", UnitPrice: d("100"), Quantity: 1, Mode: domain.ModePurchase},
		},
		Subtotal:    d("100"),
		Tax:         d("8"),
		ShippingFee: d("15"),
		Total:       d("123"),
		Offer:       domain.NoOffer(),
		OrderedAt:   time.Now().UTC(),
	}
	require.NoError(t, m.CreateOrder(context.Background(), order))
	return order
}

func newOrderService(t *testing.T, m *store.Memory, notifier *recordingNotifier, cfg OrderServiceConfig) OrderService {
	t.Helper()
	svc, err := NewOrderService(m, notifier, &billing.MockProvider{}, testLogger(), cfg)
	require.NoError(t, err)
	return svc
}

func TestApplyEditFixedOfferRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	notifier := &recordingNotifier{}
	svc := newOrderService(t, m, notifier, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	offer := domain.Offer{Type: domain.OfferFixed, Value: d("30"), Description: "Loyalty discount"}
	updated, changes, err := svc.ApplyEdit(ctx, order.ID, EditRequest{Offer: &offer, Revision: order.Revision})
	require.NoError(t, err)

	assert.True(t, updated.Total.Equal(d("93")))
	require.NotNil(t, changes.Offer)
	require.NotNil(t, changes.Total)
	assert.True(t, changes.Total.Equal(d("93")))

	// pre-edit financials captured with the derived tax rate
	require.NotNil(t, updated.OriginalValues)
	assert.True(t, updated.OriginalValues.Total.Equal(d("123")))
	assert.True(t, updated.OriginalValues.TaxRate.Equal(d("0.08")))

	require.Len(t, notifier.updates, 1)
}

func TestApplyEditOriginalValuesWriteOnce(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	fee := d("20")
	first, _, err := svc.ApplyEdit(ctx, order.ID, EditRequest{ShippingFee: &fee})
	require.NoError(t, err)
	require.NotNil(t, first.OriginalValues)

	fee2 := d("25")
	second, _, err := svc.ApplyEdit(ctx, order.ID, EditRequest{ShippingFee: &fee2})
	require.NoError(t, err)

	// still the values from before the first edit
	assert.True(t, second.OriginalValues.ShippingFee.Equal(d("15")))
	assert.True(t, second.OriginalValues.Total.Equal(d("123")))
}

func TestApplyEditNoActualChangeWritesNothing(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	notifier := &recordingNotifier{}
	svc := newOrderService(t, m, notifier, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	sameFee := d("15")
	sameStatus := domain.StatusProcessing
	updated, changes, err := svc.ApplyEdit(ctx, order.ID, EditRequest{ShippingFee: &sameFee, Status: &sameStatus})
	require.NoError(t, err)

	assert.True(t, changes.Empty())
	assert.Equal(t, order.Revision, updated.Revision)
	assert.Nil(t, updated.OriginalValues)
	assert.Empty(t, notifier.updates)
}

func TestApplyEditRejectsOutOfRangePercentage(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	offer := domain.Offer{Type: domain.OfferPercentage, Value: d("150")}
	_, _, err := svc.ApplyEdit(ctx, order.ID, EditRequest{Offer: &offer})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	// nothing persisted
	got, err := m.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferNone, got.Offer.Type)
	assert.Nil(t, got.OriginalValues)
}

func TestApplyEditRejectsNegativeAmounts(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	fee := d("-1")
	_, _, err := svc.ApplyEdit(ctx, order.ID, EditRequest{ShippingFee: &fee})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	tax := d("-0.01")
	_, _, err = svc.ApplyEdit(ctx, order.ID, EditRequest{Tax: &tax})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestApplyEditStrictTransitions(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{StrictTransitions: true})
	order := seedOrder(t, m, "user-1")

	// processing -> sent skips paid/confirmed
	sent := domain.StatusSent
	_, _, err := svc.ApplyEdit(ctx, order.ID, EditRequest{Status: &sent})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	confirmed := domain.StatusConfirmed
	updated, _, err := svc.ApplyEdit(ctx, order.ID, EditRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
}

func TestApplyEditPermissiveTransitions(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{StrictTransitions: false})
	order := seedOrder(t, m, "user-1")

	// any known status goes through when enforcement is off
	sent := domain.StatusSent
	updated, _, err := svc.ApplyEdit(ctx, order.ID, EditRequest{Status: &sent})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, updated.Status)

	bogus := domain.OrderStatus("archived")
	_, _, err = svc.ApplyEdit(ctx, order.ID, EditRequest{Status: &bogus})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestApplyEditStaleRevisionConflicts(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	fee := d("20")
	_, _, err := svc.ApplyEdit(ctx, order.ID, EditRequest{ShippingFee: &fee, Revision: order.Revision})
	require.NoError(t, err)

	// second editor still holds revision 1
	fee2 := d("30")
	_, _, err = svc.ApplyEdit(ctx, order.ID, EditRequest{ShippingFee: &fee2, Revision: order.Revision})
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestApplyEditOrderNotFound(t *testing.T) {
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{})

	fee := d("20")
	_, _, err := svc.ApplyEdit(context.Background(), "missing", EditRequest{ShippingFee: &fee})
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	notifier := &recordingNotifier{}
	svc := newOrderService(t, m, notifier, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	paid, err := svc.MarkPaid(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	require.Len(t, notifier.updates, 1)

	// replayed callback: no write, no second notification
	again, err := svc.MarkPaid(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, again.Status)
	assert.Equal(t, paid.Revision, again.Revision)
	assert.Len(t, notifier.updates, 1)
}

func TestMarkPaidTerminalOrderConflicts(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	cancelled := domain.StatusCancelled
	_, err := m.UpdateOrder(ctx, order.ID, order.Revision, store.OrderPatch{Status: &cancelled})
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, order.ID)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestGetEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	_, err := svc.Get(ctx, domain.Principal{UserID: "user-1"}, order.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, domain.Principal{UserID: "user-2"}, order.ID)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	_, err = svc.Get(ctx, domain.Principal{UserID: "admin", IsAdmin: true}, order.ID)
	require.NoError(t, err)
}

func TestListScopedByRole(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{})
	seedOrder(t, m, "user-1")
	seedOrder(t, m, "user-2")

	mine, err := svc.List(ctx, domain.Principal{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(ctx, domain.Principal{UserID: "admin", IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreatePaymentSessionRequiresPaymentEnabled(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newOrderService(t, m, &recordingNotifier{}, OrderServiceConfig{})
	order := seedOrder(t, m, "user-1")

	_, err := svc.CreatePaymentSession(ctx, domain.Principal{UserID: "user-1"}, order.ID)
	assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))

	enabled := true
	_, err = m.UpdateOrder(ctx, order.ID, order.Revision, store.OrderPatch{PaymentEnabled: &enabled})
	require.NoError(t, err)

	session, err := svc.CreatePaymentSession(ctx, domain.Principal{UserID: "user-1"}, order.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, session.URL)
}

func TestCreatePaymentSessionRejectsPaidOrder(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	sessionErr := errors.New("should not be called")
	provider := &billing.MockProvider{
		CreateCheckoutSessionFunc: func(context.Context, billing.SessionParams) (*billing.CheckoutSession, error) {
			return nil, sessionErr
		},
	}
	svc, err := NewOrderService(m, &recordingNotifier{}, provider, testLogger(), OrderServiceConfig{})
	require.NoError(t, err)

	order := seedOrder(t, m, "user-1")
	enabled := true
	paid := domain.StatusPaid
	_, err = m.UpdateOrder(ctx, order.ID, order.Revision, store.OrderPatch{PaymentEnabled: &enabled, Status: &paid})
	require.NoError(t, err)

	_, err = svc.CreatePaymentSession(ctx, domain.Principal{UserID: "user-1"}, order.ID)
	assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))
}
