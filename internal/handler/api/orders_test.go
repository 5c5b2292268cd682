package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revxrent/storefront/internal/billing"
	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/handler/api"
	"github.com/revxrent/storefront/internal/router"
	"github.com/revxrent/storefront/internal/routes"
	"github.com/revxrent/storefront/internal/service"
	"github.com/revxrent/storefront/internal/shipping"
	"github.com/revxrent/storefront/internal/store"
	"github.com/revxrent/storefront/internal/tax"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// asPrincipal injects a fixed principal, standing in for the session
// cookie middleware.
func asPrincipal(p *domain.Principal) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p != nil {
				r = r.WithContext(domain.NewContextWithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type testEnv struct {
	store *store.Memory
	mux   func(p *domain.Principal) http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	m := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	orderSvc, err := service.NewOrderService(m, nil, &billing.MockProvider{}, logger, service.OrderServiceConfig{StrictTransitions: true})
	require.NoError(t, err)

	calc, err := tax.NewPercentageCalculator(d("0.08"))
	require.NoError(t, err)
	checkoutSvc, err := service.NewCheckoutService(m, calc, shipping.NewDefaultFlatRateProvider(), nil, logger)
	require.NoError(t, err)

	cartSvc, err := service.NewCartService(m)
	require.NoError(t, err)
	wishlistSvc, err := service.NewWishlistService(m)
	require.NoError(t, err)

	deps := routes.APIDeps{
		Orders:   api.NewOrderHandler(orderSvc, checkoutSvc),
		Cart:     api.NewCartHandler(cartSvc),
		Wishlist: api.NewWishlistHandler(wishlistSvc),
	}

	return &testEnv{
		store: m,
		mux: func(p *domain.Principal) http.Handler {
			r := router.New(asPrincipal(p))
			routes.RegisterAPIRoutes(r, deps)
			return r
		},
	}
}

func (e *testEnv) seedOrder(t *testing.T, userRef string) *domain.Order {
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
	require.NoError(t, e.store.CreateOrder(context.Background(), order))
	return order
}

func TestGetOrderRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, "user-1")

	rec := httptest.NewRecorder()
	env.mux(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetOrderOwnerAndStranger(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, "user-1")

	rec := httptest.NewRecorder()
	env.mux(&domain.Principal{UserID: "user-1"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	env.mux(&domain.Principal{UserID: "user-2"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderAdminGate(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, "user-1")
	body := `{"shippingFee":"20","revision":1}`

	// owner but not admin
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+order.ID, strings.NewReader(body))
	env.mux(&domain.Principal{UserID: "user-1"}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// admin
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/orders/"+order.ID, strings.NewReader(body))
	env.mux(&domain.Principal{UserID: "staff", IsAdmin: true}).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Modified bool `json:"modified"`
		Order    struct {
			ShippingFee string `json:"shippingFee"`
			Total       string `json:"total"`
			Revision    int64  `json:"revision"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Modified)
	assert.Equal(t, "20", resp.Order.ShippingFee)
	assert.Equal(t, "128", resp.Order.Total)
	assert.Equal(t, int64(2), resp.Order.Revision)
}

func TestUpdateOrderStaleRevisionConflicts(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, "user-1")
	admin := &domain.Principal{UserID: "staff", IsAdmin: true}

	rec := httptest.NewRecorder()
	env.mux(admin).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/orders/"+order.ID, strings.NewReader(`{"shippingFee":"20","revision":1}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	env.mux(admin).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/orders/"+order.ID, strings.NewReader(`{"shippingFee":"30","revision":1}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateOrderRejectsBadPercentage(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, "user-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+order.ID,
		strings.NewReader(`{"offer":{"type":"percentage","value":"150"}}`))
	env.mux(&domain.Principal{UserID: "staff", IsAdmin: true}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersScoped(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "user-1")
	env.seedOrder(t, "user-2")

	var resp struct {
		Orders []json.RawMessage `json:"orders"`
	}

	rec := httptest.NewRecorder()
	env.mux(&domain.Principal{UserID: "user-1"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Orders, 1)

	rec = httptest.NewRecorder()
	env.mux(&domain.Principal{UserID: "staff", IsAdmin: true}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Orders, 2)
}

func TestCreateOrderEndpoint(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.PutProduct(context.Background(), &domain.Product{
		ID: "rack", Name: "Roof Rack", Price: d("49.99"),
	}))

	body := `{
		"items":[{"productRef":"rack","quantity":2,"mode":"purchase"}],
		"customer":{"name":"Ada Lovelace","email":"ada@example.com","address":{"state":"CA"}}
	}`
	rec := httptest.NewRecorder()
	env.mux(&domain.Principal{UserID: "user-1"}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "user-1", order.UserRef)
	assert.True(t, order.Subtotal.Equal(d("99.98")))
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.mux(&domain.Principal{UserID: "user-1"}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartEndpoints(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.PutProduct(context.Background(), &domain.Product{
		ID: "rack", Name: "Roof Rack", Price: d("49.99"),
	}))
	user := &domain.Principal{UserID: "user-1"}

	rec := httptest.NewRecorder()
	env.mux(user).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"productRef":"rack","quantity":2,"mode":"purchase"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	env.mux(user).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var cart domain.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	rec = httptest.NewRecorder()
	env.mux(user).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/cart/items/rack", strings.NewReader(`{"mode":"purchase","quantity":5}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	env.mux(user).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/cart/items/rack?mode=purchase", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)

	rec = httptest.NewRecorder()
	env.mux(user).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/cart", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWishlistEndpoints(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.PutProduct(context.Background(), &domain.Product{
		ID: "suv", Name: "Compact SUV", Price: d("28000"),
	}))
	user := &domain.Principal{UserID: "user-1"}

	rec := httptest.NewRecorder()
	env.mux(user).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wishlist/items", strings.NewReader(`{"productRef":"suv"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	env.mux(user).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/wishlist/items/suv", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var w domain.Wishlist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	assert.Empty(t, w.Items)
}

func TestCheckoutSessionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, "user-1")

	// payment not enabled yet
	rec := httptest.NewRecorder()
	env.mux(&domain.Principal{UserID: "user-1"}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders/"+order.ID+"/checkout-session", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	enabled := true
	_, err := env.store.UpdateOrder(context.Background(), order.ID, order.Revision, store.OrderPatch{PaymentEnabled: &enabled})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	env.mux(&domain.Principal{UserID: "user-1"}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders/"+order.ID+"/checkout-session", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["url"])
}
