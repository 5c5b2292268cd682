// Package routes wires handlers onto the router.
package routes

import (
	"net/http"

	"github.com/revxrent/storefront/internal/handler/api"
	"github.com/revxrent/storefront/internal/handler/webhook"
	"github.com/revxrent/storefront/internal/middleware"
	"github.com/revxrent/storefront/internal/router"
	"github.com/revxrent/storefront/internal/store"
)

// APIDeps carries the handlers behind the authenticated JSON API.
type APIDeps struct {
	Orders   *api.OrderHandler
	Cart     *api.CartHandler
	Wishlist *api.WishlistHandler
}

// RegisterAPIRoutes mounts the authenticated API. The order edit
// endpoint additionally passes through the admin gate.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	authed := r.Group(middleware.RequireAuth)

	authed.Get("/api/orders", deps.Orders.List)
	authed.Post("/api/orders", deps.Orders.Create)
	authed.Get("/api/orders/{id}", deps.Orders.Get)
	authed.Post("/api/orders/{id}/checkout-session", deps.Orders.CreateCheckoutSession)

	// RequireAdmin is the only authorization gate for admin writes.
	admin := authed.Group(middleware.RequireAdmin)
	admin.Put("/api/orders/{id}", deps.Orders.Update)

	authed.Get("/api/cart", deps.Cart.Get)
	authed.Put("/api/cart", deps.Cart.Replace)
	authed.Delete("/api/cart", deps.Cart.Clear)
	authed.Post("/api/cart/items", deps.Cart.AddItem)
	authed.Put("/api/cart/items/{productRef}", deps.Cart.SetQuantity)
	authed.Delete("/api/cart/items/{productRef}", deps.Cart.RemoveItem)

	authed.Get("/api/wishlist", deps.Wishlist.Get)
	authed.Put("/api/wishlist", deps.Wishlist.Replace)
	authed.Delete("/api/wishlist", deps.Wishlist.Clear)
	authed.Post("/api/wishlist/items", deps.Wishlist.AddItem)
	authed.Delete("/api/wishlist/items/{productRef}", deps.Wishlist.RemoveItem)
}

// WebhookDeps carries the handlers for provider callbacks.
type WebhookDeps struct {
	Payment *webhook.PaymentHandler
}

// RegisterWebhookRoutes mounts the callback endpoints. They sit
// outside the session middleware; the payload signature is the
// authentication.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/webhooks/payment", deps.Payment.Handle)
}

// OpsDeps carries the operational endpoints.
type OpsDeps struct {
	Store   store.Store
	Metrics *middleware.Metrics
}

// RegisterOpsRoutes mounts health and metrics.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.Store.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("unhealthy"))
			return
		}
		w.Write([]byte("ok"))
	})
	if deps.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}
}
