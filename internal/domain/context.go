// Package domain provides the core business types for the storefront:
// line items, orders and their lifecycle, carts, wishlists, and the
// error and context conventions shared across the codebase.
package domain

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// principalContextKey stores the authenticated principal in context.
	principalContextKey contextKey = iota
)

// Principal is the already-authenticated caller of a core operation.
// Credential verification happens upstream; core code only ever sees
// this resolved identity.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// NewContextWithPrincipal returns a new context with the principal attached.
func NewContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext retrieves the principal from context.
// Returns nil if no principal is present.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey).(*Principal)
	return p
}
