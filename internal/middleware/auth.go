package middleware

import (
	"net/http"

	"github.com/revxrent/storefront/internal/auth"
	"github.com/revxrent/storefront/internal/domain"
)

// SessionCookieName is the cookie the signed session token lives in.
const SessionCookieName = "storefront_session"

// WithPrincipal decodes the session cookie and, when valid, attaches
// the principal to the request context. Requests without a valid
// session pass through anonymous; enforcement belongs to RequireAuth
// and RequireAdmin.
func WithPrincipal(codec *auth.SessionCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil {
				if principal, err := codec.Decode(cookie.Value); err == nil {
					r = r.WithContext(domain.NewContextWithPrincipal(r.Context(), &principal))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain.PrincipalFromContext(r.Context()) == nil {
			writeAuthError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is the authorization gate for every admin-only route.
// It implies RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := domain.PrincipalFromContext(r.Context())
		if principal == nil {
			writeAuthError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED, "authentication required")
			return
		}
		if !principal.IsAdmin {
			writeAuthError(w, http.StatusForbidden, domain.EFORBIDDEN, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
