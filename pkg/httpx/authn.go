package httpx

import (
	"net/http"

	"github.com/recipic-shop/recipic/pkg/authapi"
	"github.com/recipic-shop/recipic/pkg/jwtx"
	"github.com/recipic-shop/recipic/pkg/slogx"
)

// AuthnMiddleware resolves the bearer token on every request without
// demanding one. A valid access token populates the request context with
// the member's identity; a missing or invalid token leaves the request
// anonymous and hands the authorization decision to the route-level
// guards. Public endpoints therefore keep working for callers that send
// a stale token.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := BearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Debug("jwt verify failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if err := claims.RequireType(jwtx.TokenTypeAccess); err != nil {
				log.Debug("jwt wrong token type", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if err := claims.ValidateExpiry(); err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with a 401 JSON error.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			authapi.ErrUnauthenticated.WriteError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose principal lacks the given authority.
// Anonymous callers get 401, authenticated callers without the role 403.
func RequireRole(role string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAuthenticated(r.Context()) {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				authapi.ErrUnauthenticated.WriteError(w)
				return
			}
			if RoleFromContext(r.Context()) != role {
				authapi.ErrForbidden.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
