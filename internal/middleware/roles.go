package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ledgerly/server/internal/model"
)

// Policy maps "METHOD /route/pattern" to the roles allowed to call it.
// Routes without an entry are open to any authenticated identity.
type Policy map[string][]model.Role

// PolicyKey returns the table key for method and pattern.
func PolicyKey(method, pattern string) string {
	return method + " " + pattern
}

// Authorize enforces policy for requests already passed through AuthMiddleware.
// It must be mounted on a chi router so the matched pattern is known; a request
// without one is refused.
func Authorize(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthenticated")
				return
			}

			rctx := chi.RouteContext(r.Context())
			if rctx == nil || rctx.RoutePattern() == "" {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "forbidden")
				return
			}

			allowed, restricted := policy[PolicyKey(r.Method, rctx.RoutePattern())]
			if !restricted {
				next.ServeHTTP(w, r)
				return
			}
			if claims.Role == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "role missing from token")
				return
			}
			for _, role := range allowed {
				if role == claims.Role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "FORBIDDEN", "forbidden")
		})
	}
}
