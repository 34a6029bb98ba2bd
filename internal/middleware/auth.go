package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ledgerly/server/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier verifies access tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// AuthMiddleware validates the bearer access token and attaches its claims to the context.
// Missing, malformed, expired and badly signed tokens are all rejected with 401.
func AuthMiddleware(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid authorization header format")
				return
			}

			token = strings.TrimSpace(token)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing token")
				return
			}

			claims, err := tokens.VerifyAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or expired token")
				return
			}

			if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
				info.userID = claims.UserID
				info.authenticated = true
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims attached by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(ctx context.Context) (int64, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
