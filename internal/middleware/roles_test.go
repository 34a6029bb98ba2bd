package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ledgerly/server/internal/auth"
	"github.com/ledgerly/server/internal/model"
	"github.com/stretchr/testify/assert"
)

// injectClaims stands in for AuthMiddleware.
func injectClaims(claims *auth.Claims) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims != nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func policyRouter(claims *auth.Claims) http.Handler {
	r := chi.NewRouter()
	policy := Policy{
		PolicyKey(http.MethodGet, "/users/{id}"): {model.RoleAdmin},
		PolicyKey(http.MethodGet, "/accounts"):   {model.RoleAdmin, model.RoleUser},
	}
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

	r.Group(func(r chi.Router) {
		r.Use(injectClaims(claims))
		r.Use(Authorize(policy))
		r.Get("/users/{id}", ok)
		r.Get("/accounts", ok)
		r.Get("/me", ok)
	})
	return r
}

func TestAuthorize(t *testing.T) {
	admin := &auth.Claims{UserID: 1, Role: model.RoleAdmin}
	user := &auth.Claims{UserID: 2, Role: model.RoleUser}
	roleless := &auth.Claims{UserID: 3}

	tests := []struct {
		name   string
		claims *auth.Claims
		path   string
		status int
	}{
		{"admin on admin route", admin, "/users/7", http.StatusOK},
		{"user on admin route", user, "/users/7", http.StatusForbidden},
		{"user on admin route with encoded slash", user, "/users/x%2Fy", http.StatusForbidden},
		{"user on shared route", user, "/accounts", http.StatusOK},
		{"no mapping means allowed", user, "/me", http.StatusOK},
		{"missing role on restricted route", roleless, "/users/7", http.StatusUnauthorized},
		{"missing role on open route", roleless, "/me", http.StatusOK},
		{"no claims", nil, "/accounts", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			policyRouter(tt.claims).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAuthorize_OutsideRouterRefuses(t *testing.T) {
	policy := Policy{PolicyKey(http.MethodGet, "/accounts"): {model.RoleUser}}
	called := false
	h := Authorize(policy)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req = req.WithContext(WithClaims(req.Context(), &auth.Claims{UserID: 2, Role: model.RoleUser}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}
