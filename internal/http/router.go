package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/ledgerly/server/internal/http/handlers"
	"github.com/ledgerly/server/internal/metrics"
	"github.com/ledgerly/server/internal/middleware"
	"github.com/ledgerly/server/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth     *handlers.AuthHandler
	Users    *handlers.UserHandler
	Accounts *handlers.AccountHandler
	Budgets  *handlers.BudgetHandler

	Tokens   middleware.TokenVerifier
	Limiter  *middleware.RateLimiter // nil disables throttling
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

var (
	adminOnly = []model.Role{model.RoleAdmin}
	anyRole   = []model.Role{model.RoleAdmin, model.RoleUser}
)

// RolePolicy is the route to allowed-roles table for protected endpoints.
// /me is absent on purpose: any authenticated identity may call it.
var RolePolicy = middleware.Policy{
	"GET /users":         adminOnly,
	"GET /users/{id}":    adminOnly,
	"PUT /users/{id}":    adminOnly,
	"DELETE /users/{id}": adminOnly,

	"POST /accounts":               anyRole,
	"GET /accounts":                anyRole,
	"GET /accounts/{accountId}":    anyRole,
	"PUT /accounts/{accountId}":    anyRole,
	"DELETE /accounts/{accountId}": anyRole,

	"POST /budgets":              anyRole,
	"GET /budgets":               anyRole,
	"GET /budgets/{budgetId}":    anyRole,
	"PUT /budgets/{budgetId}":    anyRole,
	"DELETE /budgets/{budgetId}": anyRole,
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if d.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(d.Logger))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(chimw.Recoverer)

	r.Get("/health", handlers.HandleHealth)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	throttle := func(h http.HandlerFunc) http.Handler {
		if d.Limiter == nil {
			return h
		}
		return d.Limiter.Middleware(h)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Method(http.MethodPost, "/login", throttle(d.Auth.HandleLogin))
		r.Method(http.MethodPost, "/register", throttle(d.Auth.HandleRegister))
		r.Post("/refresh", d.Auth.HandleRefresh)
	})

	// password reset is public; verify and reset are not throttled
	r.Method(http.MethodPost, "/users/forgot-password", throttle(d.Auth.HandleForgotPassword))
	r.Post("/users/verify-otp", d.Auth.HandleVerifyOTP)
	r.Post("/users/reset-password", d.Auth.HandleResetPassword)

	// Protected routes (require valid JWT)
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.AuthMiddleware(d.Tokens))
		pr.Use(middleware.Authorize(RolePolicy))

		pr.Get("/me", d.Users.HandleMe)

		pr.Get("/users", d.Users.HandleList)
		pr.Get("/users/{id}", d.Users.HandleGet)
		pr.Put("/users/{id}", d.Users.HandleUpdate)
		pr.Delete("/users/{id}", d.Users.HandleDelete)

		pr.Post("/accounts", d.Accounts.HandleCreate)
		pr.Get("/accounts", d.Accounts.HandleList)
		pr.Get("/accounts/{accountId}", d.Accounts.HandleGet)
		pr.Put("/accounts/{accountId}", d.Accounts.HandleUpdate)
		pr.Delete("/accounts/{accountId}", d.Accounts.HandleDelete)

		pr.Post("/budgets", d.Budgets.HandleCreate)
		pr.Get("/budgets", d.Budgets.HandleList)
		pr.Get("/budgets/{budgetId}", d.Budgets.HandleGet)
		pr.Put("/budgets/{budgetId}", d.Budgets.HandleUpdate)
		pr.Delete("/budgets/{budgetId}", d.Budgets.HandleDelete)
	})

	return r
}
