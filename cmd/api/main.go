package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ledgerly/server/internal/account"
	"github.com/ledgerly/server/internal/auth"
	"github.com/ledgerly/server/internal/budget"
	"github.com/ledgerly/server/internal/config"
	"github.com/ledgerly/server/internal/db"
	httphandler "github.com/ledgerly/server/internal/http"
	"github.com/ledgerly/server/internal/http/handlers"
	"github.com/ledgerly/server/internal/logger"
	"github.com/ledgerly/server/internal/metrics"
	"github.com/ledgerly/server/internal/middleware"
	"github.com/ledgerly/server/internal/repo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.Setup(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// Initialize repositories
	userRepo := repo.NewUserRepo(database)
	accountRepo := repo.NewAccountRepo(database)
	budgetRepo := repo.NewBudgetRepo(database)

	// Initialize auth services
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	otpManager := auth.NewOTPManager(cfg.OTPSalt, cfg.DevMode, cfg.DevOTP)
	authService := auth.NewAuthService(
		userRepo,
		auth.NewPasswordHasher(cfg.BcryptCost),
		jwtService,
		otpManager,
		auth.NewLogNotifier(log, cfg.DevMode),
		collector,
		log,
	)

	var limiter *middleware.RateLimiter
	if cfg.AuthRatePerMin > 0 {
		limiter = middleware.NewRateLimiter(cfg.AuthRatePerMin, 10*time.Minute)
		defer limiter.Stop()
	}

	router := httphandler.NewRouter(httphandler.Deps{
		Auth:     handlers.NewAuthHandler(authService, cfg.DevMode),
		Users:    handlers.NewUserHandler(authService),
		Accounts: handlers.NewAccountHandler(account.NewService(accountRepo)),
		Budgets:  handlers.NewBudgetHandler(budget.NewService(budgetRepo)),
		Tokens:   jwtService,
		Limiter:  limiter,
		Metrics:  collector,
		Gatherer: reg,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("port", cfg.Port), slog.Bool("dev_mode", cfg.DevMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		log.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server exited")
	return nil
}
