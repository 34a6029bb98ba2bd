package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort            = "8080"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultDevOTP          = "123456"
	defaultBcryptCost      = 10
	defaultAuthRatePerMin  = 30
)

// Config holds the application configuration
type Config struct {
	DatabaseURL      string
	Port             string
	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	OTPSalt          string
	DevMode          bool
	DevOTP           string
	BcryptCost       int
	AuthRatePerMin   int
	LogLevel         slog.Level
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:            defaultPort,
		AccessTokenTTL:  defaultAccessTokenTTL,
		RefreshTokenTTL: defaultRefreshTokenTTL,
		DevOTP:          defaultDevOTP,
		BcryptCost:      defaultBcryptCost,
		AuthRatePerMin:  defaultAuthRatePerMin,
		LogLevel:        slog.LevelInfo,
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if _, err := url.Parse(databaseURL); err != nil {
		return nil, fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}
	cfg.DatabaseURL = databaseURL

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	cfg.JWTRefreshSecret = os.Getenv("JWT_REFRESH_SECRET")
	if cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET environment variable is required")
	}
	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	var err error
	if cfg.AccessTokenTTL, err = secondsEnv("ACCESS_TOKEN_VALIDITY_DURATION_IN_SEC", cfg.AccessTokenTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = secondsEnv("REFRESH_TOKEN_VALIDITY_DURATION_IN_SEC", cfg.RefreshTokenTTL); err != nil {
		return nil, err
	}

	cfg.OTPSalt = os.Getenv("OTP_SALT")
	if cfg.OTPSalt == "" {
		return nil, fmt.Errorf("OTP_SALT environment variable is required")
	}

	cfg.DevMode = os.Getenv("DEV_MODE") == "true"
	if devOTP := os.Getenv("DEV_OTP"); devOTP != "" {
		if !isSixDigits(devOTP) {
			return nil, fmt.Errorf("DEV_OTP must be exactly 6 digits")
		}
		cfg.DevOTP = devOTP
	}

	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", cfg.BcryptCost); err != nil {
		return nil, err
	}
	if cfg.AuthRatePerMin, err = intEnv("AUTH_RATE_LIMIT_PER_MINUTE", cfg.AuthRatePerMin); err != nil {
		return nil, err
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func secondsEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of seconds", key)
	}
	return time.Duration(n) * time.Second, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
