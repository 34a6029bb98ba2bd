package tests

import (
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/ledgerly/server/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmail = "e2e@example.com"

// TestAuthE2E runs the complete password reset flow against a real database:
// register, forgot-password, verify-otp, reset-password, login, then throttling.
func TestAuthE2E(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set; skipping E2E test")
	}

	limiter := middleware.NewRateLimiter(3, time.Minute)
	defer limiter.Stop()
	ts := newTestServer(t, limiter)

	t.Run("A_PasswordReset", func(t *testing.T) {
		ts.Truncate(t)
		status, _ := ts.call(t, http.MethodPost, "/auth/register", "", map[string]string{"email": testEmail, "password": "old-pw", "name": "E2E"})
		require.Equal(t, http.StatusCreated, status)

		status, body := ts.call(t, http.MethodPost, "/users/forgot-password", "", map[string]string{"email": testEmail})
		require.Equal(t, http.StatusOK, status, "forgot-password must succeed: %v", body)
		otp, _ := body["otp"].(string)
		require.Len(t, otp, 6, "otp must be exposed in dev mode")

		status, body = ts.call(t, http.MethodPost, "/users/verify-otp", "", map[string]string{"email": testEmail, "otp": otp})
		require.Equal(t, http.StatusOK, status, "verify-otp must succeed: %v", body)

		// verification does not consume the code
		status, body = ts.call(t, http.MethodPost, "/users/reset-password", "", map[string]string{
			"email": testEmail, "otp": otp, "newPassword": "new-pw",
		})
		require.Equal(t, http.StatusOK, status, "reset-password must succeed: %v", body)

		status, body = ts.call(t, http.MethodPost, "/users/reset-password", "", map[string]string{
			"email": testEmail, "otp": otp, "newPassword": "again",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_OR_EXPIRED_OTP", body["code"])

		status, _ = ts.call(t, http.MethodPost, "/auth/login", "", map[string]string{"email": testEmail, "password": "old-pw"})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("B_RateLimit", func(t *testing.T) {
		ts.Truncate(t)
		var last int
		for i := 0; i < 5; i++ {
			last, _ = ts.call(t, http.MethodPost, "/users/forgot-password", "", map[string]string{"email": testEmail})
			if last == http.StatusTooManyRequests {
				break
			}
		}
		assert.Equal(t, http.StatusTooManyRequests, last, "forgot-password must eventually be throttled")
	})
}
