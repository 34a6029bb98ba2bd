package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func newTestJWT(clock *fakeClock) *JWTService {
	return NewJWTService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour, WithClock(clock.Now))
}

func testUser() model.User {
	return model.User{
		ID:    42,
		GUID:  uuid.MustParse("7d9f3a52-2d0c-4b8e-9d3f-0c1f9a7e5b11"),
		Name:  "Ana",
		Email: "ana@example.com",
		Role:  model.RoleAdmin,
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWT(newTestClock())

	pair, err := svc.IssuePair(ClaimsFor(testUser()))
	require.NoError(t, err)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "7d9f3a52-2d0c-4b8e-9d3f-0c1f9a7e5b11", claims.GUID)
	assert.Equal(t, claims.GUID, claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	claims, err = svc.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestJWTService_ExpiryBoundary(t *testing.T) {
	clock := newTestClock()
	svc := newTestJWT(clock)

	token, err := svc.IssueAccessToken(ClaimsFor(testUser()))
	require.NoError(t, err)

	clock.Advance(15*time.Minute - time.Second)
	_, err = svc.VerifyAccessToken(token)
	require.NoError(t, err, "one second before expiry")

	clock.Advance(time.Second)
	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired, "exactly at expiry")

	clock.Advance(time.Hour)
	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_SecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestJWT(newTestClock())
	pair, err := svc.IssuePair(ClaimsFor(testUser()))
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTService_TamperedAndMalformed(t *testing.T) {
	svc := newTestJWT(newTestClock())
	token, err := svc.IssueAccessToken(ClaimsFor(testUser()))
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		_, err := svc.VerifyAccessToken(tamper(token))
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := NewJWTService("other", "other-refresh", time.Minute, time.Hour)
		forged, err := other.IssueAccessToken(ClaimsFor(testUser()))
		require.NoError(t, err)
		_, err = svc.VerifyAccessToken(forged)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		t.Run("malformed "+raw, func(t *testing.T) {
			_, err := svc.VerifyAccessToken(raw)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

// tamper swaps a character in the middle of the signature segment.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	i := len(sig) / 2
	if sig[i] == 'A' {
		sig[i] = 'B'
	} else {
		sig[i] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}
