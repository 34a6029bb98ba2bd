package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ledgerly/server/internal/model"
)

// Claims are the identity attributes carried by access and refresh tokens.
type Claims struct {
	UserID int64      `json:"id"`
	GUID   string     `json:"guid"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ClaimsFor builds the token claims of a user.
func ClaimsFor(user model.User) Claims {
	return Claims{
		UserID: user.ID,
		GUID:   user.GUID.String(),
		Email:  user.Email,
		Role:   user.Role,
	}
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64
}

// JWTService signs and verifies HS256 tokens. Access and refresh tokens use distinct secrets and lifetimes.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *JWTService {
	o := applyOptions(opts)
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           o.now,
	}
}

// AccessTTL returns the lifetime of access tokens.
func (s *JWTService) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssueAccessToken signs claims with the access secret.
func (s *JWTService) IssueAccessToken(claims Claims) (string, error) {
	return s.sign(claims, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken signs claims with the refresh secret.
func (s *JWTService) IssueRefreshToken(claims Claims) (string, error) {
	return s.sign(claims, s.refreshSecret, s.refreshTTL)
}

// IssuePair issues a fresh access and refresh token for claims.
func (s *JWTService) IssuePair(claims Claims) (TokenPair, error) {
	access, err := s.IssueAccessToken(claims)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(claims)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL / time.Second),
	}, nil
}

// VerifyAccessToken checks signature and expiry against the access secret.
func (s *JWTService) VerifyAccessToken(token string) (*Claims, error) {
	return s.verify(token, s.accessSecret)
}

// VerifyRefreshToken checks signature and expiry against the refresh secret.
func (s *JWTService) VerifyRefreshToken(token string) (*Claims, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *JWTService) sign(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.GUID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// verify fails with ErrTokenExpired at or after expiry, ErrTokenMalformed when the token
// cannot be decoded, and ErrTokenInvalid for any other failure (signature, algorithm).
func (s *JWTService) verify(tokenString string, secret []byte) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	switch {
	case err == nil && token.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenInvalid
	}
}
