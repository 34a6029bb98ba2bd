package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/logger"
	"github.com/ledgerly/server/internal/model"
	"github.com/ledgerly/server/internal/repo"
)

// EventRecorder counts auth flow outcomes.
type EventRecorder interface {
	AuthEvent(flow, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string, string) {}

// LoginResult is returned by Login and Refresh.
type LoginResult struct {
	TokenPair
	Email string
	Name  string
}

// AuthService orchestrates authentication operations
type AuthService struct {
	users    repo.UserRepo
	hasher   *PasswordHasher
	tokens   *JWTService
	otps     *OTPManager
	notifier Notifier
	events   EventRecorder
	log      *slog.Logger
}

// NewAuthService creates a new auth service. events may be nil.
func NewAuthService(
	users repo.UserRepo,
	hasher *PasswordHasher,
	tokens *JWTService,
	otps *OTPManager,
	notifier Notifier,
	events EventRecorder,
	log *slog.Logger,
) *AuthService {
	if events == nil {
		events = nopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		otps:     otps,
		notifier: notifier,
		events:   events,
		log:      log,
	}
}

// NormalizeEmail trims and lowercases an address so it can be used as the lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}

func (s *AuthService) record(flow string, err error) {
	switch {
	case err == nil:
		s.events.AuthEvent(flow, "success")
	case errors.Is(err, ErrInternal):
		s.events.AuthEvent(flow, "error")
	default:
		s.events.AuthEvent(flow, "failure")
	}
}

// Login checks the password and issues a token pair. Unknown email and wrong password
// both fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (res LoginResult, err error) {
	defer func() { s.record("login", err) }()

	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, internal("find user", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Register creates a USER identity with a hashed password and a fresh guid.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (user model.User, err error) {
	defer func() { s.record("register", err) }()

	email = NormalizeEmail(email)
	_, err = s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return model.User{}, ErrDuplicateEmail
	case !errors.Is(err, repo.ErrNotFound):
		return model.User{}, internal("find user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, internal("hash password", err)
	}

	user, err = s.users.Create(ctx, model.User{
		GUID:         uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, internal("create user", err)
	}

	s.log.InfoContext(ctx, "user registered", slog.Int64("user_id", user.ID), slog.String("email", logger.MaskEmail(email)))
	return user, nil
}

// Refresh exchanges a valid refresh token for a new pair. Every verification failure and a
// vanished identity collapse into ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (res LoginResult, err error) {
	defer func() { s.record("refresh", err) }()

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return LoginResult{}, ErrInvalidRefreshToken
	}
	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return LoginResult{}, ErrInvalidRefreshToken
		}
		return LoginResult{}, internal("find user", err)
	}
	return s.issue(user)
}

func (s *AuthService) issue(user model.User) (LoginResult, error) {
	pair, err := s.tokens.IssuePair(ClaimsFor(user))
	if err != nil {
		return LoginResult{}, internal("issue tokens", err)
	}
	return LoginResult{TokenPair: pair, Email: user.Email, Name: user.Name}, nil
}

// ForgotPassword attaches a new OTP to the identity and hands it to the notifier.
// The plaintext code is returned so development mode can echo it; callers must not expose it otherwise.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (code string, err error) {
	defer func() { s.record("forgot_password", err) }()

	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", internal("find user", err)
	}

	code, err = s.otps.Generate(&user)
	if err != nil {
		return "", internal("generate otp", err)
	}
	if err := s.users.UpdateCredentials(ctx, user); err != nil {
		return "", internal("store otp", err)
	}

	if err := s.notifier.SendOTP(ctx, user.Email, code); err != nil {
		s.log.WarnContext(ctx, "otp delivery failed",
			slog.String("email", logger.MaskEmail(user.Email)), slog.Any("error", err))
	}
	return code, nil
}

// VerifyOTP checks the code without consuming it.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (err error) {
	defer func() { s.record("verify_otp", err) }()

	_, err = s.checkOTP(ctx, email, code)
	return err
}

// ResetPassword re-validates the code, stores the new password hash and clears the code.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (err error) {
	defer func() { s.record("reset_password", err) }()

	user, err := s.checkOTP(ctx, email, code)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return internal("hash password", err)
	}
	user.PasswordHash = hash
	s.otps.Consume(&user)

	if err := s.users.UpdateCredentials(ctx, user); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidOrExpiredOTP
		}
		return internal("store password", err)
	}

	s.log.InfoContext(ctx, "password reset", slog.Int64("user_id", user.ID))
	return nil
}

func (s *AuthService) checkOTP(ctx context.Context, email, code string) (model.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, ErrInvalidOrExpiredOTP
		}
		return model.User{}, internal("find user", err)
	}
	if !s.otps.Validate(&user, code) {
		return model.User{}, ErrInvalidOrExpiredOTP
	}
	return user, nil
}
