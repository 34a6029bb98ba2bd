package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerly/server/internal/model"
)

// UserRepo defines the interface for identity repository operations
type UserRepo interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, user model.User) (model.User, error)
	Update(ctx context.Context, user model.User) (model.User, error)
	UpdateCredentials(ctx context.Context, user model.User) error
	Delete(ctx context.Context, id int64) error
}

type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo instance
func NewUserRepo(db *sql.DB) UserRepo {
	return &userRepo{db: db}
}

const userColumns = `id, guid, name, email, password_hash, is_verified, role, otp_hash, otp_expires_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	var role string
	var otpHash sql.NullString
	var otpExpiresAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.GUID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsVerified,
		&role,
		&otpHash,
		&otpExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	user.Role = model.Role(role)
	if otpHash.Valid && otpExpiresAt.Valid {
		user.OTPHash = otpHash.String
		expiresAt := otpExpiresAt.Time
		user.OTPExpiresAt = &expiresAt
	}
	return user, nil
}

// FindByID retrieves a user by ID
func (r *userRepo) FindByID(ctx context.Context, id int64) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves a user by email, the authentication lookup key
func (r *userRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// List returns all users ordered by ID
func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Create inserts a new user and returns it with generated columns filled in
func (r *userRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `
		INSERT INTO users (guid, name, email, password_hash, is_verified, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.GUID, user.Name, user.Email, user.PasswordHash, user.IsVerified, string(user.Role),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Update writes the profile fields (name, email, role, verification flag)
func (r *userRepo) Update(ctx context.Context, user model.User) (model.User, error) {
	query := `
		UPDATE users
		SET name = $2, email = $3, role = $4, is_verified = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, string(user.Role), user.IsVerified,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateCredentials writes the password hash and the OTP pair in a single statement,
// so concurrent writers resolve last-writer-wins without splitting the pair.
func (r *userRepo) UpdateCredentials(ctx context.Context, user model.User) error {
	var otpHash sql.NullString
	var otpExpiresAt sql.NullTime
	if user.HasOTP() {
		otpHash = sql.NullString{String: user.OTPHash, Valid: true}
		otpExpiresAt = sql.NullTime{Time: user.OTPExpiresAt.UTC().Truncate(time.Microsecond), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2, otp_hash = $3, otp_expires_at = $4, updated_at = now()
		WHERE id = $1
	`, user.ID, user.PasswordHash, otpHash, otpExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to update credentials: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user by ID
func (r *userRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
