package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/model"
)

// AccountRepo defines owner-scoped account persistence. Every method filters by userID.
type AccountRepo interface {
	Create(ctx context.Context, account model.Account) (model.Account, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Account, error)
	FindByID(ctx context.Context, id uuid.UUID, userID int64) (model.Account, error)
	FindByName(ctx context.Context, name string, userID int64) (model.Account, error)
	Update(ctx context.Context, account model.Account) (model.Account, error)
	Delete(ctx context.Context, id uuid.UUID, userID int64) error
}

type accountRepo struct {
	db *sql.DB
}

// NewAccountRepo creates a new AccountRepo instance
func NewAccountRepo(db *sql.DB) AccountRepo {
	return &accountRepo{db: db}
}

const accountColumns = `id, user_id, name, balance, type, description, created_at, updated_at`

func scanAccount(row rowScanner) (model.Account, error) {
	var account model.Account
	var accountType, description sql.NullString
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.Balance,
		&accountType,
		&description,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return model.Account{}, err
	}
	if accountType.Valid {
		t := model.AccountType(accountType.String)
		account.Type = &t
	}
	if description.Valid {
		account.Description = &description.String
	}
	return account, nil
}

func nullAccountType(t *model.AccountType) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*t), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Create inserts a new account for its owner
func (r *accountRepo) Create(ctx context.Context, account model.Account) (model.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	query := `
		INSERT INTO accounts (id, user_id, name, balance, type, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.UserID, account.Name, account.Balance,
		nullAccountType(account.Type), nullString(account.Description),
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Account{}, ErrDuplicate
		}
		return model.Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// ListByUser returns the user's accounts, newest first
func (r *accountRepo) ListByUser(ctx context.Context, userID int64) ([]model.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]model.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// FindByID retrieves one of the user's accounts
func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID, userID int64) (model.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// FindByName looks up one of the user's accounts by case-insensitive name
func (r *accountRepo) FindByName(ctx context.Context, name string, userID int64) (model.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE LOWER(name) = LOWER($1) AND user_id = $2`, name, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// Update writes the mutable account fields
func (r *accountRepo) Update(ctx context.Context, account model.Account) (model.Account, error) {
	query := `
		UPDATE accounts
		SET name = $3, balance = $4, type = $5, description = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.UserID, account.Name, account.Balance,
		nullAccountType(account.Type), nullString(account.Description),
	).Scan(&account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.Account{}, ErrDuplicate
		}
		return model.Account{}, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// Delete removes one of the user's accounts
func (r *accountRepo) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
