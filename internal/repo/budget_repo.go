package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/model"
)

// BudgetRepo defines owner-scoped budget persistence. Every method filters by userID.
type BudgetRepo interface {
	Create(ctx context.Context, budget model.Budget) (model.Budget, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Budget, error)
	FindByID(ctx context.Context, id uuid.UUID, userID int64) (model.Budget, error)
	FindByName(ctx context.Context, name string, userID int64) (model.Budget, error)
	Update(ctx context.Context, budget model.Budget) (model.Budget, error)
	Delete(ctx context.Context, id uuid.UUID, userID int64) error
}

type budgetRepo struct {
	db *sql.DB
}

// NewBudgetRepo creates a new BudgetRepo instance
func NewBudgetRepo(db *sql.DB) BudgetRepo {
	return &budgetRepo{db: db}
}

const budgetColumns = `id, user_id, name, amount, remaining_amount, start_date, end_date, category_id,
	is_recurring, recurrence_type, reset_day, next_reset_date, created_at, updated_at`

func scanBudget(row rowScanner) (model.Budget, error) {
	var b model.Budget
	var endDate, nextResetDate sql.NullTime
	var categoryID sql.NullString
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.Amount,
		&b.RemainingAmount,
		&b.StartDate,
		&endDate,
		&categoryID,
		&b.IsRecurring,
		&b.RecurrenceType,
		&b.ResetDay,
		&nextResetDate,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return model.Budget{}, err
	}
	if endDate.Valid {
		b.EndDate = &endDate.Time
	}
	if categoryID.Valid {
		b.CategoryID = &categoryID.String
	}
	if nextResetDate.Valid {
		b.NextResetDate = &nextResetDate.Time
	}
	return b, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create inserts a new budget for its owner
func (r *budgetRepo) Create(ctx context.Context, b model.Budget) (model.Budget, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	query := `
		INSERT INTO budgets (id, user_id, name, amount, remaining_amount, start_date, end_date, category_id,
			is_recurring, recurrence_type, reset_day, next_reset_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		b.ID, b.UserID, b.Name, b.Amount, b.RemainingAmount, b.StartDate, nullTime(b.EndDate),
		nullString(b.CategoryID), b.IsRecurring, b.RecurrenceType, b.ResetDay, nullTime(b.NextResetDate),
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Budget{}, ErrDuplicate
		}
		return model.Budget{}, fmt.Errorf("failed to create budget: %w", err)
	}
	return b, nil
}

// ListByUser returns the user's budgets, newest first
func (r *budgetRepo) ListByUser(ctx context.Context, userID int64) ([]model.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]model.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// FindByID retrieves one of the user's budgets
func (r *budgetRepo) FindByID(ctx context.Context, id uuid.UUID, userID int64) (model.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Budget{}, ErrNotFound
		}
		return model.Budget{}, fmt.Errorf("failed to query budget: %w", err)
	}
	return b, nil
}

// FindByName looks up one of the user's budgets by case-insensitive name
func (r *budgetRepo) FindByName(ctx context.Context, name string, userID int64) (model.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE LOWER(name) = LOWER($1) AND user_id = $2`, name, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Budget{}, ErrNotFound
		}
		return model.Budget{}, fmt.Errorf("failed to query budget: %w", err)
	}
	return b, nil
}

// Update writes the mutable budget fields
func (r *budgetRepo) Update(ctx context.Context, b model.Budget) (model.Budget, error) {
	query := `
		UPDATE budgets
		SET name = $3, amount = $4, remaining_amount = $5, start_date = $6, end_date = $7, category_id = $8,
			is_recurring = $9, recurrence_type = $10, reset_day = $11, next_reset_date = $12, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		b.ID, b.UserID, b.Name, b.Amount, b.RemainingAmount, b.StartDate, nullTime(b.EndDate),
		nullString(b.CategoryID), b.IsRecurring, b.RecurrenceType, b.ResetDay, nullTime(b.NextResetDate),
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Budget{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.Budget{}, ErrDuplicate
		}
		return model.Budget{}, fmt.Errorf("failed to update budget: %w", err)
	}
	return b, nil
}

// Delete removes one of the user's budgets
func (r *budgetRepo) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
