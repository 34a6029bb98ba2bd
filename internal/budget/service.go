// Package budget implements owner-scoped spending budgets.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/model"
	"github.com/ledgerly/server/internal/repo"
)

var (
	ErrNotFound      = errors.New("budget not found")
	ErrDuplicateName = errors.New("budget name already exists")
)

const (
	defaultRecurrence = "monthly"
	defaultResetDay   = 1
)

// RecurrenceTypes lists the accepted recurrence values.
var RecurrenceTypes = []string{"monthly", "weekly", "yearly"}

// CreateInput carries the fields of a new budget. RemainingAmount starts equal to Amount.
type CreateInput struct {
	Name           string
	Amount         float64
	StartDate      time.Time
	EndDate        *time.Time
	CategoryID     *string
	IsRecurring    bool
	RecurrenceType string
	ResetDay       int
	NextResetDate  *time.Time
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name            *string
	Amount          *float64
	RemainingAmount *float64
	StartDate       *time.Time
	EndDate         *time.Time
	CategoryID      *string
	IsRecurring     *bool
	RecurrenceType  *string
	ResetDay        *int
	NextResetDate   *time.Time
}

// Service manages the budgets of the authenticated user.
type Service struct {
	budgets repo.BudgetRepo
}

// NewService creates a new budget service
func NewService(budgets repo.BudgetRepo) *Service {
	return &Service{budgets: budgets}
}

func (s *Service) ensureNameFree(ctx context.Context, name string, userID int64, self uuid.UUID) error {
	existing, err := s.budgets.FindByName(ctx, name, userID)
	switch {
	case err == nil && existing.ID != self:
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	case err == nil, errors.Is(err, repo.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check budget name: %w", err)
	}
}

// Create adds a budget for userID.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (model.Budget, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.ensureNameFree(ctx, name, userID, uuid.Nil); err != nil {
		return model.Budget{}, err
	}

	b := model.Budget{
		UserID:          userID,
		Name:            name,
		Amount:          in.Amount,
		RemainingAmount: in.Amount,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		CategoryID:      in.CategoryID,
		IsRecurring:     in.IsRecurring,
		RecurrenceType:  in.RecurrenceType,
		ResetDay:        in.ResetDay,
		NextResetDate:   in.NextResetDate,
	}
	if b.RecurrenceType == "" {
		b.RecurrenceType = defaultRecurrence
	}
	if b.ResetDay == 0 {
		b.ResetDay = defaultResetDay
	}

	b, err := s.budgets.Create(ctx, b)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Budget{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		return model.Budget{}, err
	}
	return b, nil
}

// List returns the user's budgets, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]model.Budget, error) {
	return s.budgets.ListByUser(ctx, userID)
}

// Get returns one of the user's budgets.
func (s *Service) Get(ctx context.Context, userID int64, id uuid.UUID) (model.Budget, error) {
	b, err := s.budgets.FindByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Budget{}, ErrNotFound
		}
		return model.Budget{}, err
	}
	return b, nil
}

// Update merges in into one of the user's budgets.
func (s *Service) Update(ctx context.Context, userID int64, id uuid.UUID, in UpdateInput) (model.Budget, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return model.Budget{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if !strings.EqualFold(name, b.Name) {
			if err := s.ensureNameFree(ctx, name, userID, id); err != nil {
				return model.Budget{}, err
			}
		}
		b.Name = name
	}
	if in.Amount != nil {
		b.Amount = *in.Amount
	}
	if in.RemainingAmount != nil {
		b.RemainingAmount = *in.RemainingAmount
	}
	if in.StartDate != nil {
		b.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		b.EndDate = in.EndDate
	}
	if in.CategoryID != nil {
		b.CategoryID = in.CategoryID
	}
	if in.IsRecurring != nil {
		b.IsRecurring = *in.IsRecurring
	}
	if in.RecurrenceType != nil {
		b.RecurrenceType = *in.RecurrenceType
	}
	if in.ResetDay != nil {
		b.ResetDay = *in.ResetDay
	}
	if in.NextResetDate != nil {
		b.NextResetDate = in.NextResetDate
	}

	b, err = s.budgets.Update(ctx, b)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return model.Budget{}, ErrNotFound
		case errors.Is(err, repo.ErrDuplicate):
			return model.Budget{}, fmt.Errorf("%w: %q", ErrDuplicateName, b.Name)
		}
		return model.Budget{}, err
	}
	return b, nil
}

// Delete removes one of the user's budgets.
func (s *Service) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	if err := s.budgets.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
