// Package account implements owner-scoped money accounts.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/model"
	"github.com/ledgerly/server/internal/repo"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrDuplicateName = errors.New("account name already exists")
)

// CreateInput carries the fields of a new account.
type CreateInput struct {
	Name        string
	Balance     float64
	Type        *model.AccountType
	Description *string
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Balance     *float64
	Type        *model.AccountType
	Description *string
}

// Service manages the accounts of the authenticated user. Every call is scoped by userID.
type Service struct {
	accounts repo.AccountRepo
}

// NewService creates a new account service
func NewService(accounts repo.AccountRepo) *Service {
	return &Service{accounts: accounts}
}

func (s *Service) ensureNameFree(ctx context.Context, name string, userID int64, self uuid.UUID) error {
	existing, err := s.accounts.FindByName(ctx, name, userID)
	switch {
	case err == nil && existing.ID != self:
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	case err == nil, errors.Is(err, repo.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check account name: %w", err)
	}
}

// Create adds an account for userID.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (model.Account, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.ensureNameFree(ctx, name, userID, uuid.Nil); err != nil {
		return model.Account{}, err
	}

	account, err := s.accounts.Create(ctx, model.Account{
		UserID:      userID,
		Name:        name,
		Balance:     in.Balance,
		Type:        in.Type,
		Description: in.Description,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Account{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		return model.Account{}, err
	}
	return account, nil
}

// List returns the user's accounts, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]model.Account, error) {
	return s.accounts.ListByUser(ctx, userID)
}

// Get returns one of the user's accounts.
func (s *Service) Get(ctx context.Context, userID int64, id uuid.UUID) (model.Account, error) {
	account, err := s.accounts.FindByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, err
	}
	return account, nil
}

// Update merges in into one of the user's accounts.
func (s *Service) Update(ctx context.Context, userID int64, id uuid.UUID, in UpdateInput) (model.Account, error) {
	account, err := s.Get(ctx, userID, id)
	if err != nil {
		return model.Account{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if !strings.EqualFold(name, account.Name) {
			if err := s.ensureNameFree(ctx, name, userID, id); err != nil {
				return model.Account{}, err
			}
		}
		account.Name = name
	}
	if in.Balance != nil {
		account.Balance = *in.Balance
	}
	if in.Type != nil {
		account.Type = in.Type
	}
	if in.Description != nil {
		account.Description = in.Description
	}

	account, err = s.accounts.Update(ctx, account)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return model.Account{}, ErrNotFound
		case errors.Is(err, repo.ErrDuplicate):
			return model.Account{}, fmt.Errorf("%w: %q", ErrDuplicateName, account.Name)
		}
		return model.Account{}, err
	}
	return account, nil
}

// Delete removes one of the user's accounts.
func (s *Service) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	if err := s.accounts.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
