package auth

import (
	"context"
	"errors"

	"github.com/ledgerly/server/internal/model"
	"github.com/ledgerly/server/internal/repo"
)

// UserUpdate holds the profile fields an admin may change. Nil fields are left as is.
type UserUpdate struct {
	Name       *string
	Email      *string
	Role       *model.Role
	IsVerified *bool
}

// GetUser returns the identity with the given id.
func (s *AuthService) GetUser(ctx context.Context, id int64) (model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, internal("find user", err)
	}
	return user, nil
}

// ListUsers returns every identity.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internal("list users", err)
	}
	return users, nil
}

// UpdateUser applies a profile update. Credentials are never touched here.
func (s *AuthService) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Email != nil {
		user.Email = NormalizeEmail(*upd.Email)
	}
	if upd.Role != nil {
		user.Role = *upd.Role
	}
	if upd.IsVerified != nil {
		user.IsVerified = *upd.IsVerified
	}

	user, err = s.users.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return model.User{}, ErrNotFound
		case errors.Is(err, repo.ErrDuplicate):
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, internal("update user", err)
	}
	return user, nil
}

// DeleteUser removes an identity. Its accounts and budgets go with it.
func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return internal("delete user", err)
	}
	return nil
}
