package account

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/model"
	"github.com/ledgerly/server/internal/repo/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateAndList(t *testing.T) {
	svc := NewService(repotest.NewAccounts())
	ctx := context.Background()
	bank := model.AccountBank

	first, err := svc.Create(ctx, 1, CreateInput{Name: " Checking ", Balance: 100, Type: &bank})
	require.NoError(t, err)
	assert.Equal(t, "Checking", first.Name)
	assert.NotEqual(t, uuid.Nil, first.ID)

	second, err := svc.Create(ctx, 1, CreateInput{Name: "Cash"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 2, CreateInput{Name: "Checking"})
	require.NoError(t, err, "names are unique per user only")

	accounts, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, second.ID, accounts[0].ID, "newest first")
}

func TestService_DuplicateNameIsCaseInsensitive(t *testing.T) {
	svc := NewService(repotest.NewAccounts())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{Name: "Savings"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, CreateInput{Name: "SAVINGS"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestService_OwnershipIsEnforced(t *testing.T) {
	svc := NewService(repotest.NewAccounts())
	ctx := context.Background()

	mine, err := svc.Create(ctx, 1, CreateInput{Name: "Wallet"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	name := "Stolen"
	_, err = svc.Update(ctx, 2, mine.ID, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, 2, mine.ID), ErrNotFound)

	got, err := svc.Get(ctx, 1, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wallet", got.Name)
}

func TestService_Update(t *testing.T) {
	svc := NewService(repotest.NewAccounts())
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, CreateInput{Name: "Main"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, CreateInput{Name: "Other"})
	require.NoError(t, err)

	t.Run("rename to own name in other case", func(t *testing.T) {
		name := "MAIN"
		updated, err := svc.Update(ctx, 1, a.ID, UpdateInput{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "MAIN", updated.Name)
	})

	t.Run("rename onto sibling", func(t *testing.T) {
		name := "other"
		_, err := svc.Update(ctx, 1, a.ID, UpdateInput{Name: &name})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		balance := 55.25
		desc := "day to day"
		updated, err := svc.Update(ctx, 1, a.ID, UpdateInput{Balance: &balance, Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, 55.25, updated.Balance)
		assert.Equal(t, "MAIN", updated.Name)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "day to day", *updated.Description)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, 1, a.ID))
		_, err := svc.Get(ctx, 1, a.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
