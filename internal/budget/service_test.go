package budget

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/repo/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func TestService_CreateDefaults(t *testing.T) {
	svc := NewService(repotest.NewBudgets())

	b, err := svc.Create(context.Background(), 1, CreateInput{Name: "Groceries", Amount: 400, StartDate: start})
	require.NoError(t, err)
	assert.Equal(t, 400.0, b.RemainingAmount)
	assert.Equal(t, "monthly", b.RecurrenceType)
	assert.Equal(t, 1, b.ResetDay)
	assert.False(t, b.IsRecurring)
}

func TestService_DuplicateName(t *testing.T) {
	svc := NewService(repotest.NewBudgets())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{Name: "Rent", Amount: 900, StartDate: start})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, CreateInput{Name: "rent", Amount: 10, StartDate: start})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Create(ctx, 2, CreateInput{Name: "rent", Amount: 10, StartDate: start})
	assert.NoError(t, err)
}

func TestService_UpdateAndDelete(t *testing.T) {
	svc := NewService(repotest.NewBudgets())
	ctx := context.Background()

	b, err := svc.Create(ctx, 1, CreateInput{Name: "Fun", Amount: 100, StartDate: start})
	require.NoError(t, err)

	remaining := 40.0
	recurrence := "weekly"
	updated, err := svc.Update(ctx, 1, b.ID, UpdateInput{RemainingAmount: &remaining, RecurrenceType: &recurrence})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.Amount)
	assert.Equal(t, 40.0, updated.RemainingAmount)
	assert.Equal(t, "weekly", updated.RecurrenceType)

	_, err = svc.Update(ctx, 2, b.ID, UpdateInput{RemainingAmount: &remaining})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, 1, uuid.New()), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, 1, b.ID))

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}
