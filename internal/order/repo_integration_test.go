//go:build integration

package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/db/dbtest"
	"github.com/MikeMC777/storefront/internal/order"
)

func TestPGRepo_CreateAndUpdateStatus(t *testing.T) {
	repo := order.NewPGRepo(dbtest.Postgres(t))
	ctx := context.Background()

	o := &order.Order{
		ID:     "o-1",
		UserID: "u-1",
		Items: []order.Item{{
			ProductID: "p-1", Name: "Mug", Price: decimal.NewFromInt(10),
			Quantity: 2, ItemTotal: decimal.NewFromInt(20),
		}},
		TotalAmount:   decimal.NewFromInt(20),
		Address:       "1 Main St",
		PaymentMethod: order.MethodCOD,
		Status:        order.StatusPlaced,
	}
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.GetByID(ctx, "o-1")
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(20)))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)

	now := time.Now()
	got.Status = order.StatusCancelled
	got.CancelledAt = &now
	require.NoError(t, repo.UpdateStatus(ctx, got, order.StatusPlaced))

	// a second writer still holding the old status loses
	assert.ErrorIs(t, repo.UpdateStatus(ctx, got, order.StatusPlaced), order.ErrStale)

	mine, err := repo.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.StatusCancelled, mine[0].Status)
	assert.NotNil(t, mine[0].CancelledAt)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, order.ErrNotFound)
}
