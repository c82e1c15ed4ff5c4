package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
)

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository(time.Hour)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	missing, err := repo.Load(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	session := &entity.CheckoutSession{
		ID:             "sess-1",
		OrderReference: "order-123456",
		CartItems: []entity.CartItem{
			{Name: "Lekeland", Price: decimal.RequireFromString("150"), Quantity: 2},
		},
	}
	require.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "order-123456", loaded.OrderReference)
	assert.True(t, loaded.CartItems[0].Price.Equal(decimal.NewFromInt(150)))

	loaded.OrderReference = "changed"
	again, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "order-123456", again.OrderReference, "load must not alias stored state")

	now = now.Add(2 * time.Hour)
	expired, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestMemoryRefundLedgerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRefundLedgerRepository()

	ledger, err := repo.Load(ctx, "admin")
	require.NoError(t, err)
	assert.Empty(t, ledger.Items)

	ledger.AddItem("order-1", "Lekeland", 1)
	ledger.MarkOrder("order-2")
	require.NoError(t, repo.Save(ctx, "admin", ledger))

	loaded, err := repo.Load(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Refunded("order-1", "Lekeland"))
	assert.True(t, loaded.Orders["order-2"])
}
