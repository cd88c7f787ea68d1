package repository

import (
	"context"
	"testing"
	"time"

	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_BeginTx(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.NoError(t, tx.Rollback(ctx))
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCafe(t, pool)

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := &model.Order{
		ID:        uuid.New(),
		Total:     dec("12.00"),
		CashierID: "cashier-7",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	items := []model.OrderItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: 12, Quantity: 2, Price: dec("4.50")},
		{ID: uuid.New(), OrderID: order.ID, ProductID: 13, Quantity: 1, Price: dec("3.00")},
	}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))

	stored, storedItems, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, order.ID, stored.ID)
	assert.True(t, order.Total.Equal(stored.Total))
	assert.Equal(t, "cashier-7", stored.CashierID)
	assert.True(t, order.CreatedAt.Equal(stored.CreatedAt))

	require.Len(t, storedItems, 2)
	assert.Equal(t, int64(12), storedItems[0].ProductID)
	assert.Equal(t, 2, storedItems[0].Quantity)
	assert.True(t, dec("4.50").Equal(storedItems[0].Price))
	assert.Equal(t, int64(13), storedItems[1].ProductID)
}

func TestOrderRepository_RollbackLeavesNothing(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCafe(t, pool)

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := &model.Order{ID: uuid.New(), Total: dec("4.50"), CashierID: "cashier-1", CreatedAt: time.Now()}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, []model.OrderItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: 12, Quantity: 1, Price: dec("4.50")},
	}))
	require.NoError(t, tx.Rollback(ctx))

	stored, items, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Nil(t, items)
}

func TestOrderRepository_CreateOrderItems(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCafe(t, pool)

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("Empty items", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		assert.NoError(t, repo.CreateOrderItems(ctx, tx, nil))
	})

	t.Run("Unknown product", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		order := &model.Order{ID: uuid.New(), Total: dec("1"), CashierID: "c", CreatedAt: time.Now()}
		require.NoError(t, repo.CreateOrder(ctx, tx, order))

		err = repo.CreateOrderItems(ctx, tx, []model.OrderItem{
			{ID: uuid.New(), OrderID: order.ID, ProductID: 999, Quantity: 1, Price: dec("1")},
		})
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())

	order, items, err := repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Nil(t, items)
}

func TestPurchaseRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCafe(t, pool)

	purchases := NewPurchaseRepository(pool, zerolog.Nop())
	ctx := context.Background()

	supplier := "Bean Brothers"
	first := &model.PurchaseLogEntry{
		IngredientID:      1,
		QuantityPurchased: dec("2"),
		Unit:              "kilogram",
		TotalCost:         dec("38.00"),
		UserID:            "manager-1",
		Supplier:          &supplier,
		CreatedAt:         time.Date(2020, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	second := &model.PurchaseLogEntry{
		IngredientID:      1,
		QuantityPurchased: dec("500"),
		Unit:              "gram",
		TotalCost:         dec("10.00"),
		UserID:            "manager-1",
	}

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, purchases.CreatePurchase(ctx, tx, first))
	require.NoError(t, purchases.CreatePurchase(ctx, tx, second))
	require.NoError(t, tx.Commit(ctx))

	assert.NotZero(t, first.ID)
	assert.True(t, first.CreatedAt.Equal(time.Date(2020, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.False(t, second.CreatedAt.IsZero())

	entries, err := purchases.ListByIngredient(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	require.NotNil(t, entries[1].Supplier)
	assert.Equal(t, supplier, *entries[1].Supplier)
	assert.Nil(t, entries[1].Notes)

	t.Run("Unknown ingredient", func(t *testing.T) {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		err = purchases.CreatePurchase(ctx, tx, &model.PurchaseLogEntry{
			IngredientID: 999, QuantityPurchased: dec("1"), Unit: "gram", TotalCost: dec("0"), UserID: "u",
		})
		assert.ErrorIs(t, err, model.ErrIngredientNotFound)
	})
}
