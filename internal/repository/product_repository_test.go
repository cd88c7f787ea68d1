package repository

import (
	"context"
	"testing"

	"pos-inventory/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_GetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCafe(t, pool)

	repo := NewProductRepository(pool, zerolog.Nop())

	tests := []struct {
		name     string
		limit    int
		offset   int
		expected int
	}{
		{name: "Get all products", limit: 10, offset: 0, expected: 4},
		{name: "Get first page", limit: 2, offset: 0, expected: 2},
		{name: "Get last page", limit: 3, offset: 3, expected: 1},
		{name: "Offset beyond results", limit: 10, offset: 10, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.GetAll(context.Background(), tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Len(t, products, tt.expected)

			for i := 1; i < len(products); i++ {
				assert.LessOrEqual(t, products[i-1].Name, products[i].Name)
			}
		})
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCafe(t, pool)

	repo := NewProductRepository(pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("Untracked product with ordered recipe", func(t *testing.T) {
		latte, err := repo.GetByID(ctx, 12)
		require.NoError(t, err)
		require.NotNil(t, latte)

		assert.Equal(t, "Latte", latte.Name)
		assert.True(t, dec("4.50").Equal(latte.Price))
		assert.Equal(t, []string{"coffee", "milk"}, latte.Categories)
		assert.False(t, latte.IsTracked())
		assert.Nil(t, latte.StockUnit)

		require.Len(t, latte.Recipe, 3)
		sub, ok := latte.Recipe[0].(model.SubProductComponent)
		require.True(t, ok)
		assert.Equal(t, int64(11), sub.ProductID)

		milk, ok := latte.Recipe[1].(model.IngredientComponent)
		require.True(t, ok)
		assert.Equal(t, int64(2), milk.IngredientID)
		assert.True(t, dec("200").Equal(milk.Quantity))
		assert.Equal(t, "millilitre", milk.Unit)

		sugar, ok := latte.Recipe[2].(model.IngredientComponent)
		require.True(t, ok)
		assert.Equal(t, "teaspoon", sugar.Unit)
	})

	t.Run("Tracked preparation", func(t *testing.T) {
		shot, err := repo.GetByID(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, shot)

		require.True(t, shot.IsTracked())
		assert.True(t, dec("20").Equal(*shot.StockLevel))
		assert.Equal(t, "shot", *shot.StockUnit)
		assert.False(t, shot.IsForSale)
	})

	t.Run("Empty recipe", func(t *testing.T) {
		muffin, err := repo.GetByID(ctx, 13)
		require.NoError(t, err)
		require.NotNil(t, muffin)
		assert.Empty(t, muffin.Recipe)
	})

	t.Run("Product does not exist", func(t *testing.T) {
		product, err := repo.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, product)
	})
}

func TestProductRepository_GetByIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCafe(t, pool)

	repo := NewProductRepository(pool, zerolog.Nop())

	tests := []struct {
		name     string
		ids      []int64
		expected int
	}{
		{name: "Get multiple products", ids: []int64{10, 11, 12}, expected: 3},
		{name: "Some products do not exist", ids: []int64{10, 999}, expected: 1},
		{name: "No products exist", ids: []int64{998, 999}, expected: 0},
		{name: "Empty ID list", ids: []int64{}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.GetByIDs(context.Background(), tt.ids)

			require.NoError(t, err)
			assert.Len(t, products, tt.expected)
		})
	}

	products, err := repo.GetByIDs(context.Background(), []int64{11, 12})
	require.NoError(t, err)
	for _, p := range products {
		assert.NotEmpty(t, p.Recipe, "recipe of %s should be loaded", p.Name)
	}
}

func TestProductRepository_ValidateProductsExist(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCafe(t, pool)

	repo := NewProductRepository(pool, zerolog.Nop())

	tests := []struct {
		name      string
		ids       []int64
		expectErr bool
	}{
		{name: "All products exist", ids: []int64{10, 11, 12, 13}},
		{name: "Duplicate IDs", ids: []int64{12, 12, 13}},
		{name: "Some products do not exist", ids: []int64{12, 999}, expectErr: true},
		{name: "Empty ID list", ids: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.ValidateProductsExist(context.Background(), tt.ids)

			if tt.expectErr {
				assert.ErrorIs(t, err, model.ErrProductNotFound)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestProductRepository_ErrorPaths(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())

	// Close the pool to simulate database errors
	pool.Close()
	ctx := context.Background()

	products, err := repo.GetAll(ctx, 10, 0)
	require.Error(t, err)
	assert.Nil(t, products)

	product, err := repo.GetByID(ctx, 1)
	require.Error(t, err)
	assert.Nil(t, product)

	products, err = repo.GetByIDs(ctx, []int64{1})
	require.Error(t, err)
	assert.Nil(t, products)

	assert.Error(t, repo.ValidateProductsExist(ctx, []int64{1}))
}

func TestIngredientRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCafe(t, pool)

	repo := NewIngredientRepository(pool, zerolog.Nop())
	ctx := context.Background()

	ingredients, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, ingredients, 3)
	assert.Equal(t, "Coffee beans", ingredients[0].Name)
	assert.Equal(t, "Sugar", ingredients[2].Name)

	sugar, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, sugar)
	assert.True(t, dec("500").Equal(sugar.StockLevel))
	assert.Equal(t, "gram", sugar.StockUnit)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
