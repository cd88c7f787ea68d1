package repository

import (
	"context"
	"testing"
	"time"

	"pos-inventory/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the full schema and
// returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping repository test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func exec(t *testing.T, pool *pgxpool.Pool, query string, args ...any) {
	t.Helper()
	_, err := pool.Exec(context.Background(), query, args...)
	require.NoError(t, err)
}

// seedCafe inserts a small café catalog:
//
//	1 Coffee beans (gram), 2 Milk (millilitre), 3 Sugar (gram)
//	10 Espresso shot, tracked in shots, recipe 18 g beans
//	11 Double shot, untracked, recipe 2 shots
//	12 Latte, untracked, recipe 1 double shot + 200 ml milk + 1 teaspoon sugar
//	13 Muffin, untracked, empty recipe
func seedCafe(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	exec(t, pool, `
		INSERT INTO ingredients (id, name, stock_level, stock_unit) VALUES
			(1, 'Coffee beans', 1000, 'gram'),
			(2, 'Milk', 5000, 'millilitre'),
			(3, 'Sugar', 500, 'gram')
	`)
	exec(t, pool, `
		INSERT INTO products (id, name, price, categories, is_for_sale, stock_level, stock_unit) VALUES
			(10, 'Espresso shot', 1.50, '{preparations}', FALSE, 20, 'shot'),
			(11, 'Double shot', 2.50, '{coffee}', TRUE, NULL, NULL),
			(12, 'Latte', 4.50, '{coffee,milk}', TRUE, NULL, NULL),
			(13, 'Muffin', 3.00, '{bakery}', TRUE, NULL, NULL)
	`)
	exec(t, pool, `
		INSERT INTO recipe_items (product_id, position, ingredient_id, sub_product_id, quantity, unit) VALUES
			(10, 0, 1, NULL, 18, 'gram'),
			(11, 0, NULL, 10, 2, 'shot'),
			(12, 0, NULL, 11, 1, 'unit'),
			(12, 1, 2, NULL, 200, 'millilitre'),
			(12, 2, 3, NULL, 1, 'teaspoon')
	`)
	exec(t, pool, `
		INSERT INTO unit_conversions (from_unit, to_unit, factor, ingredient_id) VALUES
			('kilogram', 'gram', 1000, NULL),
			('litre', 'millilitre', 1000, NULL),
			('teaspoon', 'gram', 4.2, 3)
	`)
}
