package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema creates every table the inventory engine reads or writes.
// It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS ingredients (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	stock_level NUMERIC NOT NULL DEFAULT 0,
	stock_unit  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	price       NUMERIC(10, 2) NOT NULL DEFAULT 0 CHECK (price >= 0),
	categories  TEXT[] NOT NULL DEFAULT '{}',
	is_for_sale BOOLEAN NOT NULL DEFAULT TRUE,
	stock_level NUMERIC,
	stock_unit  TEXT,
	CONSTRAINT products_stock_unit_check CHECK ((stock_level IS NULL) = (stock_unit IS NULL))
);

CREATE TABLE IF NOT EXISTS recipe_items (
	id             BIGSERIAL PRIMARY KEY,
	product_id     BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	position       INT NOT NULL DEFAULT 0,
	ingredient_id  BIGINT REFERENCES ingredients(id),
	sub_product_id BIGINT REFERENCES products(id),
	quantity       NUMERIC NOT NULL CHECK (quantity > 0),
	unit           TEXT NOT NULL,
	CONSTRAINT recipe_items_one_reference CHECK ((ingredient_id IS NULL) <> (sub_product_id IS NULL)),
	CONSTRAINT recipe_items_no_self_reference CHECK (sub_product_id IS NULL OR sub_product_id <> product_id)
);
CREATE INDEX IF NOT EXISTS idx_recipe_items_product ON recipe_items(product_id, position);

CREATE TABLE IF NOT EXISTS unit_conversions (
	id            BIGSERIAL PRIMARY KEY,
	from_unit     TEXT NOT NULL,
	to_unit       TEXT NOT NULL,
	factor        NUMERIC NOT NULL CHECK (factor > 0),
	ingredient_id BIGINT REFERENCES ingredients(id) ON DELETE CASCADE,
	CONSTRAINT unit_conversions_unique UNIQUE NULLS NOT DISTINCT (from_unit, to_unit, ingredient_id)
);

CREATE TABLE IF NOT EXISTS orders (
	id         UUID PRIMARY KEY,
	total      NUMERIC(12, 2) NOT NULL CHECK (total >= 0),
	cashier_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
	id         UUID PRIMARY KEY,
	order_id   UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id BIGINT NOT NULL REFERENCES products(id),
	quantity   INT NOT NULL CHECK (quantity > 0),
	price      NUMERIC(10, 2) NOT NULL CHECK (price >= 0)
);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

CREATE TABLE IF NOT EXISTS purchase_log (
	id                 BIGSERIAL PRIMARY KEY,
	ingredient_id      BIGINT NOT NULL REFERENCES ingredients(id),
	quantity_purchased NUMERIC NOT NULL CHECK (quantity_purchased > 0),
	unit               TEXT NOT NULL,
	total_cost         NUMERIC(12, 2) NOT NULL CHECK (total_cost >= 0),
	user_id            TEXT NOT NULL,
	supplier           TEXT,
	notes              TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_purchase_log_ingredient ON purchase_log(ingredient_id, created_at DESC);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		logger.Error().Err(err).Msg("failed to apply database schema")
		return fmt.Errorf("failed to apply database schema: %w", err)
	}

	logger.Info().Msg("database schema applied")
	return nil
}
