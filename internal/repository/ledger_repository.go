package repository

import (
	"context"
	"fmt"

	"pos-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ledgerRepository implements LedgerRepository with row locks.
// FOR NO KEY UPDATE is used so that inserts referencing the locked rows
// (order items, purchase log entries) do not block on them.
type ledgerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLedgerRepository creates a new PostgreSQL-backed inventory ledger.
func NewLedgerRepository(pool *pgxpool.Pool, logger zerolog.Logger) LedgerRepository {
	return &ledgerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "ledger").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *ledgerRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// LockIngredients locks the ingredient rows in ascending id order.
func (r *ledgerRepository) LockIngredients(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]model.Ingredient, error) {
	locked := make(map[int64]model.Ingredient, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	query := `
		SELECT id, name, stock_level, stock_unit
		FROM ingredients
		WHERE id = ANY($1)
		ORDER BY id
		FOR NO KEY UPDATE
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock ingredients")
		return nil, fmt.Errorf("failed to lock ingredients: %w", TranslateConflict(err))
	}
	defer rows.Close()

	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.StockLevel, &ing.StockUnit); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan ingredient row")
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		locked[ing.ID] = ing
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating locked ingredient rows")
		return nil, fmt.Errorf("error iterating ingredients: %w", TranslateConflict(err))
	}

	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			r.logger.Warn().Int64("ingredient_id", id).Msg("ingredient not found")
			return nil, model.ErrIngredientNotFound
		}
	}

	return locked, nil
}

// LockProducts locks stock-tracked product rows in ascending id order.
func (r *ledgerRepository) LockProducts(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]model.StockedProduct, error) {
	locked := make(map[int64]model.StockedProduct, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	query := `
		SELECT id, name, stock_level, stock_unit
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR NO KEY UPDATE
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock products")
		return nil, fmt.Errorf("failed to lock products: %w", TranslateConflict(err))
	}
	defer rows.Close()

	untracked := false
	for rows.Next() {
		var (
			p     model.StockedProduct
			level decimal.NullDecimal
			unit  *string
		)
		if err := rows.Scan(&p.ID, &p.Name, &level, &unit); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if !level.Valid || unit == nil {
			r.logger.Warn().Int64("product_id", p.ID).Msg("product is not stock-tracked")
			untracked = true
			continue
		}
		p.StockLevel = level.Decimal
		p.StockUnit = *unit
		locked[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating locked product rows")
		return nil, fmt.Errorf("error iterating products: %w", TranslateConflict(err))
	}

	if untracked {
		return nil, model.ErrProductNotTracked
	}

	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			r.logger.Warn().Int64("product_id", id).Msg("product not found")
			return nil, model.ErrProductNotFound
		}
	}

	return locked, nil
}

// AdjustIngredientStock adds each delta to its ingredient's stock level.
func (r *ledgerRepository) AdjustIngredientStock(ctx context.Context, tx pgx.Tx, adjustments []model.StockAdjustment) error {
	return r.adjust(ctx, tx, "ingredients", adjustments)
}

// AdjustProductStock adds each delta to its product's stock level.
func (r *ledgerRepository) AdjustProductStock(ctx context.Context, tx pgx.Tx, adjustments []model.StockAdjustment) error {
	return r.adjust(ctx, tx, "products", adjustments)
}

// adjust applies the deltas in one batch. table is never user input.
func (r *ledgerRepository) adjust(ctx context.Context, tx pgx.Tx, table string, adjustments []model.StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	query := `UPDATE ` + table + ` SET stock_level = stock_level + $2 WHERE id = $1 AND stock_level IS NOT NULL`

	batch := &pgx.Batch{}
	for _, adj := range adjustments {
		batch.Queue(query, adj.ID, adj.Delta)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, adj := range adjustments {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("table", table).
				Int64("id", adj.ID).
				Str("delta", adj.Delta.String()).
				Msg("failed to adjust stock")
			return fmt.Errorf("failed to adjust %s stock: %w", table, TranslateConflict(err))
		}
		if tag.RowsAffected() == 0 {
			if table == "ingredients" {
				return model.ErrIngredientNotFound
			}
			return model.ErrProductNotTracked
		}
	}

	r.logger.Debug().
		Str("table", table).
		Int("count", len(adjustments)).
		Msg("stock adjusted")

	return nil
}
