package service

import (
	"context"
	"errors"
	"fmt"

	"pos-inventory/internal/model"
	"pos-inventory/internal/recipe"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// retryOnConflict runs attempt until it succeeds, fails with an error other
// than model.ErrTransactionConflict, or has been retried retries times.
func retryOnConflict(ctx context.Context, logger zerolog.Logger, retries int, attempt func(n int) error) error {
	var err error
	for n := 0; n <= retries; n++ {
		if err = attempt(n); err == nil || !errors.Is(err, model.ErrTransactionConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return err
		}
		logger.Warn().Err(err).Int("attempt", n+1).Msg("transaction conflict, retrying")
	}
	return err
}

// rollback rolls tx back and logs failures. It is a no-op after Commit.
func rollback(ctx context.Context, logger zerolog.Logger, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}

// ingredientDeltas converts every bucket of plan into the stock unit of its
// locked ingredient and sums the result per ingredient. sign is -1 to
// consume and 1 to add. Adjustments are returned in ascending id order.
func ingredientDeltas(
	ctx context.Context,
	resolver UnitResolver,
	plan *recipe.Plan,
	locked map[int64]model.Ingredient,
	sign int64,
) ([]model.StockAdjustment, error) {
	totals := make(map[int64]decimal.Decimal, len(locked))
	for _, key := range plan.IngredientKeys() {
		ingredient, ok := locked[key.IngredientID]
		if !ok {
			return nil, model.ErrIngredientNotFound
		}

		id := key.IngredientID
		factor, err := resolver.Resolve(ctx, key.Unit, ingredient.StockUnit, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s of %s: %w", key.Unit, ingredient.Name, err)
		}

		totals[id] = totals[id].Add(plan.Ingredients[key].Mul(factor))
	}

	ids := plan.IngredientIDs()
	adjustments := make([]model.StockAdjustment, 0, len(ids))
	for _, id := range ids {
		adjustments = append(adjustments, model.StockAdjustment{
			ID:    id,
			Delta: totals[id].Mul(decimal.NewFromInt(sign)),
		})
	}
	return adjustments, nil
}

// productDeltas returns the sub-product consumption of plan in ascending id order.
func productDeltas(plan *recipe.Plan) []model.StockAdjustment {
	ids := plan.SubProductIDs()
	adjustments := make([]model.StockAdjustment, 0, len(ids))
	for _, id := range ids {
		adjustments = append(adjustments, model.StockAdjustment{
			ID:    id,
			Delta: plan.SubProducts[id].Neg(),
		})
	}
	return adjustments
}
