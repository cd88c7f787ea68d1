package repository

import (
	"context"
	"errors"
	"fmt"

	"pos-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type ingredientRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewIngredientRepository creates a new PostgreSQL-backed ingredient repository.
func NewIngredientRepository(pool *pgxpool.Pool, logger zerolog.Logger) IngredientRepository {
	return &ingredientRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "ingredient").Logger(),
	}
}

func (r *ingredientRepository) GetAll(ctx context.Context) ([]model.Ingredient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, stock_level, stock_unit
		FROM ingredients
		ORDER BY name
	`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query ingredients")
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []model.Ingredient{}
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.StockLevel, &ing.StockUnit); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan ingredient row")
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating ingredient rows")
		return nil, fmt.Errorf("error iterating ingredients: %w", err)
	}

	return ingredients, nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id int64) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, stock_level, stock_unit
		FROM ingredients
		WHERE id = $1
	`, id).Scan(&ing.ID, &ing.Name, &ing.StockLevel, &ing.StockUnit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("ingredient_id", id).Msg("failed to query ingredient")
		return nil, fmt.Errorf("failed to query ingredient: %w", err)
	}

	return &ing, nil
}
