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

// conversionRepository implements ConversionRepository using PostgreSQL.
type conversionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewConversionRepository creates a new PostgreSQL-backed conversion rule repository.
func NewConversionRepository(pool *pgxpool.Pool, logger zerolog.Logger) ConversionRepository {
	return &conversionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "conversion").Logger(),
	}
}

const conversionSelect = `
	SELECT c.id, c.from_unit, c.to_unit, c.factor, c.ingredient_id, i.name
	FROM unit_conversions c
	LEFT JOIN ingredients i ON i.id = c.ingredient_id
`

// ListRules retrieves every rule ordered by id.
func (r *conversionRepository) ListRules(ctx context.Context) ([]model.ConversionRule, error) {
	rows, err := r.pool.Query(ctx, conversionSelect+` ORDER BY c.id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query conversion rules")
		return nil, fmt.Errorf("failed to query conversion rules: %w", err)
	}
	defer rows.Close()

	rules := []model.ConversionRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan conversion rule row")
			return nil, fmt.Errorf("failed to scan conversion rule: %w", err)
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating conversion rule rows")
		return nil, fmt.Errorf("error iterating conversion rules: %w", err)
	}

	return rules, nil
}

// GetByID retrieves one rule.
func (r *conversionRepository) GetByID(ctx context.Context, id int64) (*model.ConversionRule, error) {
	rule, err := scanRule(r.pool.QueryRow(ctx, conversionSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("conversion_id", id).Msg("failed to query conversion rule")
		return nil, fmt.Errorf("failed to query conversion rule: %w", err)
	}
	return rule, nil
}

// Create inserts a rule and sets its ID.
func (r *conversionRepository) Create(ctx context.Context, rule *model.ConversionRule) error {
	query := `
		INSERT INTO unit_conversions (from_unit, to_unit, factor, ingredient_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, rule.FromUnit, rule.ToUnit, rule.Factor, rule.IngredientID).Scan(&rule.ID)
	if err != nil {
		return r.writeError("create", rule, err)
	}

	r.logger.Info().
		Int64("conversion_id", rule.ID).
		Str("from_unit", rule.FromUnit).
		Str("to_unit", rule.ToUnit).
		Msg("conversion rule created")
	return nil
}

// Update replaces the units, factor and ingredient of an existing rule.
func (r *conversionRepository) Update(ctx context.Context, rule *model.ConversionRule) error {
	query := `
		UPDATE unit_conversions
		SET from_unit = $2, to_unit = $3, factor = $4, ingredient_id = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, rule.ID, rule.FromUnit, rule.ToUnit, rule.Factor, rule.IngredientID)
	if err != nil {
		return r.writeError("update", rule, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrConversionNotFound
	}

	r.logger.Info().Int64("conversion_id", rule.ID).Msg("conversion rule updated")
	return nil
}

// Delete removes a rule.
func (r *conversionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM unit_conversions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("conversion_id", id).Msg("failed to delete conversion rule")
		return fmt.Errorf("failed to delete conversion rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrConversionNotFound
	}

	r.logger.Info().Int64("conversion_id", id).Msg("conversion rule deleted")
	return nil
}

func (r *conversionRepository) writeError(op string, rule *model.ConversionRule, err error) error {
	switch {
	case isUniqueViolation(err):
		return model.ErrDuplicateConversion
	case isForeignKeyViolation(err):
		return model.ErrIngredientNotFound
	}

	r.logger.Error().
		Err(err).
		Int64("conversion_id", rule.ID).
		Str("from_unit", rule.FromUnit).
		Str("to_unit", rule.ToUnit).
		Msgf("failed to %s conversion rule", op)
	return fmt.Errorf("failed to %s conversion rule: %w", op, err)
}

func scanRule(row pgx.Row) (*model.ConversionRule, error) {
	var rule model.ConversionRule
	if err := row.Scan(&rule.ID, &rule.FromUnit, &rule.ToUnit, &rule.Factor, &rule.IngredientID, &rule.IngredientName); err != nil {
		return nil, err
	}
	return &rule, nil
}
