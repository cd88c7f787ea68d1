package repository

import (
	"context"
	"fmt"
	"time"

	"pos-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type purchaseRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPurchaseRepository creates a new PostgreSQL-backed purchase log.
func NewPurchaseRepository(pool *pgxpool.Pool, logger zerolog.Logger) PurchaseRepository {
	return &purchaseRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "purchase").Logger(),
	}
}

// CreatePurchase inserts a log entry. A zero CreatedAt is set by the database.
func (r *purchaseRepository) CreatePurchase(ctx context.Context, tx pgx.Tx, entry *model.PurchaseLogEntry) error {
	var createdAt *time.Time
	if !entry.CreatedAt.IsZero() {
		createdAt = &entry.CreatedAt
	}

	query := `
		INSERT INTO purchase_log
			(ingredient_id, quantity_purchased, unit, total_cost, user_id, supplier, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		entry.IngredientID,
		entry.QuantityPurchased,
		entry.Unit,
		entry.TotalCost,
		entry.UserID,
		entry.Supplier,
		entry.Notes,
		createdAt,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrIngredientNotFound
		}
		r.logger.Error().
			Err(err).
			Int64("ingredient_id", entry.IngredientID).
			Msg("failed to create purchase log entry")
		return fmt.Errorf("failed to create purchase log entry: %w", TranslateConflict(err))
	}

	r.logger.Debug().
		Int64("purchase_id", entry.ID).
		Int64("ingredient_id", entry.IngredientID).
		Msg("purchase logged")

	return nil
}

// ListByIngredient returns the most recent purchases of an ingredient.
func (r *purchaseRepository) ListByIngredient(ctx context.Context, ingredientID int64, limit int) ([]model.PurchaseLogEntry, error) {
	query := `
		SELECT id, ingredient_id, quantity_purchased, unit, total_cost, user_id, supplier, notes, created_at
		FROM purchase_log
		WHERE ingredient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ingredientID, limit)
	if err != nil {
		r.logger.Error().Err(err).Int64("ingredient_id", ingredientID).Msg("failed to query purchases")
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	entries := []model.PurchaseLogEntry{}
	for rows.Next() {
		var e model.PurchaseLogEntry
		err := rows.Scan(&e.ID, &e.IngredientID, &e.QuantityPurchased, &e.Unit, &e.TotalCost,
			&e.UserID, &e.Supplier, &e.Notes, &e.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan purchase row")
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating purchase rows")
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	return entries, nil
}
