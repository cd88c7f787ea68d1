package service

import (
	"context"
	"fmt"

	"pos-inventory/internal/model"
	"pos-inventory/internal/recipe"
	"pos-inventory/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// restockService implements RestockService.
type restockService struct {
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
	resolver    UnitResolver
	retries     int
	logger      zerolog.Logger
}

// NewRestockService creates a new restock service.
func NewRestockService(
	productRepo repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
	resolver UnitResolver,
	retries int,
	logger zerolog.Logger,
) RestockService {
	return &restockService{
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		resolver:    resolver,
		retries:     retries,
		logger:      logger.With().Str("service", "restock").Logger(),
	}
}

// Restock adds quantity to the product's stock and deducts the direct
// ingredients needed to make it. Sub-product components are not consumed.
func (s *restockService) Restock(ctx context.Context, productID int64, quantity decimal.Decimal) error {
	if productID <= 0 {
		return model.NewValidationError(model.ErrCodeMissingField, "valid product ID and a positive quantity are required")
	}
	if !quantity.IsPositive() {
		return model.ErrInvalidQuantity
	}

	return retryOnConflict(ctx, s.logger, s.retries, func(attempt int) error {
		return s.restock(ctx, productID, quantity)
	})
}

// restock runs one attempt, reading the product and its recipe afresh.
func (s *restockService) restock(ctx context.Context, productID int64, quantity decimal.Decimal) (err error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to get product")
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}
	if !product.IsTracked() {
		s.logger.Warn().Int64("product_id", productID).Msg("restock of untracked product")
		return model.ErrProductNotTracked
	}

	plan := recipe.DirectIngredients(product, quantity)

	tx, err := s.ledgerRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to restock product: %w", err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, s.logger, tx)
		}
	}()

	ingredients, err := s.ledgerRepo.LockIngredients(ctx, tx, plan.IngredientIDs())
	if err != nil {
		return err
	}

	consumed, err := ingredientDeltas(ctx, s.resolver, plan, ingredients, -1)
	if err != nil {
		s.logger.Warn().Err(err).Int64("product_id", product.ID).Msg("failed to convert recipe quantities")
		return err
	}

	if _, err = s.ledgerRepo.LockProducts(ctx, tx, []int64{product.ID}); err != nil {
		return err
	}

	if err = s.ledgerRepo.AdjustIngredientStock(ctx, tx, consumed); err != nil {
		return err
	}

	produced := []model.StockAdjustment{{ID: product.ID, Delta: quantity}}
	if err = s.ledgerRepo.AdjustProductStock(ctx, tx, produced); err != nil {
		return err
	}

	if err = repository.TranslateConflict(tx.Commit(ctx)); err != nil {
		s.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to commit transaction")
		return fmt.Errorf("failed to restock product: %w", err)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("quantity", quantity.String()).
		Int("ingredients_consumed", len(consumed)).
		Msg("product restocked")

	return nil
}
