package service

import (
	"context"
	"fmt"
	"strings"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultPurchaseLimit = 20
	maxPurchaseLimit     = 100
)

// purchaseService implements PurchaseService.
type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	ledgerRepo   repository.LedgerRepository
	resolver     UnitResolver
	retries      int
	logger       zerolog.Logger
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	ledgerRepo repository.LedgerRepository,
	resolver UnitResolver,
	retries int,
	logger zerolog.Logger,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		ledgerRepo:   ledgerRepo,
		resolver:     resolver,
		retries:      retries,
		logger:       logger.With().Str("service", "purchase").Logger(),
	}
}

// LogPurchase records the purchase and adds the bought quantity, converted
// into the ingredient's stock unit, to its stock level.
func (s *purchaseService) LogPurchase(ctx context.Context, req *model.PurchaseRequest) (*model.PurchaseResponse, error) {
	if err := validatePurchaseRequest(req); err != nil {
		return nil, err
	}

	var resp *model.PurchaseResponse
	err := retryOnConflict(ctx, s.logger, s.retries, func(attempt int) error {
		var err error
		resp, err = s.logPurchase(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("ingredient_id", req.IngredientID).
		Int64("purchase_id", resp.Entry.ID).
		Str("stock_delta", resp.StockDelta.String()).
		Str("stock_unit", resp.StockUnit).
		Msg("purchase logged")

	return resp, nil
}

func (s *purchaseService) logPurchase(ctx context.Context, req *model.PurchaseRequest) (resp *model.PurchaseResponse, err error) {
	tx, err := s.ledgerRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to log purchase: %w", err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, s.logger, tx)
		}
	}()

	locked, err := s.ledgerRepo.LockIngredients(ctx, tx, []int64{req.IngredientID})
	if err != nil {
		return nil, err
	}
	ingredient := locked[req.IngredientID]

	unit := strings.TrimSpace(req.Unit)
	factor, err := s.resolver.Resolve(ctx, unit, ingredient.StockUnit, &req.IngredientID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("ingredient_id", req.IngredientID).
			Str("from_unit", unit).
			Str("to_unit", ingredient.StockUnit).
			Msg("failed to convert purchase quantity")
		return nil, fmt.Errorf("failed to convert %s of %s: %w", unit, ingredient.Name, err)
	}

	entry := &model.PurchaseLogEntry{
		IngredientID:      req.IngredientID,
		QuantityPurchased: req.Quantity,
		Unit:              unit,
		TotalCost:         req.TotalCost,
		UserID:            req.UserID,
		Supplier:          req.Supplier,
		Notes:             req.Notes,
	}
	if req.CreatedAt != nil {
		entry.CreatedAt = *req.CreatedAt
	}

	if err = s.purchaseRepo.CreatePurchase(ctx, tx, entry); err != nil {
		return nil, err
	}

	delta := req.Quantity.Mul(factor)
	if err = s.ledgerRepo.AdjustIngredientStock(ctx, tx, []model.StockAdjustment{{ID: req.IngredientID, Delta: delta}}); err != nil {
		return nil, err
	}

	if err = repository.TranslateConflict(tx.Commit(ctx)); err != nil {
		s.logger.Error().Err(err).Int64("ingredient_id", req.IngredientID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to log purchase: %w", err)
	}

	return &model.PurchaseResponse{
		Entry:      *entry,
		StockDelta: delta,
		StockUnit:  ingredient.StockUnit,
	}, nil
}

// ListByIngredient retrieves the most recent purchases of an ingredient.
func (s *purchaseService) ListByIngredient(ctx context.Context, ingredientID int64, limit int) ([]model.PurchaseLogEntry, error) {
	if ingredientID <= 0 {
		return nil, model.ErrIngredientNotFound
	}
	if limit <= 0 {
		limit = defaultPurchaseLimit
	}
	if limit > maxPurchaseLimit {
		limit = maxPurchaseLimit
	}

	entries, err := s.purchaseRepo.ListByIngredient(ctx, ingredientID, limit)
	if err != nil {
		s.logger.Error().Err(err).Int64("ingredient_id", ingredientID).Msg("failed to list purchases")
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return entries, nil
}

func validatePurchaseRequest(req *model.PurchaseRequest) error {
	switch {
	case req == nil:
		return model.NewValidationError(model.ErrCodeInvalidPurchase, "purchase request is nil")
	case req.IngredientID <= 0:
		return model.NewValidationError(model.ErrCodeMissingField, "ingredient ID is required")
	case !req.Quantity.IsPositive():
		return model.ErrInvalidQuantity
	case req.TotalCost.IsNegative():
		return model.NewValidationError(model.ErrCodeInvalidPurchase, "total cost cannot be negative")
	case strings.TrimSpace(req.Unit) == "":
		return model.NewValidationError(model.ErrCodeMissingField, "unit is required")
	case strings.TrimSpace(req.UserID) == "":
		return model.NewValidationError(model.ErrCodeMissingField, "user ID is required")
	}
	return nil
}
