package service

import (
	"context"
	"fmt"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"

	"github.com/rs/zerolog"
)

// inventoryService implements InventoryService.
type inventoryService struct {
	ingredientRepo repository.IngredientRepository
	logger         zerolog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(ingredientRepo repository.IngredientRepository, logger zerolog.Logger) InventoryService {
	return &inventoryService{
		ingredientRepo: ingredientRepo,
		logger:         logger.With().Str("service", "inventory").Logger(),
	}
}

func (s *inventoryService) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	ingredients, err := s.ingredientRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list ingredients")
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *inventoryService) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	if id <= 0 {
		return nil, model.ErrIngredientNotFound
	}

	ingredient, err := s.ingredientRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("ingredient_id", id).Msg("failed to get ingredient")
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	if ingredient == nil {
		return nil, model.ErrIngredientNotFound
	}
	return ingredient, nil
}
