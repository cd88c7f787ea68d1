package service

import (
	"context"
	"fmt"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	catalogRepo repository.CatalogRepository
	cache       ConversionCache
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalogRepo repository.CatalogRepository, cache ConversionCache, logger zerolog.Logger) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		cache:       cache,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// Import writes the catalog in one transaction and invalidates the
// conversion cache.
func (s *catalogService) Import(ctx context.Context, catalog *model.Catalog) (*model.ImportSummary, error) {
	if catalog == nil {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "catalog is required")
	}

	summary, err := s.catalogRepo.Import(ctx, catalog)
	if err != nil {
		s.logger.Error().Err(err).Msg("catalog import failed")
		return nil, fmt.Errorf("failed to import catalog: %w", err)
	}
	s.cache.Invalidate()

	s.logger.Info().
		Int("ingredients", summary.Ingredients).
		Int("products", summary.Products).
		Int("recipe_items", summary.RecipeItems).
		Int("conversions", summary.Conversions).
		Msg("catalog imported")

	return summary, nil
}
