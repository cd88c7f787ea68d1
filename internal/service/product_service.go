package service

import (
	"context"
	"fmt"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultProductLimit = 10
	maxProductLimit     = 100
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a catalogue read service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll returns one page of the catalogue, recipes and stock levels included.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	switch {
	case limit <= 0:
		limit = defaultProductLimit
	case limit > maxProductLimit:
		limit = maxProductLimit
	}
	offset = max(offset, 0)

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list catalogue")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetByID returns a product with its recipe. Unknown and non-positive ids
// both yield ErrProductNotFound.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// GetByIDs returns one product per distinct id, in the order the ids were
// first requested. Any unknown id fails the whole lookup.
func (s *productService) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	ids = distinctIDs(ids)
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	found, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to get products by IDs")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	byID := make(map[int64]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			s.logger.Debug().Int64("product_id", id).Msg("requested product not found")
			return nil, model.ErrProductNotFound
		}
		products = append(products, p)
	}

	return products, nil
}

func distinctIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
