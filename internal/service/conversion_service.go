package service

import (
	"context"
	"fmt"
	"strings"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"

	"github.com/rs/zerolog"
)

// conversionService implements ConversionService.
type conversionService struct {
	conversionRepo repository.ConversionRepository
	cache          ConversionCache
	logger         zerolog.Logger
}

// NewConversionService creates a new conversion service. Every change to
// the stored rules invalidates cache.
func NewConversionService(
	conversionRepo repository.ConversionRepository,
	cache ConversionCache,
	logger zerolog.Logger,
) ConversionService {
	return &conversionService{
		conversionRepo: conversionRepo,
		cache:          cache,
		logger:         logger.With().Str("service", "conversion").Logger(),
	}
}

// List retrieves every conversion rule.
func (s *conversionService) List(ctx context.Context) ([]model.ConversionRule, error) {
	rules, err := s.conversionRepo.ListRules(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list conversion rules")
		return nil, fmt.Errorf("failed to list conversion rules: %w", err)
	}
	return rules, nil
}

// Create stores a new conversion rule.
func (s *conversionService) Create(ctx context.Context, req *model.ConversionRequest) (*model.ConversionRule, error) {
	rule, err := ruleFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.conversionRepo.Create(ctx, rule); err != nil {
		s.logger.Warn().
			Err(err).
			Str("from_unit", rule.FromUnit).
			Str("to_unit", rule.ToUnit).
			Msg("failed to create conversion rule")
		return nil, err
	}
	s.cache.Invalidate()

	s.logger.Info().
		Int64("rule_id", rule.ID).
		Str("from_unit", rule.FromUnit).
		Str("to_unit", rule.ToUnit).
		Msg("conversion rule created")

	return s.reload(ctx, rule)
}

// Update replaces an existing conversion rule.
func (s *conversionService) Update(ctx context.Context, id int64, req *model.ConversionRequest) (*model.ConversionRule, error) {
	if id <= 0 {
		return nil, model.ErrConversionNotFound
	}

	rule, err := ruleFromRequest(req)
	if err != nil {
		return nil, err
	}
	rule.ID = id

	if err := s.conversionRepo.Update(ctx, rule); err != nil {
		s.logger.Warn().Err(err).Int64("rule_id", id).Msg("failed to update conversion rule")
		return nil, err
	}
	s.cache.Invalidate()

	s.logger.Info().Int64("rule_id", id).Msg("conversion rule updated")

	return s.reload(ctx, rule)
}

// Delete removes a conversion rule.
func (s *conversionService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrConversionNotFound
	}

	if err := s.conversionRepo.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("rule_id", id).Msg("failed to delete conversion rule")
		return err
	}
	s.cache.Invalidate()

	s.logger.Info().Int64("rule_id", id).Msg("conversion rule deleted")
	return nil
}

// Resolve computes the factor converting fromUnit into toUnit.
func (s *conversionService) Resolve(ctx context.Context, fromUnit, toUnit string, ingredientID *int64) (*model.ResolveResponse, error) {
	fromUnit = strings.TrimSpace(fromUnit)
	toUnit = strings.TrimSpace(toUnit)
	if fromUnit == "" || toUnit == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "from and to units are required")
	}

	factor, err := s.cache.Resolve(ctx, fromUnit, toUnit, ingredientID)
	if err != nil {
		return nil, err
	}

	return &model.ResolveResponse{
		FromUnit:     fromUnit,
		ToUnit:       toUnit,
		IngredientID: ingredientID,
		Factor:       factor,
	}, nil
}

// reload returns the stored rule with its ingredient name, falling back to
// rule when it cannot be read back.
func (s *conversionService) reload(ctx context.Context, rule *model.ConversionRule) (*model.ConversionRule, error) {
	stored, err := s.conversionRepo.GetByID(ctx, rule.ID)
	if err != nil || stored == nil {
		s.logger.Debug().Err(err).Int64("rule_id", rule.ID).Msg("could not reload conversion rule")
		return rule, nil
	}
	return stored, nil
}

func ruleFromRequest(req *model.ConversionRequest) (*model.ConversionRule, error) {
	if req == nil {
		return nil, model.NewValidationError(model.ErrCodeInvalidConversion, "conversion request is nil")
	}

	from := strings.TrimSpace(req.FromUnit)
	to := strings.TrimSpace(req.ToUnit)

	if from == "" || to == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "both from and to units are required")
	}
	if strings.EqualFold(from, to) {
		return nil, model.NewValidationError(model.ErrCodeInvalidConversion, "from and to units must differ")
	}
	if !req.Factor.IsPositive() {
		return nil, model.NewValidationError(model.ErrCodeInvalidConversion, "conversion factor must be greater than zero")
	}
	if req.IngredientID != nil && *req.IngredientID <= 0 {
		return nil, model.NewValidationError(model.ErrCodeInvalidConversion, "ingredient ID must be positive")
	}

	return &model.ConversionRule{
		FromUnit:     from,
		ToUnit:       to,
		Factor:       req.Factor,
		IngredientID: req.IngredientID,
	}, nil
}
