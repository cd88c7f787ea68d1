package service

import (
	"context"
	"fmt"
	"time"

	"pos-inventory/internal/model"
	"pos-inventory/internal/recipe"
	"pos-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
	expander    RecipeExpander
	resolver    UnitResolver
	retries     int
	logger      zerolog.Logger
}

// NewOrderService creates a new order service. A conflicting checkout is
// attempted at most retries+1 times.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
	expander RecipeExpander,
	resolver UnitResolver,
	retries int,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		expander:    expander,
		resolver:    resolver,
		retries:     retries,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Checkout creates the order and deducts stock for every line.
// No stock-sufficiency check is made: levels may go negative.
func (s *orderService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	if err := s.validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	productIDs := make([]int64, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	if err := s.productRepo.ValidateProductsExist(ctx, productIDs); err != nil {
		s.logger.Warn().
			Int("product_count", len(productIDs)).
			Err(err).
			Msg("product validation failed")
		return nil, err
	}

	var (
		order       *model.Order
		items       []model.OrderItem
		adjustments *model.AdjustmentSummary
	)
	err := retryOnConflict(ctx, s.logger, s.retries, func(attempt int) error {
		var err error
		order, items, adjustments, err = s.checkout(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(items)).
		Int("ingredient_adjustments", len(adjustments.Ingredients)).
		Int("product_adjustments", len(adjustments.Products)).
		Msg("order checked out")

	return &model.OrderResponse{
		ID:          order.ID,
		Total:       order.Total,
		CashierID:   order.CashierID,
		CreatedAt:   order.CreatedAt,
		Items:       items,
		Products:    products,
		Adjustments: adjustments,
	}, nil
}

// checkout performs one transactional attempt. Nothing is persisted when it fails.
func (s *orderService) checkout(
	ctx context.Context,
	req *model.CheckoutRequest,
) (order *model.Order, items []model.OrderItem, summary *model.AdjustmentSummary, err error) {
	// Recipes are expanded per attempt so a retry sees the current catalogue.
	plan := recipe.NewPlan()
	for _, item := range req.Items {
		linePlan, err := s.expander.Expand(ctx, item.ProductID, decimal.NewFromInt(int64(item.Quantity)))
		if err != nil {
			s.logger.Warn().Err(err).Int64("product_id", item.ProductID).Msg("failed to expand recipe")
			return nil, nil, nil, err
		}
		plan.Merge(linePlan)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			rollback(ctx, s.logger, tx)
		}
	}()

	order = &model.Order{
		ID:        uuid.New(),
		Total:     req.Total,
		CashierID: req.ActorID,
		CreatedAt: time.Now().UTC(),
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	items = make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, nil, nil, fmt.Errorf("failed to create order items: %w", err)
	}

	ingredients, err := s.ledgerRepo.LockIngredients(ctx, tx, plan.IngredientIDs())
	if err != nil {
		return nil, nil, nil, err
	}

	if _, err = s.ledgerRepo.LockProducts(ctx, tx, plan.SubProductIDs()); err != nil {
		return nil, nil, nil, err
	}

	summary = &model.AdjustmentSummary{Products: productDeltas(plan)}
	summary.Ingredients, err = ingredientDeltas(ctx, s.resolver, plan, ingredients, -1)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to convert recipe quantities")
		return nil, nil, nil, err
	}

	if err = s.ledgerRepo.AdjustIngredientStock(ctx, tx, summary.Ingredients); err != nil {
		return nil, nil, nil, err
	}

	if err = s.ledgerRepo.AdjustProductStock(ctx, tx, summary.Products); err != nil {
		return nil, nil, nil, err
	}

	if err = repository.TranslateConflict(tx.Commit(ctx)); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, items, summary, nil
}

// GetByID retrieves an order by its ID with all items and product details.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil
	}

	// Extract product IDs
	productIDs := make([]int64, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	// Retrieve product details
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	return &model.OrderResponse{
		ID:        order.ID,
		Total:     order.Total,
		CashierID: order.CashierID,
		CreatedAt: order.CreatedAt,
		Items:     items,
		Products:  products,
	}, nil
}

// validateCheckoutRequest validates the checkout request.
func (s *orderService) validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewValidationError(model.ErrCodeInvalidOrder, "checkout request is nil")
	}

	if len(req.Items) == 0 {
		return model.NewValidationError(model.ErrCodeInvalidOrder, "order must contain at least one item")
	}

	if req.ActorID == "" {
		return model.NewValidationError(model.ErrCodeMissingField, "actor ID is required")
	}

	if req.Total.IsNegative() {
		return model.NewValidationError(model.ErrCodeInvalidOrder, "order total cannot be negative")
	}

	// Validate each item
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return model.NewValidationError(model.ErrCodeMissingField, "item %d: product ID is required", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Int64("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}

		if item.UnitPrice.IsNegative() {
			return model.NewValidationError(model.ErrCodeInvalidOrder, "item %d: unit price cannot be negative", i)
		}
	}

	return nil
}
