package service

import (
	"context"

	"pos-inventory/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	products ProductService
	taxRate  decimal.Decimal
	logger   zerolog.Logger
}

// NewCartService creates a cart service that applies taxRate to subtotals.
func NewCartService(products ProductService, taxRate decimal.Decimal, logger zerolog.Logger) CartService {
	return &cartService{
		products: products,
		taxRate:  taxRate,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// Quote builds a cart from the current catalogue prices. Repeated products
// are merged into one line.
func (s *cartService) Quote(ctx context.Context, req *model.QuoteRequest) (*model.QuoteResponse, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, model.NewValidationError(model.ErrCodeInvalidOrder, "cart must contain at least one item")
	}

	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return nil, model.NewValidationError(model.ErrCodeMissingField, "item %d: product ID is required", i)
		}
		if item.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		ids[i] = item.ProductID
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	cart := model.NewCart()
	for _, product := range products {
		cart = cart.Add(product)
	}
	quantities := make(map[int64]int, len(products))
	for _, item := range req.Items {
		quantities[item.ProductID] += item.Quantity
	}
	for id, qty := range quantities {
		cart = cart.SetQuantity(id, qty)
	}

	return &model.QuoteResponse{
		Lines:    cart.Lines(),
		Totals:   cart.Totals(s.taxRate),
		Checkout: cart.CheckoutRequest(req.ActorID, s.taxRate),
	}, nil
}
