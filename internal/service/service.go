package service

import (
	"context"

	"pos-inventory/internal/model"
	"pos-inventory/internal/recipe"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines read operations for the product catalogue.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its recipe.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

// InventoryService defines read operations for ingredient stock.
type InventoryService interface {
	// ListIngredients retrieves every ingredient with its current stock level.
	ListIngredients(ctx context.Context) ([]model.Ingredient, error)

	// GetIngredient retrieves a single ingredient.
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)
}

// OrderService defines checkout and order lookup.
type OrderService interface {
	// Checkout records the order and deducts the stock its recipes consume,
	// all in one transaction.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order by its ID with all items and product details.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// CartService defines cart pricing.
type CartService interface {
	// Quote prices the requested products and builds the matching checkout request.
	Quote(ctx context.Context, req *model.QuoteRequest) (*model.QuoteResponse, error)
}

// RestockService defines preparation restocking.
type RestockService interface {
	// Restock produces quantity units of a stock-tracked product, consuming
	// the direct ingredients of its recipe.
	Restock(ctx context.Context, productID int64, quantity decimal.Decimal) error
}

// ConversionService defines conversion rule management and lookup.
type ConversionService interface {
	// List retrieves every conversion rule.
	List(ctx context.Context) ([]model.ConversionRule, error)

	// Create stores a new conversion rule.
	Create(ctx context.Context, req *model.ConversionRequest) (*model.ConversionRule, error)

	// Update replaces an existing conversion rule.
	Update(ctx context.Context, id int64, req *model.ConversionRequest) (*model.ConversionRule, error)

	// Delete removes a conversion rule.
	Delete(ctx context.Context, id int64) error

	// Resolve computes the factor converting fromUnit into toUnit.
	Resolve(ctx context.Context, fromUnit, toUnit string, ingredientID *int64) (*model.ResolveResponse, error)
}

// PurchaseService defines ingredient purchase logging.
type PurchaseService interface {
	// LogPurchase records a purchase and adds the bought quantity to stock.
	LogPurchase(ctx context.Context, req *model.PurchaseRequest) (*model.PurchaseResponse, error)

	// ListByIngredient retrieves the most recent purchases of an ingredient.
	ListByIngredient(ctx context.Context, ingredientID int64, limit int) ([]model.PurchaseLogEntry, error)
}

// CatalogService defines catalog snapshot import.
type CatalogService interface {
	// Import writes the catalog and drops cached conversion rules.
	Import(ctx context.Context, catalog *model.Catalog) (*model.ImportSummary, error)
}

// UnitResolver converts quantities between units.
type UnitResolver interface {
	Resolve(ctx context.Context, fromUnit, toUnit string, ingredientID *int64) (decimal.Decimal, error)
}

// ConversionCache is a UnitResolver whose cached rules can be dropped.
type ConversionCache interface {
	UnitResolver
	Invalidate()
}

// RecipeExpander flattens product recipes.
type RecipeExpander interface {
	Expand(ctx context.Context, productID int64, quantity decimal.Decimal) (*recipe.Plan, error)
}
