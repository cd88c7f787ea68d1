package repository

import (
	"context"

	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor starts database transactions.
type Transactor interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// ProductRepository defines the interface for product and recipe data access operations.
type ProductRepository interface {
	// GetAll retrieves products with their recipes, with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its recipe.
	// Returns nil when the product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves multiple products with their recipes.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// ValidateProductsExist checks if all provided product IDs exist in the database.
	// Returns model.ErrProductNotFound if any product ID does not exist.
	ValidateProductsExist(ctx context.Context, ids []int64) error
}

// IngredientRepository defines the interface for reading ingredients.
type IngredientRepository interface {
	// GetAll retrieves every ingredient ordered by name.
	GetAll(ctx context.Context) ([]model.Ingredient, error)

	// GetByID retrieves one ingredient, or nil when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Ingredient, error)
}

// ConversionRepository defines the interface for conversion rule storage.
type ConversionRepository interface {
	// ListRules retrieves every rule ordered by id.
	ListRules(ctx context.Context) ([]model.ConversionRule, error)

	// GetByID retrieves one rule, or nil when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.ConversionRule, error)

	// Create inserts a rule and sets its ID.
	Create(ctx context.Context, rule *model.ConversionRule) error

	// Update replaces the units, factor and ingredient of an existing rule.
	Update(ctx context.Context, rule *model.ConversionRule) error

	// Delete removes a rule.
	Delete(ctx context.Context, id int64) error
}

// LedgerRepository reads and mutates stock levels inside a transaction.
// Rows must be locked before they are adjusted, ingredients before products.
type LedgerRepository interface {
	Transactor

	// LockIngredients locks the ingredient rows and returns them keyed by id.
	LockIngredients(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]model.Ingredient, error)

	// LockProducts locks stock-tracked product rows and returns them keyed by id.
	LockProducts(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]model.StockedProduct, error)

	// AdjustIngredientStock adds each delta to its ingredient's stock level.
	AdjustIngredientStock(ctx context.Context, tx pgx.Tx, adjustments []model.StockAdjustment) error

	// AdjustProductStock adds each delta to its product's stock level.
	AdjustProductStock(ctx context.Context, tx pgx.Tx, adjustments []model.StockAdjustment) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	Transactor

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)
}

// PurchaseRepository stores ingredient purchases.
type PurchaseRepository interface {
	// CreatePurchase inserts a log entry within the provided transaction and
	// sets its ID and CreatedAt.
	CreatePurchase(ctx context.Context, tx pgx.Tx, entry *model.PurchaseLogEntry) error

	// ListByIngredient returns the most recent purchases of an ingredient.
	ListByIngredient(ctx context.Context, ingredientID int64, limit int) ([]model.PurchaseLogEntry, error)
}

// CatalogRepository loads catalog snapshots.
type CatalogRepository interface {
	// Import upserts every ingredient, product, recipe and conversion rule of
	// the catalog in one transaction. Stock levels of existing rows are kept.
	Import(ctx context.Context, catalog *model.Catalog) (*model.ImportSummary, error)
}
