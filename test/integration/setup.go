package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"pos-inventory/internal/catalog"
	"pos-inventory/internal/config"
	"pos-inventory/internal/conversion"
	"pos-inventory/internal/database"
	"pos-inventory/internal/handler"
	"pos-inventory/internal/recipe"
	"pos-inventory/internal/repository"
	"pos-inventory/internal/router"
	"pos-inventory/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the inventory schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Stack is the application wired against a test database.
type Stack struct {
	Resolver    *conversion.Resolver
	Products    service.ProductService
	Inventory   service.InventoryService
	Orders      service.OrderService
	Restocks    service.RestockService
	Conversions service.ConversionService
	Purchases   service.PurchaseService
	Catalog     service.CatalogService
	Handler     http.Handler
}

// NewStack wires repositories, services, handlers and the router the same
// way cmd/api does.
func NewStack(t *testing.T, pool *pgxpool.Pool) *Stack {
	t.Helper()

	logger := zerolog.Nop()
	retries := 3

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	ingredientRepo := repository.NewIngredientRepository(pool, logger)
	conversionRepo := repository.NewConversionRepository(pool, logger)
	ledgerRepo := repository.NewLedgerRepository(pool, logger)
	purchaseRepo := repository.NewPurchaseRepository(pool, logger)
	catalogRepo := repository.NewCatalogRepository(pool, logger)

	resolver := conversion.NewResolver(conversionRepo, logger)
	expander := recipe.NewExpander(productRepo, logger)

	s := &Stack{
		Resolver:    resolver,
		Products:    service.NewProductService(productRepo, logger),
		Inventory:   service.NewInventoryService(ingredientRepo, logger),
		Orders:      service.NewOrderService(orderRepo, productRepo, ledgerRepo, expander, resolver, retries, logger),
		Restocks:    service.NewRestockService(productRepo, ledgerRepo, resolver, retries, logger),
		Conversions: service.NewConversionService(conversionRepo, resolver, logger),
		Purchases:   service.NewPurchaseService(purchaseRepo, ledgerRepo, resolver, retries, logger),
		Catalog:     service.NewCatalogService(catalogRepo, resolver, logger),
	}
	carts := service.NewCartService(s.Products, decimal.RequireFromString("0.10"), logger)

	s.Handler = router.New(router.Handlers{
		Products:    handler.NewProductHandler(s.Products, s.Restocks, logger),
		Orders:      handler.NewOrderHandler(s.Orders, carts, logger),
		Conversions: handler.NewConversionHandler(s.Conversions, logger),
		Inventory:   handler.NewInventoryHandler(s.Inventory, s.Purchases, logger),
	}, testAPIKey, logger)

	return s
}

func ptr[T any](v T) *T {
	return &v
}

// CafeSnapshot is the catalog used by the integration tests:
//
//	1 Coffee beans 1000 g, 2 Milk 5000 ml, 3 Sugar 500 g
//	10 Espresso shot, tracked, 20 shots, recipe 18 g beans
//	11 Double shot, recipe 2 shots
//	12 Latte, recipe 1 double shot + 200 ml milk + 1 teaspoon sugar
//	13 Muffin, empty recipe
//	30 Chocolate sauce, tracked, 0 litre, recipe 5 teaspoon sugar + 0.1 litre milk + 1 shot
//
// Generic rules: kilogram→gram, litre→millilitre. Sugar: teaspoon→gram 4.2.
func CafeSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Version: catalog.SnapshotVersion,
		Ingredients: []catalog.Ingredient{
			{ID: 1, Name: "Coffee beans", StockLevel: "1000", StockUnit: "gram"},
			{ID: 2, Name: "Milk", StockLevel: "5000", StockUnit: "millilitre"},
			{ID: 3, Name: "Sugar", StockLevel: "500", StockUnit: "gram"},
		},
		Conversions: []catalog.Conversion{
			{FromUnit: "kilogram", ToUnit: "gram", Factor: "1000"},
			{FromUnit: "litre", ToUnit: "millilitre", Factor: "1000"},
			{FromUnit: "teaspoon", ToUnit: "gram", Factor: "4.2", IngredientID: ptr(int64(3))},
		},
		Products: []catalog.Product{
			{
				ID: 10, Name: "Espresso shot", Price: "1.50",
				Categories: []string{"preparations"},
				StockLevel: ptr("20"), StockUnit: ptr("shot"),
				Recipe: []catalog.Component{
					{IngredientID: ptr(int64(1)), Quantity: "18", Unit: "gram"},
				},
			},
			{
				ID: 11, Name: "Double shot", Price: "2.50", IsForSale: true,
				Categories: []string{"coffee"},
				Recipe: []catalog.Component{
					{ProductID: ptr(int64(10)), Quantity: "2", Unit: "shot"},
				},
			},
			{
				ID: 12, Name: "Latte", Price: "4.50", IsForSale: true,
				Categories: []string{"coffee", "milk"},
				Recipe: []catalog.Component{
					{ProductID: ptr(int64(11)), Quantity: "1", Unit: "unit"},
					{IngredientID: ptr(int64(2)), Quantity: "200", Unit: "millilitre"},
					{IngredientID: ptr(int64(3)), Quantity: "1", Unit: "teaspoon"},
				},
			},
			{
				ID: 13, Name: "Muffin", Price: "3.00", IsForSale: true,
				Categories: []string{"bakery"},
			},
			{
				ID: 30, Name: "Chocolate sauce", Price: "0",
				Categories: []string{"preparations"},
				StockLevel: ptr("0"), StockUnit: ptr("litre"),
				Recipe: []catalog.Component{
					{IngredientID: ptr(int64(3)), Quantity: "5", Unit: "teaspoon"},
					{IngredientID: ptr(int64(2)), Quantity: "0.1", Unit: "litre"},
					{ProductID: ptr(int64(10)), Quantity: "1", Unit: "shot"},
				},
			},
		},
	}
}

// SeedCafe imports CafeSnapshot through the catalog service.
func SeedCafe(t *testing.T, s *Stack) {
	t.Helper()

	cat, err := CafeSnapshot().ToModel()
	if err != nil {
		t.Fatalf("invalid cafe snapshot: %v", err)
	}

	if _, err := s.Catalog.Import(context.Background(), cat); err != nil {
		t.Fatalf("failed to import cafe snapshot: %v", err)
	}
}

// CleanupDB removes all rows and resets id sequences.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE purchase_log, order_items, orders, recipe_items, unit_conversions, products, ingredients
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}

// IngredientStock reads an ingredient's stock level.
func IngredientStock(t *testing.T, pool *pgxpool.Pool, id int64) decimal.Decimal {
	t.Helper()

	var level decimal.Decimal
	err := pool.QueryRow(context.Background(), "SELECT stock_level FROM ingredients WHERE id = $1", id).Scan(&level)
	if err != nil {
		t.Fatalf("failed to read stock of ingredient %d: %v", id, err)
	}
	return level
}

// ProductStock reads a tracked product's stock level.
func ProductStock(t *testing.T, pool *pgxpool.Pool, id int64) decimal.Decimal {
	t.Helper()

	var level decimal.Decimal
	err := pool.QueryRow(context.Background(), "SELECT stock_level FROM products WHERE id = $1", id).Scan(&level)
	if err != nil {
		t.Fatalf("failed to read stock of product %d: %v", id, err)
	}
	return level
}

// CountOrders returns the number of stored orders.
func CountOrders(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), "SELECT count(*) FROM orders").Scan(&n); err != nil {
		t.Fatalf("failed to count orders: %v", err)
	}
	return n
}
