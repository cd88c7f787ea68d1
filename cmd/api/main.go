package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
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

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting pos-inventory API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	ingredientRepo := repository.NewIngredientRepository(pool, logger)
	conversionRepo := repository.NewConversionRepository(pool, logger)
	ledgerRepo := repository.NewLedgerRepository(pool, logger)
	purchaseRepo := repository.NewPurchaseRepository(pool, logger)
	catalogRepo := repository.NewCatalogRepository(pool, logger)

	// Conversion rules are cached by the resolver until a mutation invalidates them
	resolver := conversion.NewResolver(conversionRepo, logger)
	expander := recipe.NewExpander(productRepo, logger)

	retries := cfg.Inventory.ConflictRetries

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	inventoryService := service.NewInventoryService(ingredientRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, ledgerRepo, expander, resolver, retries, logger)
	cartService := service.NewCartService(productService, cfg.Inventory.TaxRate, logger)
	restockService := service.NewRestockService(productRepo, ledgerRepo, resolver, retries, logger)
	conversionService := service.NewConversionService(conversionRepo, resolver, logger)
	purchaseService := service.NewPurchaseService(purchaseRepo, ledgerRepo, resolver, retries, logger)
	catalogService := service.NewCatalogService(catalogRepo, resolver, logger)

	if cfg.Catalog.Snapshot != "" {
		if err := importCatalog(ctx, cfg, catalogService, logger); err != nil {
			return err
		}
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Products:    handler.NewProductHandler(productService, restockService, logger),
		Orders:      handler.NewOrderHandler(orderService, cartService, logger),
		Conversions: handler.NewConversionHandler(conversionService, logger),
		Inventory:   handler.NewInventoryHandler(inventoryService, purchaseService, logger),
	}

	// Initialize router
	mux := router.New(handlers, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// importCatalog loads the configured snapshot, from S3 when enabled with
// the local file system as fallback, and writes it to the database.
func importCatalog(ctx context.Context, cfg *config.Config, catalogService service.CatalogService, logger zerolog.Logger) error {
	var s3Loader catalog.Loader
	if cfg.Catalog.S3.Enabled {
		l, err := catalog.NewS3Loader(ctx, cfg.Catalog.S3.Bucket, cfg.Catalog.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	} else {
		logger.Info().Msg("using local file system for catalog snapshots (S3 disabled)")
	}

	loader := catalog.NewFallbackLoader(s3Loader, catalog.NewFileLoader(logger), cfg.Catalog.S3.Prefix, logger)

	snapshot, err := loader.Load(ctx, cfg.Catalog.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	cat, err := snapshot.ToModel()
	if err != nil {
		return err
	}

	summary, err := catalogService.Import(ctx, cat)
	if err != nil {
		return err
	}

	logger.Info().
		Str("snapshot", cfg.Catalog.Snapshot).
		Int("ingredients", summary.Ingredients).
		Int("products", summary.Products).
		Int("recipe_items", summary.RecipeItems).
		Int("conversions", summary.Conversions).
		Msg("catalog snapshot imported")

	return nil
}
