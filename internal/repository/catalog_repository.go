package repository

import (
	"context"
	"errors"
	"fmt"

	"pos-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a repository that imports catalog snapshots.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// Import upserts the catalog. Ingredients and products keep their snapshot
// ids and their current stock levels, so a snapshot may not change the stock
// unit of a row that already holds stock. Recipes of imported products are
// replaced. Conversion rules are matched on (from, to, ingredient) and only
// their factor is updated.
func (r *catalogRepository) Import(ctx context.Context, catalog *model.Catalog) (summary *model.ImportSummary, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback catalog import")
			}
		}
	}()

	summary = &model.ImportSummary{}

	if err = r.checkStockUnits(ctx, tx, catalog); err != nil {
		return nil, err
	}

	if err = r.upsertIngredients(ctx, tx, catalog.Ingredients); err != nil {
		return nil, err
	}
	summary.Ingredients = len(catalog.Ingredients)

	if err = r.upsertProducts(ctx, tx, catalog.Products); err != nil {
		return nil, err
	}
	summary.Products = len(catalog.Products)

	if summary.RecipeItems, err = r.replaceRecipes(ctx, tx, catalog.Products); err != nil {
		return nil, err
	}

	if err = r.upsertConversions(ctx, tx, catalog.Conversions); err != nil {
		return nil, err
	}
	summary.Conversions = len(catalog.Conversions)

	if err = r.syncSequences(ctx, tx); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit catalog import")
		return nil, fmt.Errorf("failed to commit catalog import: %w", err)
	}

	r.logger.Info().
		Int("ingredients", summary.Ingredients).
		Int("products", summary.Products).
		Int("recipe_items", summary.RecipeItems).
		Int("conversions", summary.Conversions).
		Msg("catalog imported")

	return summary, nil
}

// checkStockUnits locks the existing rows the snapshot touches and rejects
// any whose kept stock level would be reinterpreted in a different unit.
func (r *catalogRepository) checkStockUnits(ctx context.Context, tx pgx.Tx, catalog *model.Catalog) error {
	ingredientUnits := make(map[int64]string, len(catalog.Ingredients))
	ingredientIDs := make([]int64, 0, len(catalog.Ingredients))
	for _, ing := range catalog.Ingredients {
		ingredientUnits[ing.ID] = ing.StockUnit
		ingredientIDs = append(ingredientIDs, ing.ID)
	}

	productUnits := make(map[int64]string, len(catalog.Products))
	productIDs := make([]int64, 0, len(catalog.Products))
	for _, p := range catalog.Products {
		if p.StockUnit == nil {
			continue
		}
		productUnits[p.ID] = *p.StockUnit
		productIDs = append(productIDs, p.ID)
	}

	var errs []error

	check := func(kind, query string, ids []int64, units map[int64]string) error {
		if len(ids) == 0 {
			return nil
		}
		rows, err := tx.Query(ctx, query, ids)
		if err != nil {
			r.logger.Error().Err(err).Str("kind", kind).Msg("failed to read current stock units")
			return fmt.Errorf("failed to read %s stock units: %w", kind, err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id   int64
				name string
				unit string
			)
			if err := rows.Scan(&id, &name, &unit); err != nil {
				return fmt.Errorf("failed to scan %s stock unit: %w", kind, err)
			}
			if want := units[id]; want != unit {
				r.logger.Warn().
					Str("kind", kind).
					Int64("id", id).
					Str("stock_unit", unit).
					Str("snapshot_unit", want).
					Msg("catalog changes stock unit")
				errs = append(errs, model.NewValidationError(model.ErrCodeStockUnitChanged,
					"%s %d (%s): stock unit cannot change from %q to %q while its stock level is kept",
					kind, id, name, unit, want))
			}
		}
		return rows.Err()
	}

	// Ingredients before products, in id order, as the ledger locks them.
	if err := check("ingredient", `
		SELECT id, name, stock_unit FROM ingredients
		WHERE id = ANY($1)
		ORDER BY id
		FOR NO KEY UPDATE
	`, ingredientIDs, ingredientUnits); err != nil {
		return err
	}
	if err := check("product", `
		SELECT id, name, stock_unit FROM products
		WHERE id = ANY($1) AND stock_level IS NOT NULL
		ORDER BY id
		FOR NO KEY UPDATE
	`, productIDs, productUnits); err != nil {
		return err
	}

	return errors.Join(errs...)
}

func (r *catalogRepository) upsertIngredients(ctx context.Context, tx pgx.Tx, ingredients []model.Ingredient) error {
	query := `
		INSERT INTO ingredients (id, name, stock_level, stock_unit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, stock_unit = EXCLUDED.stock_unit
	`

	batch := &pgx.Batch{}
	for _, ing := range ingredients {
		batch.Queue(query, ing.ID, ing.Name, ing.StockLevel, ing.StockUnit)
	}
	return r.execBatch(ctx, tx, batch, "ingredient")
}

func (r *catalogRepository) upsertProducts(ctx context.Context, tx pgx.Tx, products []model.Product) error {
	// A product that becomes tracked starts at the snapshot level; one that
	// stays tracked keeps its current level.
	query := `
		INSERT INTO products (id, name, price, categories, is_for_sale, stock_level, stock_unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			price = EXCLUDED.price,
			categories = EXCLUDED.categories,
			is_for_sale = EXCLUDED.is_for_sale,
			stock_unit = EXCLUDED.stock_unit,
			stock_level = CASE
				WHEN EXCLUDED.stock_level IS NULL THEN NULL
				ELSE COALESCE(products.stock_level, EXCLUDED.stock_level)
			END
	`

	batch := &pgx.Batch{}
	for _, p := range products {
		var level decimal.NullDecimal
		if p.StockLevel != nil {
			level = decimal.NewNullDecimal(*p.StockLevel)
		}
		categories := p.Categories
		if categories == nil {
			categories = []string{}
		}
		batch.Queue(query, p.ID, p.Name, p.Price, categories, p.IsForSale, level, p.StockUnit)
	}
	return r.execBatch(ctx, tx, batch, "product")
}

func (r *catalogRepository) replaceRecipes(ctx context.Context, tx pgx.Tx, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM recipe_items WHERE product_id = ANY($1)`, ids); err != nil {
		r.logger.Error().Err(err).Msg("failed to clear recipes")
		return 0, fmt.Errorf("failed to clear recipes: %w", err)
	}

	query := `
		INSERT INTO recipe_items (product_id, position, ingredient_id, sub_product_id, quantity, unit)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, p := range products {
		for position, item := range p.Recipe {
			var ingredientID, subProductID *int64
			switch c := item.(type) {
			case model.IngredientComponent:
				ingredientID = &c.IngredientID
			case model.SubProductComponent:
				subProductID = &c.ProductID
			default:
				return 0, fmt.Errorf("unsupported recipe item %T in product %d", item, p.ID)
			}
			batch.Queue(query, p.ID, position, ingredientID, subProductID, item.Amount(), item.DeclaredUnit())
		}
	}

	count := batch.Len()
	if err := r.execBatch(ctx, tx, batch, "recipe item"); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *catalogRepository) upsertConversions(ctx context.Context, tx pgx.Tx, rules []model.ConversionRule) error {
	query := `
		INSERT INTO unit_conversions (from_unit, to_unit, factor, ingredient_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT unit_conversions_unique DO UPDATE
		SET factor = EXCLUDED.factor
	`

	batch := &pgx.Batch{}
	for _, rule := range rules {
		batch.Queue(query, rule.FromUnit, rule.ToUnit, rule.Factor, rule.IngredientID)
	}
	return r.execBatch(ctx, tx, batch, "conversion rule")
}

// syncSequences moves the id sequences past the explicitly imported ids.
func (r *catalogRepository) syncSequences(ctx context.Context, tx pgx.Tx) error {
	for _, table := range []string{"ingredients", "products"} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`,
			table, table,
		)
		if _, err := tx.Exec(ctx, query); err != nil {
			r.logger.Error().Err(err).Str("table", table).Msg("failed to sync id sequence")
			return fmt.Errorf("failed to sync %s id sequence: %w", table, err)
		}
	}
	return nil
}

func (r *catalogRepository) execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, kind string) error {
	if batch.Len() == 0 {
		return nil
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("kind", kind).Int("index", i).Msg("failed to import catalog row")
			return fmt.Errorf("failed to import %s %d: %w", kind, i, err)
		}
	}
	return nil
}
