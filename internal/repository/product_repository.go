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

const productColumns = `id, name, price, categories, is_for_sale, stock_level, stock_unit`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves products with their recipes, with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := r.collectProducts(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachRecipes(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product with its recipe.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	products := []model.Product{*p}
	if err := r.attachRecipes(ctx, products); err != nil {
		return nil, err
	}

	return &products[0], nil
}

// GetByIDs retrieves multiple products with their recipes.
func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	products, err := r.collectProducts(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachRecipes(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// ValidateProductsExist checks if all provided product IDs exist in the database.
func (r *productRepository) ValidateProductsExist(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	query := `
		SELECT COUNT(DISTINCT id)
		FROM products
		WHERE id = ANY($1)
	`

	var count int
	err := r.pool.QueryRow(ctx, query, ids).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to validate products exist")
		return fmt.Errorf("failed to validate products exist: %w", err)
	}

	if count != len(unique) {
		r.logger.Warn().
			Int("expected", len(unique)).
			Int("found", count).
			Msg("not all product IDs exist")
		return model.ErrProductNotFound
	}

	return nil
}

func (r *productRepository) collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// attachRecipes loads the recipe rows of every product in one query.
func (r *productRepository) attachRecipes(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	index := make(map[int64]int, len(products))
	ids := make([]int64, 0, len(products))
	for i := range products {
		index[products[i].ID] = i
		ids = append(ids, products[i].ID)
		products[i].Recipe = model.Recipe{}
	}

	query := `
		SELECT product_id, ingredient_id, sub_product_id, quantity, unit
		FROM recipe_items
		WHERE product_id = ANY($1)
		ORDER BY product_id, position, id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query recipe items")
		return fmt.Errorf("failed to query recipe items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID    int64
			ingredientID *int64
			subProductID *int64
			quantity     decimal.Decimal
			unit         string
		)
		if err := rows.Scan(&productID, &ingredientID, &subProductID, &quantity, &unit); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan recipe item row")
			return fmt.Errorf("failed to scan recipe item: %w", err)
		}

		item, err := model.NewRecipeItem(ingredientID, subProductID, quantity, unit)
		if err != nil {
			r.logger.Error().Err(err).Int64("product_id", productID).Msg("invalid recipe item")
			return fmt.Errorf("invalid recipe item of product %d: %w", productID, err)
		}

		i := index[productID]
		products[i].Recipe = append(products[i].Recipe, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating recipe item rows")
		return fmt.Errorf("error iterating recipe items: %w", err)
	}

	return nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p          model.Product
		stockLevel decimal.NullDecimal
	)
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Categories, &p.IsForSale, &stockLevel, &p.StockUnit)
	if err != nil {
		return nil, err
	}

	if stockLevel.Valid {
		level := stockLevel.Decimal
		p.StockLevel = &level
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}

	return &p, nil
}
