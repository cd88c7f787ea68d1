// Package recipe flattens nested product recipes into the raw ingredient
// and stock-tracked product quantities they consume.
package recipe

import (
	"context"
	"fmt"
	"sort"

	"pos-inventory/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MaxDepth is the deepest chain of untracked sub-products a recipe may nest.
const MaxDepth = 10

// ProductSource looks up products together with their recipes.
type ProductSource interface {
	// GetByID returns the product with its recipe, or nil when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// IngredientKey identifies one accumulation bucket: an ingredient measured
// in the unit a recipe declared for it.
type IngredientKey struct {
	IngredientID int64
	Unit         string
}

// Plan is the flattened consumption of one or more order lines.
// Quantities of the same ingredient in different units stay in separate buckets.
type Plan struct {
	Ingredients map[IngredientKey]decimal.Decimal
	SubProducts map[int64]decimal.Decimal
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{
		Ingredients: make(map[IngredientKey]decimal.Decimal),
		SubProducts: make(map[int64]decimal.Decimal),
	}
}

func (p *Plan) addIngredient(key IngredientKey, qty decimal.Decimal) {
	p.Ingredients[key] = p.Ingredients[key].Add(qty)
}

func (p *Plan) addSubProduct(id int64, qty decimal.Decimal) {
	p.SubProducts[id] = p.SubProducts[id].Add(qty)
}

// Merge adds every bucket of other into p.
func (p *Plan) Merge(other *Plan) {
	if other == nil {
		return
	}
	for key, qty := range other.Ingredients {
		p.addIngredient(key, qty)
	}
	for id, qty := range other.SubProducts {
		p.addSubProduct(id, qty)
	}
}

// IngredientIDs returns the distinct ingredient ids in ascending order.
func (p *Plan) IngredientIDs() []int64 {
	seen := make(map[int64]struct{}, len(p.Ingredients))
	ids := make([]int64, 0, len(p.Ingredients))
	for key := range p.Ingredients {
		if _, ok := seen[key.IngredientID]; ok {
			continue
		}
		seen[key.IngredientID] = struct{}{}
		ids = append(ids, key.IngredientID)
	}
	sortIDs(ids)
	return ids
}

// SubProductIDs returns the stock-tracked product ids in ascending order.
func (p *Plan) SubProductIDs() []int64 {
	ids := make([]int64, 0, len(p.SubProducts))
	for id := range p.SubProducts {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// IngredientKeys returns the buckets ordered by ingredient id, then unit.
func (p *Plan) IngredientKeys() []IngredientKey {
	keys := make([]IngredientKey, 0, len(p.Ingredients))
	for key := range p.Ingredients {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].IngredientID != keys[j].IngredientID {
			return keys[i].IngredientID < keys[j].IngredientID
		}
		return keys[i].Unit < keys[j].Unit
	})
	return keys
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
}

// Expander walks product recipes.
type Expander struct {
	products ProductSource
	logger   zerolog.Logger
}

// NewExpander creates an expander that reads recipes from products.
func NewExpander(products ProductSource, logger zerolog.Logger) *Expander {
	return &Expander{
		products: products,
		logger:   logger.With().Str("component", "recipe-expander").Logger(),
	}
}

// Expand flattens quantity units of the product into a plan.
//
// Ingredient components are accumulated per (ingredient, declared unit).
// Stock-tracked sub-products are leaves and are accumulated as whole units.
// Untracked sub-products are expanded in place. A stock-tracked root product
// is itself a leaf.
func (e *Expander) Expand(ctx context.Context, productID int64, quantity decimal.Decimal) (*Plan, error) {
	w := &walk{
		expander: e,
		cache:    make(map[int64]*model.Product),
		plan:     NewPlan(),
	}

	root, err := w.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	if root.IsTracked() {
		w.plan.addSubProduct(root.ID, quantity)
		return w.plan, nil
	}

	if err := w.expand(ctx, root, quantity, 0); err != nil {
		return nil, err
	}

	e.logger.Debug().
		Int64("product_id", productID).
		Str("quantity", quantity.String()).
		Int("ingredient_buckets", len(w.plan.Ingredients)).
		Int("sub_products", len(w.plan.SubProducts)).
		Msg("recipe expanded")

	return w.plan, nil
}

// DirectIngredients returns only the direct ingredient components of the
// product, scaled by quantity. Sub-product components are ignored.
func DirectIngredients(product *model.Product, quantity decimal.Decimal) *Plan {
	plan := NewPlan()
	for _, item := range product.Recipe {
		if c, ok := item.(model.IngredientComponent); ok {
			plan.addIngredient(IngredientKey{IngredientID: c.IngredientID, Unit: c.Unit}, c.Quantity.Mul(quantity))
		}
	}
	return plan
}

// walk holds the state of a single expansion.
type walk struct {
	expander *Expander
	cache    map[int64]*model.Product
	plan     *Plan
}

func (w *walk) product(ctx context.Context, id int64) (*model.Product, error) {
	if p, ok := w.cache[id]; ok {
		return p, nil
	}

	p, err := w.expander.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	if p == nil {
		w.expander.logger.Warn().Int64("product_id", id).Msg("recipe references missing product")
		return nil, model.ErrProductNotFound
	}

	w.cache[id] = p
	return p, nil
}

func (w *walk) expand(ctx context.Context, product *model.Product, multiplier decimal.Decimal, depth int) error {
	if depth > MaxDepth {
		w.expander.logger.Warn().
			Int64("product_id", product.ID).
			Int("depth", depth).
			Msg("recipe depth limit exceeded")
		return &model.RecipeDepthExceededError{ProductID: product.ID}
	}

	for _, item := range product.Recipe {
		switch c := item.(type) {
		case model.IngredientComponent:
			key := IngredientKey{IngredientID: c.IngredientID, Unit: c.Unit}
			w.plan.addIngredient(key, multiplier.Mul(c.Quantity))

		case model.SubProductComponent:
			sub, err := w.product(ctx, c.ProductID)
			if err != nil {
				return err
			}

			qty := multiplier.Mul(c.Quantity)
			if sub.IsTracked() {
				w.plan.addSubProduct(sub.ID, qty)
				continue
			}

			if err := w.expand(ctx, sub, qty, depth+1); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unsupported recipe item %T in product %d", item, product.ID)
		}
	}

	return nil
}
