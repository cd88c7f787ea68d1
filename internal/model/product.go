package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product represents a sellable item or preparation in the catalogue.
// A product with a nil StockLevel is not stock-tracked.
type Product struct {
	ID         int64            `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	Price      decimal.Decimal  `json:"price" db:"price"`
	Categories []string         `json:"categories" db:"categories"`
	Recipe     Recipe           `json:"recipe"`
	IsForSale  bool             `json:"isForSale" db:"is_for_sale"`
	StockLevel *decimal.Decimal `json:"stockLevel" db:"stock_level"`
	StockUnit  *string          `json:"stockUnit" db:"stock_unit"`
}

// IsTracked reports whether the product keeps its own stock level.
func (p *Product) IsTracked() bool {
	return p.StockLevel != nil
}

// RecipeItem is one component of a product recipe. It is either an
// IngredientComponent or a SubProductComponent.
type RecipeItem interface {
	// Amount returns the quantity of the component per unit of the parent product.
	Amount() decimal.Decimal

	// DeclaredUnit returns the unit the quantity is expressed in.
	DeclaredUnit() string

	isRecipeItem()
}

// IngredientComponent is a raw ingredient consumed by a recipe.
type IngredientComponent struct {
	IngredientID int64           `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
}

// Amount returns the quantity per unit of the parent product.
func (c IngredientComponent) Amount() decimal.Decimal {
	return c.Quantity
}

// DeclaredUnit returns the unit of the quantity.
func (c IngredientComponent) DeclaredUnit() string {
	return c.Unit
}

func (IngredientComponent) isRecipeItem() {}

// MarshalJSON tags the component with its variant.
func (c IngredientComponent) MarshalJSON() ([]byte, error) {
	type alias IngredientComponent
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "ingredient", alias: alias(c)})
}

// SubProductComponent is another product used inside a recipe.
type SubProductComponent struct {
	ProductID int64           `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
}

// Amount returns the quantity per unit of the parent product.
func (c SubProductComponent) Amount() decimal.Decimal {
	return c.Quantity
}

// DeclaredUnit returns the unit of the quantity.
func (c SubProductComponent) DeclaredUnit() string {
	return c.Unit
}

func (SubProductComponent) isRecipeItem() {}

// MarshalJSON tags the component with its variant.
func (c SubProductComponent) MarshalJSON() ([]byte, error) {
	type alias SubProductComponent
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "product", alias: alias(c)})
}

// Recipe is the ordered component list of a product.
type Recipe []RecipeItem

// UnmarshalJSON decodes components using their "type" tag.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	items := make(Recipe, 0, len(raw))
	for i, msg := range raw {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &head); err != nil {
			return fmt.Errorf("recipe item %d: %w", i, err)
		}

		switch head.Type {
		case "ingredient":
			var c IngredientComponent
			if err := json.Unmarshal(msg, &c); err != nil {
				return fmt.Errorf("recipe item %d: %w", i, err)
			}
			items = append(items, c)
		case "product":
			var c SubProductComponent
			if err := json.Unmarshal(msg, &c); err != nil {
				return fmt.Errorf("recipe item %d: %w", i, err)
			}
			items = append(items, c)
		default:
			return fmt.Errorf("recipe item %d: unknown type %q", i, head.Type)
		}
	}

	*r = items
	return nil
}

// NewRecipeItem builds a recipe component from a stored row, where exactly
// one of ingredientID and productID is set.
func NewRecipeItem(ingredientID, productID *int64, quantity decimal.Decimal, unit string) (RecipeItem, error) {
	switch {
	case ingredientID != nil && productID == nil:
		return IngredientComponent{IngredientID: *ingredientID, Quantity: quantity, Unit: unit}, nil
	case productID != nil && ingredientID == nil:
		return SubProductComponent{ProductID: *productID, Quantity: quantity, Unit: unit}, nil
	default:
		return nil, fmt.Errorf("recipe item must reference exactly one of ingredient or product")
	}
}

// ProductListResponse represents a page of products.
type ProductListResponse struct {
	Products []Product `json:"products"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}
