package catalog

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"pos-inventory/internal/model"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is the snapshot format version written by Encode.
const SnapshotVersion = 1

// Snapshot is the wire form of a catalog published by the catalog owner.
// Decimal values travel as strings so no precision is lost.
type Snapshot struct {
	Version     int          `msgpack:"version"`
	Ingredients []Ingredient `msgpack:"ingredients"`
	Conversions []Conversion `msgpack:"conversions"`
	Products    []Product    `msgpack:"products"`
}

// Ingredient is a raw material in a snapshot.
type Ingredient struct {
	ID         int64  `msgpack:"id"`
	Name       string `msgpack:"name"`
	StockLevel string `msgpack:"stock_level"`
	StockUnit  string `msgpack:"stock_unit"`
}

// Conversion is a unit conversion rule in a snapshot. A nil IngredientID
// makes the rule generic.
type Conversion struct {
	FromUnit     string `msgpack:"from_unit"`
	ToUnit       string `msgpack:"to_unit"`
	Factor       string `msgpack:"factor"`
	IngredientID *int64 `msgpack:"ingredient_id,omitempty"`
}

// Product is a sellable item or preparation in a snapshot.
type Product struct {
	ID         int64       `msgpack:"id"`
	Name       string      `msgpack:"name"`
	Price      string      `msgpack:"price"`
	Categories []string    `msgpack:"categories,omitempty"`
	IsForSale  bool        `msgpack:"is_for_sale"`
	StockLevel *string     `msgpack:"stock_level,omitempty"`
	StockUnit  *string     `msgpack:"stock_unit,omitempty"`
	Recipe     []Component `msgpack:"recipe,omitempty"`
}

// Component is one recipe line. Exactly one of IngredientID and ProductID
// is set.
type Component struct {
	IngredientID *int64 `msgpack:"ingredient_id,omitempty"`
	ProductID    *int64 `msgpack:"product_id,omitempty"`
	Quantity     string `msgpack:"quantity"`
	Unit         string `msgpack:"unit"`
}

// Encode writes s as gzipped msgpack.
func Encode(w io.Writer, s *Snapshot) error {
	gz := gzip.NewWriter(w)

	if err := msgpack.NewEncoder(gz).Encode(s); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// Decode reads a gzipped msgpack snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var s Snapshot
	if err := msgpack.NewDecoder(gz).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// Validate checks the snapshot for consistency and returns every problem
// found, joined.
func (s *Snapshot) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if s.Version != SnapshotVersion {
		fail("unsupported snapshot version %d", s.Version)
	}

	ingredientIDs := make(map[int64]bool, len(s.Ingredients))
	names := make(map[string]bool, len(s.Ingredients))
	for _, ing := range s.Ingredients {
		switch {
		case ing.ID <= 0:
			fail("ingredient %q: id must be positive", ing.Name)
		case ingredientIDs[ing.ID]:
			fail("ingredient %d: duplicate id", ing.ID)
		}
		ingredientIDs[ing.ID] = true

		name := strings.ToLower(strings.TrimSpace(ing.Name))
		switch {
		case name == "":
			fail("ingredient %d: name is required", ing.ID)
		case names[name]:
			fail("ingredient %d: duplicate name %q", ing.ID, ing.Name)
		}
		names[name] = true

		if strings.TrimSpace(ing.StockUnit) == "" {
			fail("ingredient %d: stock unit is required", ing.ID)
		}
		if _, err := parseDecimal(ing.StockLevel); err != nil {
			fail("ingredient %d: stock level: %w", ing.ID, err)
		}
	}

	for i, c := range s.Conversions {
		from, to := strings.TrimSpace(c.FromUnit), strings.TrimSpace(c.ToUnit)
		if from == "" || to == "" {
			fail("conversion %d: both units are required", i)
		} else if strings.EqualFold(from, to) {
			fail("conversion %d: from and to units must differ", i)
		}
		if factor, err := parseDecimal(c.Factor); err != nil {
			fail("conversion %d: factor: %w", i, err)
		} else if !factor.IsPositive() {
			fail("conversion %d: factor must be positive", i)
		}
		if c.IngredientID != nil && !ingredientIDs[*c.IngredientID] {
			fail("conversion %d: unknown ingredient %d", i, *c.IngredientID)
		}
	}

	productIDs := make(map[int64]bool, len(s.Products))
	for _, p := range s.Products {
		if p.ID <= 0 {
			fail("product %q: id must be positive", p.Name)
		} else if productIDs[p.ID] {
			fail("product %d: duplicate id", p.ID)
		}
		productIDs[p.ID] = true
	}

	for _, p := range s.Products {
		if strings.TrimSpace(p.Name) == "" {
			fail("product %d: name is required", p.ID)
		}
		if price, err := parseDecimal(p.Price); err != nil {
			fail("product %d: price: %w", p.ID, err)
		} else if price.IsNegative() {
			fail("product %d: price must not be negative", p.ID)
		}

		if (p.StockLevel == nil) != (p.StockUnit == nil) {
			fail("product %d: stock level and stock unit must be set together", p.ID)
		}
		if p.StockLevel != nil {
			if _, err := parseDecimal(*p.StockLevel); err != nil {
				fail("product %d: stock level: %w", p.ID, err)
			}
		}

		for i, c := range p.Recipe {
			switch {
			case (c.IngredientID == nil) == (c.ProductID == nil):
				fail("product %d recipe item %d: exactly one of ingredient and product is required", p.ID, i)
			case c.IngredientID != nil && !ingredientIDs[*c.IngredientID]:
				fail("product %d recipe item %d: unknown ingredient %d", p.ID, i, *c.IngredientID)
			case c.ProductID != nil && *c.ProductID == p.ID:
				fail("product %d recipe item %d: product cannot contain itself", p.ID, i)
			case c.ProductID != nil && !productIDs[*c.ProductID]:
				fail("product %d recipe item %d: unknown product %d", p.ID, i, *c.ProductID)
			}

			if qty, err := parseDecimal(c.Quantity); err != nil {
				fail("product %d recipe item %d: quantity: %w", p.ID, i, err)
			} else if !qty.IsPositive() {
				fail("product %d recipe item %d: quantity must be positive", p.ID, i)
			}
			if strings.TrimSpace(c.Unit) == "" {
				fail("product %d recipe item %d: unit is required", p.ID, i)
			}
		}
	}

	return errors.Join(errs...)
}

// ToModel validates the snapshot and converts it to catalog model types.
func (s *Snapshot) ToModel() (*model.Catalog, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog snapshot: %w", err)
	}

	catalog := &model.Catalog{
		Ingredients: make([]model.Ingredient, 0, len(s.Ingredients)),
		Products:    make([]model.Product, 0, len(s.Products)),
		Conversions: make([]model.ConversionRule, 0, len(s.Conversions)),
	}

	for _, ing := range s.Ingredients {
		catalog.Ingredients = append(catalog.Ingredients, model.Ingredient{
			ID:         ing.ID,
			Name:       strings.TrimSpace(ing.Name),
			StockLevel: mustDecimal(ing.StockLevel),
			StockUnit:  strings.TrimSpace(ing.StockUnit),
		})
	}

	for _, c := range s.Conversions {
		catalog.Conversions = append(catalog.Conversions, model.ConversionRule{
			FromUnit:     strings.TrimSpace(c.FromUnit),
			ToUnit:       strings.TrimSpace(c.ToUnit),
			Factor:       mustDecimal(c.Factor),
			IngredientID: c.IngredientID,
		})
	}

	for _, p := range s.Products {
		product := model.Product{
			ID:         p.ID,
			Name:       strings.TrimSpace(p.Name),
			Price:      mustDecimal(p.Price),
			Categories: p.Categories,
			IsForSale:  p.IsForSale,
			Recipe:     make(model.Recipe, 0, len(p.Recipe)),
		}
		if product.Categories == nil {
			product.Categories = []string{}
		}
		if p.StockLevel != nil {
			level := mustDecimal(*p.StockLevel)
			unit := strings.TrimSpace(*p.StockUnit)
			product.StockLevel = &level
			product.StockUnit = &unit
		}

		for _, c := range p.Recipe {
			item, err := model.NewRecipeItem(c.IngredientID, c.ProductID, mustDecimal(c.Quantity), strings.TrimSpace(c.Unit))
			if err != nil {
				return nil, fmt.Errorf("product %d: %w", p.ID, err)
			}
			product.Recipe = append(product.Recipe, item)
		}

		catalog.Products = append(catalog.Products, product)
	}

	return catalog, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, errors.New("value is required")
	}
	return decimal.NewFromString(strings.TrimSpace(raw))
}

// mustDecimal parses a value already accepted by Validate.
func mustDecimal(raw string) decimal.Decimal {
	d, _ := parseDecimal(raw)
	return d
}
