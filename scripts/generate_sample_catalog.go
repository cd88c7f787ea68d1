//go:build ignore

package main

import (
	"log"
	"os"
	"path/filepath"

	"pos-inventory/internal/catalog"
)

func ptr[T any](v T) *T {
	return &v
}

// generateSampleCatalog writes a café catalog snapshot for local runs:
// coffee beans, milk and sugar; an espresso shot preparation; a double shot
// bundle; and a latte sweetened with a teaspoon of sugar.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	snapshot := &catalog.Snapshot{
		Version: catalog.SnapshotVersion,
		Ingredients: []catalog.Ingredient{
			{ID: 1, Name: "Coffee beans", StockLevel: "5000", StockUnit: "gram"},
			{ID: 2, Name: "Milk", StockLevel: "20000", StockUnit: "millilitre"},
			{ID: 3, Name: "Sugar", StockLevel: "2000", StockUnit: "gram"},
			{ID: 4, Name: "Cocoa powder", StockLevel: "1000", StockUnit: "gram"},
		},
		Conversions: []catalog.Conversion{
			{FromUnit: "kilogram", ToUnit: "gram", Factor: "1000"},
			{FromUnit: "litre", ToUnit: "millilitre", Factor: "1000"},
			{FromUnit: "teaspoon", ToUnit: "gram", Factor: "4.2", IngredientID: ptr(int64(3))},
			{FromUnit: "tablespoon", ToUnit: "teaspoon", Factor: "3", IngredientID: ptr(int64(4))},
			{FromUnit: "teaspoon", ToUnit: "gram", Factor: "2.5", IngredientID: ptr(int64(4))},
		},
		Products: []catalog.Product{
			{
				ID:         10,
				Name:       "Espresso shot",
				Price:      "0",
				StockLevel: ptr("0"),
				StockUnit:  ptr("shot"),
				Recipe: []catalog.Component{
					{IngredientID: ptr(int64(1)), Quantity: "18", Unit: "gram"},
				},
			},
			{
				ID:    11,
				Name:  "Double shot",
				Price: "0",
				Recipe: []catalog.Component{
					{ProductID: ptr(int64(10)), Quantity: "2", Unit: "shot"},
				},
			},
			{
				ID:         12,
				Name:       "Latte",
				Price:      "4.50",
				Categories: []string{"coffee", "milk"},
				IsForSale:  true,
				Recipe: []catalog.Component{
					{ProductID: ptr(int64(11)), Quantity: "1", Unit: "unit"},
					{IngredientID: ptr(int64(2)), Quantity: "200", Unit: "millilitre"},
					{IngredientID: ptr(int64(3)), Quantity: "1", Unit: "teaspoon"},
				},
			},
			{
				ID:         13,
				Name:       "Mocha",
				Price:      "5.00",
				Categories: []string{"coffee", "chocolate"},
				IsForSale:  true,
				Recipe: []catalog.Component{
					{ProductID: ptr(int64(10)), Quantity: "1", Unit: "shot"},
					{IngredientID: ptr(int64(2)), Quantity: "180", Unit: "millilitre"},
					{IngredientID: ptr(int64(4)), Quantity: "1", Unit: "tablespoon"},
				},
			},
			{
				ID:         14,
				Name:       "Muffin",
				Price:      "3.25",
				Categories: []string{"bakery"},
				IsForSale:  true,
			},
		},
	}

	if err := snapshot.Validate(); err != nil {
		log.Fatalf("Sample catalog is invalid: %v", err)
	}

	filePath := filepath.Join(dataDir, "sample.msgpack.gz")
	file, err := os.Create(filePath)
	if err != nil {
		log.Fatalf("Failed to create file %s: %v", filePath, err)
	}
	defer file.Close()

	if err := catalog.Encode(file, snapshot); err != nil {
		log.Fatalf("Failed to write %s: %v", filePath, err)
	}

	log.Printf("Created %s with %d ingredients, %d products and %d conversion rules",
		filePath, len(snapshot.Ingredients), len(snapshot.Products), len(snapshot.Conversions))
}
