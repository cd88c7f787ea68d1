package model

// Catalog is a complete set of catalog data supplied by an external source.
type Catalog struct {
	Ingredients []Ingredient
	Products    []Product
	Conversions []ConversionRule
}

// ImportSummary counts the rows written by a catalog import.
type ImportSummary struct {
	Ingredients int `json:"ingredients"`
	Products    int `json:"products"`
	RecipeItems int `json:"recipeItems"`
	Conversions int `json:"conversions"`
}
