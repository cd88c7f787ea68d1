package model

import "github.com/shopspring/decimal"

// ConversionRule states that 1 FromUnit equals Factor ToUnit. A nil
// IngredientID makes the rule generic.
type ConversionRule struct {
	ID             int64           `json:"id" db:"id"`
	FromUnit       string          `json:"fromUnit" db:"from_unit"`
	ToUnit         string          `json:"toUnit" db:"to_unit"`
	Factor         decimal.Decimal `json:"factor" db:"factor"`
	IngredientID   *int64          `json:"ingredientId" db:"ingredient_id"`
	IngredientName *string         `json:"ingredientName,omitempty" db:"ingredient_name"`
}

// IsGeneric reports whether the rule applies to every ingredient.
func (r ConversionRule) IsGeneric() bool {
	return r.IngredientID == nil
}

// ConversionRequest represents the payload for creating or updating a rule.
type ConversionRequest struct {
	FromUnit     string          `json:"fromUnit"`
	ToUnit       string          `json:"toUnit"`
	Factor       decimal.Decimal `json:"factor"`
	IngredientID *int64          `json:"ingredientId,omitempty"`
}

// ResolveResponse carries a resolved conversion factor.
type ResolveResponse struct {
	FromUnit     string          `json:"fromUnit"`
	ToUnit       string          `json:"toUnit"`
	IngredientID *int64          `json:"ingredientId,omitempty"`
	Factor       decimal.Decimal `json:"factor"`
}
