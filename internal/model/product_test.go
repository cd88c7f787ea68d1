package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipe_JSONRoundTripKeepsVariants(t *testing.T) {
	recipe := Recipe{
		IngredientComponent{IngredientID: 3, Quantity: decimal.NewFromInt(18), Unit: "gram"},
		SubProductComponent{ProductID: 9, Quantity: decimal.NewFromInt(2), Unit: "unit"},
	}

	data, err := json.Marshal(recipe)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"ingredient"`)
	assert.Contains(t, string(data), `"type":"product"`)

	var decoded Recipe
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	ing, ok := decoded[0].(IngredientComponent)
	require.True(t, ok)
	assert.Equal(t, int64(3), ing.IngredientID)
	assert.Equal(t, "gram", ing.Unit)

	sub, ok := decoded[1].(SubProductComponent)
	require.True(t, ok)
	assert.Equal(t, int64(9), sub.ProductID)
}

func TestRecipe_UnmarshalRejectsUnknownType(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`[{"type":"tool","quantity":"1","unit":"x"}]`), &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestNewRecipeItem(t *testing.T) {
	one := int64(1)
	two := int64(2)

	tests := []struct {
		name         string
		ingredientID *int64
		productID    *int64
		expectError  bool
		expectType   string
	}{
		{name: "Ingredient row", ingredientID: &one, expectType: "ingredient"},
		{name: "Sub-product row", productID: &two, expectType: "product"},
		{name: "Both set", ingredientID: &one, productID: &two, expectError: true},
		{name: "Neither set", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewRecipeItem(tt.ingredientID, tt.productID, decimal.NewFromInt(1), "unit")
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			switch item.(type) {
			case IngredientComponent:
				assert.Equal(t, "ingredient", tt.expectType)
			case SubProductComponent:
				assert.Equal(t, "product", tt.expectType)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "Domain error", err: ErrProductNotFound, expected: ErrCodeProductNotFound},
		{name: "Wrapped domain error", err: fmt.Errorf("failed: %w", ErrTransactionConflict), expected: ErrCodeTransactionConflict},
		{name: "No conversion path", err: fmt.Errorf("x: %w", &NoConversionPathError{FromUnit: "a", ToUnit: "b"}), expected: ErrCodeNoConversionPath},
		{name: "Depth exceeded", err: &RecipeDepthExceededError{ProductID: 4}, expected: ErrCodeRecipeDepthExceeded},
		{name: "Validation", err: NewValidationError(ErrCodeMissingField, "name is required"), expected: ErrCodeMissingField},
		{name: "Unknown", err: errors.New("boom"), expected: ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CodeOf(tt.err))
		})
	}
}

func TestNoConversionPathError_Message(t *testing.T) {
	err := &NoConversionPathError{FromUnit: "teaspoon", ToUnit: "gram"}
	assert.Equal(t, `no conversion path from "teaspoon" to "gram"`, err.Error())
}
