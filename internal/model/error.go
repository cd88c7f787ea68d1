package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeIngredientNotFound  = "INGREDIENT_NOT_FOUND"
	ErrCodeProductNotTracked   = "PRODUCT_NOT_TRACKED"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInvalidConversion   = "INVALID_CONVERSION"
	ErrCodeConversionNotFound  = "CONVERSION_NOT_FOUND"
	ErrCodeDuplicateConversion = "DUPLICATE_CONVERSION"
	ErrCodeInvalidPurchase     = "INVALID_PURCHASE"
	ErrCodeInvalidOrder        = "INVALID_ORDER"
	ErrCodeStockUnitChanged    = "STOCK_UNIT_CHANGED"
	ErrCodeNoConversionPath    = "NO_CONVERSION_PATH"
	ErrCodeRecipeDepthExceeded = "RECIPE_DEPTH_EXCEEDED"
	ErrCodeTransactionConflict = "TRANSACTION_CONFLICT"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrIngredientNotFound  = NewDomainError(ErrCodeIngredientNotFound, "One or more ingredients not found")
	ErrProductNotTracked   = NewDomainError(ErrCodeProductNotTracked, "Product is not stock-tracked")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrConversionNotFound  = NewDomainError(ErrCodeConversionNotFound, "Conversion rule not found")
	ErrDuplicateConversion = NewDomainError(ErrCodeDuplicateConversion, "This specific conversion rule already exists.")
	ErrTransactionConflict = NewDomainError(ErrCodeTransactionConflict, "Concurrent stock update conflict, please retry")
)

// NoConversionPathError is returned when the conversion graph has no route
// between two units for the requested ingredient.
type NoConversionPathError struct {
	FromUnit string
	ToUnit   string
}

func (e *NoConversionPathError) Error() string {
	return fmt.Sprintf("no conversion path from %q to %q", e.FromUnit, e.ToUnit)
}

// RecipeDepthExceededError is returned when recipe expansion nests deeper than
// the recipe depth limit, which usually means a product contains itself.
type RecipeDepthExceededError struct {
	ProductID int64
}

func (e *RecipeDepthExceededError) Error() string {
	return fmt.Sprintf("recipe of product %d exceeds the maximum nesting depth", e.ProductID)
}

// ValidationError reports a rejected request field. Its message is shown to
// the caller as is.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with the given code.
func NewValidationError(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the API error code carried by err, or ErrCodeInternalError.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code
	}

	var pathErr *NoConversionPathError
	if errors.As(err, &pathErr) {
		return ErrCodeNoConversionPath
	}

	var depthErr *RecipeDepthExceededError
	if errors.As(err, &depthErr) {
		return ErrCodeRecipeDepthExceeded
	}

	return ErrCodeInternalError
}
