package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLogEntry records an ingredient purchase that increased stock.
type PurchaseLogEntry struct {
	ID                int64           `json:"id" db:"id"`
	IngredientID      int64           `json:"ingredientId" db:"ingredient_id"`
	QuantityPurchased decimal.Decimal `json:"quantityPurchased" db:"quantity_purchased"`
	Unit              string          `json:"unit" db:"unit"`
	TotalCost         decimal.Decimal `json:"totalCost" db:"total_cost"`
	UserID            string          `json:"userId" db:"user_id"`
	Supplier          *string         `json:"supplier,omitempty" db:"supplier"`
	Notes             *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
}

// PurchaseRequest represents the payload for logging a purchase.
type PurchaseRequest struct {
	IngredientID int64           `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	UserID       string          `json:"userId"`
	Supplier     *string         `json:"supplier,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty"`
}

// PurchaseResponse returns the stored log entry and the stock change it caused.
type PurchaseResponse struct {
	Entry      PurchaseLogEntry `json:"entry"`
	StockDelta decimal.Decimal  `json:"stockDelta"`
	StockUnit  string           `json:"stockUnit"`
}
