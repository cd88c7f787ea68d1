package model

import "github.com/shopspring/decimal"

// Ingredient is a raw stock item. StockLevel may be negative.
type Ingredient struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	StockLevel decimal.Decimal `json:"stockLevel" db:"stock_level"`
	StockUnit  string          `json:"stockUnit" db:"stock_unit"`
}

// StockedProduct is the ledger view of a stock-tracked product row.
type StockedProduct struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	StockLevel decimal.Decimal `json:"stockLevel" db:"stock_level"`
	StockUnit  string          `json:"stockUnit" db:"stock_unit"`
}

// StockAdjustment is a signed change applied to one ingredient or product row.
type StockAdjustment struct {
	ID    int64           `json:"id"`
	Delta decimal.Decimal `json:"delta"`
}

// AdjustmentSummary lists the stock changes made by one operation.
type AdjustmentSummary struct {
	Ingredients []StockAdjustment `json:"ingredients"`
	Products    []StockAdjustment `json:"products"`
}
