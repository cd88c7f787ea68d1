package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a completed sale. Orders are never updated after insert.
type Order struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Total     decimal.Decimal `json:"total" db:"total"`
	CashierID string          `json:"cashierId" db:"cashier_id"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID int64           `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// CheckoutRequest represents the request payload for checking out a cart.
type CheckoutRequest struct {
	Items   []CheckoutItem  `json:"items"`
	Total   decimal.Decimal `json:"total"`
	ActorID string          `json:"actorId"`
}

// CheckoutItem represents a single line in a checkout request.
type CheckoutItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	ID          uuid.UUID          `json:"id"`
	Total       decimal.Decimal    `json:"total"`
	CashierID   string             `json:"cashierId"`
	CreatedAt   time.Time          `json:"createdAt"`
	Items       []OrderItem        `json:"items"`
	Products    []Product          `json:"products"`
	Adjustments *AdjustmentSummary `json:"adjustments,omitempty"`
}

// RestockRequest represents the request payload for restocking a preparation.
type RestockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}
