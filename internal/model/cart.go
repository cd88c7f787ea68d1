package model

import "github.com/shopspring/decimal"

// CartLine is a product in a cart with its quantity and unit price.
type CartLine struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Cart is an immutable list of cart lines. Every method returns a new Cart
// and leaves the receiver untouched.
type Cart struct {
	lines []CartLine
}

// CartTotals holds the derived money amounts of a cart.
type CartTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// NewCart returns a cart holding a copy of lines.
func NewCart(lines ...CartLine) Cart {
	return Cart{lines: append([]CartLine(nil), lines...)}
}

// Lines returns a copy of the cart lines.
func (c Cart) Lines() []CartLine {
	return append([]CartLine(nil), c.lines...)
}

// Add adds one unit of product, merging with an existing line.
func (c Cart) Add(product Product) Cart {
	lines := c.Lines()
	for i := range lines {
		if lines[i].ProductID == product.ID {
			lines[i].Quantity++
			return Cart{lines: lines}
		}
	}

	lines = append(lines, CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  1,
	})
	return Cart{lines: lines}
}

// Remove drops the line for productID.
func (c Cart) Remove(productID int64) Cart {
	lines := make([]CartLine, 0, len(c.lines))
	for _, line := range c.lines {
		if line.ProductID != productID {
			lines = append(lines, line)
		}
	}
	return Cart{lines: lines}
}

// SetQuantity changes the quantity of a line. A quantity of zero or less
// removes the line.
func (c Cart) SetQuantity(productID int64, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(productID)
	}

	lines := c.Lines()
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
		}
	}
	return Cart{lines: lines}
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// Totals computes subtotal, tax and total for the given tax rate.
func (c Cart) Totals(taxRate decimal.Decimal) CartTotals {
	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	tax := subtotal.Mul(taxRate)

	return CartTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// CheckoutRequest builds the checkout payload for the cart.
func (c Cart) CheckoutRequest(actorID string, taxRate decimal.Decimal) *CheckoutRequest {
	items := make([]CheckoutItem, len(c.lines))
	for i, line := range c.lines {
		items[i] = CheckoutItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}

	return &CheckoutRequest{
		Items:   items,
		Total:   c.Totals(taxRate).Total,
		ActorID: actorID,
	}
}

// QuoteRequest lists the products to price before checkout.
type QuoteRequest struct {
	Items   []QuoteItem `json:"items"`
	ActorID string      `json:"actorId"`
}

// QuoteItem is a product and the number of units wanted.
type QuoteItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// QuoteResponse carries the priced cart and the checkout payload built from it.
type QuoteResponse struct {
	Lines    []CartLine       `json:"lines"`
	Totals   CartTotals       `json:"totals"`
	Checkout *CheckoutRequest `json:"checkout"`
}
