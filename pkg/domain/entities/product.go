package entities

import (
	"fmt"
	"math"
)

// ProductName identifies a product; names are compared exactly
type ProductName string

// Quantity represents an integer quantity of discrete units
type Quantity int64

// LineItem is a caller's ask for one product
type LineItem struct {
	Product  ProductName `json:"product" yaml:"product"`
	Quantity Quantity    `json:"quantity" yaml:"quantity"`
}

// NewLineItem creates a validated LineItem
func NewLineItem(product ProductName, quantity Quantity) (LineItem, error) {
	if product == "" {
		return LineItem{}, fmt.Errorf("product name cannot be empty")
	}
	if quantity < 0 {
		return LineItem{}, fmt.Errorf("%w: %s requested %d", ErrInvalidQuantity, product, quantity)
	}
	return LineItem{Product: product, Quantity: quantity}, nil
}

// ValidateRequests checks that every line item in a request set has a
// non-negative quantity and that the quantities sum without overflowing.
// Any per-product or satisfied total is then bounded by the request total.
func ValidateRequests(requests []LineItem) error {
	var total Quantity
	for i, item := range requests {
		if item.Quantity < 0 {
			return fmt.Errorf("%w: line %d (%s) requested %d", ErrInvalidQuantity, i+1, item.Product, item.Quantity)
		}
		if item.Quantity > math.MaxInt64-total {
			return fmt.Errorf("%w: request total overflows at line %d (%s)", ErrInvalidQuantity, i+1, item.Product)
		}
		total += item.Quantity
	}
	return nil
}
