package entities

import (
	"fmt"
)

// InventoryRecord is one product's available stock at a location
type InventoryRecord struct {
	Product  ProductName `json:"product"`
	Quantity Quantity    `json:"quantity"`
}

// NewInventoryRecord creates a validated InventoryRecord
func NewInventoryRecord(product ProductName, quantity Quantity) (InventoryRecord, error) {
	if product == "" {
		return InventoryRecord{}, fmt.Errorf("product name cannot be empty")
	}
	if quantity < 0 {
		return InventoryRecord{}, fmt.Errorf("%w: stock of %s is %d", ErrInvalidQuantity, product, quantity)
	}
	return InventoryRecord{Product: product, Quantity: quantity}, nil
}

// LocationID addresses a Location inside a network arena
type LocationID int

// Location is an inventory-holding node of a fallback chain. A Location
// references its fallback by id and does not own it.
type Location struct {
	ID        LocationID
	Name      string
	Inventory []InventoryRecord
	Fallback  *LocationID

	index map[ProductName]int
}

// NewLocation creates a validated Location. Inventory order is kept as given.
func NewLocation(id LocationID, name string, inventory []InventoryRecord, fallback *LocationID) (*Location, error) {
	if name == "" {
		return nil, fmt.Errorf("location name cannot be empty")
	}

	records := make([]InventoryRecord, 0, len(inventory))
	index := make(map[ProductName]int, len(inventory))
	for _, rec := range inventory {
		if rec.Quantity < 0 {
			return nil, fmt.Errorf("location %s: %w: stock of %s is %d", name, ErrInvalidQuantity, rec.Product, rec.Quantity)
		}
		if _, exists := index[rec.Product]; exists {
			return nil, fmt.Errorf("location %s: %w: %s", name, ErrDuplicateProduct, rec.Product)
		}
		index[rec.Product] = len(records)
		records = append(records, rec)
	}

	var fb *LocationID
	if fallback != nil {
		v := *fallback
		fb = &v
	}

	return &Location{
		ID:        id,
		Name:      name,
		Inventory: records,
		Fallback:  fb,
		index:     index,
	}, nil
}

// Stock returns the recorded quantity of a product and whether the
// location carries it at all.
func (l *Location) Stock(product ProductName) (Quantity, bool) {
	if l.index == nil {
		// Locations built as literals fall back to a linear scan.
		for _, rec := range l.Inventory {
			if rec.Product == product {
				return rec.Quantity, true
			}
		}
		return 0, false
	}
	i, ok := l.index[product]
	if !ok {
		return 0, false
	}
	return l.Inventory[i].Quantity, true
}

// HasFallback reports whether the location has a fallback
func (l *Location) HasFallback() bool {
	return l.Fallback != nil
}
