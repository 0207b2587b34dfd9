package allocation

import (
	"github.com/vsinha/chainalloc/pkg/domain/entities"
)

// Resolve decides how much of one line item a location's own stock covers.
// It reads the location's inventory and never modifies it.
func Resolve(loc *entities.Location, item entities.LineItem) entities.Outcome {
	if item.Quantity == 0 {
		return entities.NoOutcome()
	}

	available, found := loc.Stock(item.Product)
	switch {
	case !found:
		return entities.MissingOutcome(item.Product, item.Quantity)
	case available >= item.Quantity:
		return entities.FullOutcome(loc.Name, item.Product, item.Quantity)
	default:
		return entities.PartialOutcome(loc.Name, item.Product, available, item.Quantity-available)
	}
}
