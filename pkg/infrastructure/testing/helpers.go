package testing

import (
	"fmt"
	"math/rand"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/infrastructure/repositories/memory"
)

// LocationSpec describes one location for BuildNetwork
type LocationSpec struct {
	Name     string
	Fallback string
	Stock    []entities.InventoryRecord
}

// BuildNetwork builds a network from specs - panics on validation error
func BuildNetwork(specs ...LocationSpec) *memory.Network {
	b := memory.NewNetworkBuilder()
	for _, spec := range specs {
		id := b.AddLocation(spec.Name)
		for _, rec := range spec.Stock {
			if err := b.AddStock(id, rec.Product, rec.Quantity); err != nil {
				panic(err)
			}
		}
	}
	for _, spec := range specs {
		if spec.Fallback == "" {
			continue
		}
		if err := b.SetFallbackByName(spec.Name, spec.Fallback); err != nil {
			panic(err)
		}
	}

	network, err := b.Build()
	if err != nil {
		panic(err)
	}
	return network
}

// Stock is shorthand for a single inventory record
func Stock(product string, qty int64) entities.InventoryRecord {
	return entities.InventoryRecord{Product: entities.ProductName(product), Quantity: entities.Quantity(qty)}
}

// Request is shorthand for a single line item
func Request(product string, qty int64) entities.LineItem {
	return entities.LineItem{Product: entities.ProductName(product), Quantity: entities.Quantity(qty)}
}

// RandomChain builds a straight chain L0 -> L1 -> ... of the given length with
// random stock over products P0..P(products-1); some products are left out of
// some locations.
func RandomChain(rng *rand.Rand, length, products int) (*memory.Network, string) {
	specs := make([]LocationSpec, length)
	for i := 0; i < length; i++ {
		spec := LocationSpec{Name: fmt.Sprintf("L%d", i)}
		if i+1 < length {
			spec.Fallback = fmt.Sprintf("L%d", i+1)
		}
		for p := 0; p < products; p++ {
			if rng.Intn(4) == 0 {
				continue
			}
			spec.Stock = append(spec.Stock, Stock(fmt.Sprintf("P%d", p), rng.Int63n(60)))
		}
		specs[i] = spec
	}
	return BuildNetwork(specs...), "L0"
}

// RandomRequests builds up to n line items over products P0..P(products-1),
// including zero quantities and repeated products.
func RandomRequests(rng *rand.Rand, n, products int) []entities.LineItem {
	requests := make([]entities.LineItem, 0, n)
	for i := 0; i < n; i++ {
		requests = append(requests, Request(fmt.Sprintf("P%d", rng.Intn(products+1)), rng.Int63n(120)))
	}
	return requests
}

// SliceRepository is a LocationRepository over hand-built locations. Unlike
// memory.Network it performs no validation, so tests can hand it cycles.
type SliceRepository struct {
	Items   []entities.Location
	Lookups []entities.LocationID
}

func (r *SliceRepository) Location(id entities.LocationID) (*entities.Location, error) {
	r.Lookups = append(r.Lookups, id)
	if id < 0 || int(id) >= len(r.Items) {
		return nil, fmt.Errorf("%w: id %d", entities.ErrUnknownLocation, id)
	}
	return &r.Items[id], nil
}

func (r *SliceRepository) LocationByName(name string) (*entities.Location, error) {
	for i := range r.Items {
		if r.Items[i].Name == name {
			return &r.Items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", entities.ErrUnknownLocation, name)
}

func (r *SliceRepository) Locations() []*entities.Location {
	out := make([]*entities.Location, 0, len(r.Items))
	for i := range r.Items {
		out = append(out, &r.Items[i])
	}
	return out
}
