package memory

import (
	"fmt"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/domain/repositories"
	"github.com/vsinha/chainalloc/pkg/domain/services"
)

// Network is an immutable arena of locations addressed by LocationID.
// It is safe for concurrent readers.
type Network struct {
	locations []entities.Location
	byName    map[string]entities.LocationID
}

// Verify interface compliance
var _ repositories.LocationRepository = (*Network)(nil)

// Location returns the location stored under id
func (n *Network) Location(id entities.LocationID) (*entities.Location, error) {
	if id < 0 || int(id) >= len(n.locations) {
		return nil, fmt.Errorf("%w: id %d", entities.ErrUnknownLocation, id)
	}
	return &n.locations[id], nil
}

// LocationByName returns the location with the given name
func (n *Network) LocationByName(name string) (*entities.Location, error) {
	id, exists := n.byName[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnknownLocation, name)
	}
	return &n.locations[id], nil
}

// Locations returns all locations in insertion order
func (n *Network) Locations() []*entities.Location {
	locations := make([]*entities.Location, 0, len(n.locations))
	for i := range n.locations {
		locations = append(locations, &n.locations[i])
	}
	return locations
}

// Size returns the number of locations
func (n *Network) Size() int {
	return len(n.locations)
}

// Chain returns location names from head to the end of its fallback chain
func (n *Network) Chain(head string) ([]string, error) {
	loc, err := n.LocationByName(head)
	if err != nil {
		return nil, err
	}

	names := []string{loc.Name}
	for loc.Fallback != nil {
		// Build rejects cycles, so the walk terminates.
		loc = &n.locations[*loc.Fallback]
		names = append(names, loc.Name)
	}
	return names, nil
}

// FallbackName returns the name of a location's fallback, or "" when it has none
func (n *Network) FallbackName(loc *entities.Location) string {
	if loc.Fallback == nil {
		return ""
	}
	return n.locations[*loc.Fallback].Name
}

// Snapshot copies every location's recorded stock, keyed by location name
func (n *Network) Snapshot() map[string][]entities.InventoryRecord {
	snapshot := make(map[string][]entities.InventoryRecord, len(n.locations))
	for _, loc := range n.locations {
		records := make([]entities.InventoryRecord, len(loc.Inventory))
		copy(records, loc.Inventory)
		snapshot[loc.Name] = records
	}
	return snapshot
}

type pendingLocation struct {
	name      string
	inventory []entities.InventoryRecord
	products  map[entities.ProductName]bool
	fallback  *entities.LocationID
}

// NetworkBuilder assembles a Network and validates it on Build
type NetworkBuilder struct {
	pending []*pendingLocation
	byName  map[string]entities.LocationID
}

// NewNetworkBuilder creates an empty builder
func NewNetworkBuilder() *NetworkBuilder {
	return &NetworkBuilder{
		pending: make([]*pendingLocation, 0),
		byName:  make(map[string]entities.LocationID),
	}
}

// AddLocation registers a location and returns its id. Adding a name
// twice returns the existing id.
func (b *NetworkBuilder) AddLocation(name string) entities.LocationID {
	if id, exists := b.byName[name]; exists {
		return id
	}
	id := entities.LocationID(len(b.pending))
	b.pending = append(b.pending, &pendingLocation{
		name:     name,
		products: make(map[entities.ProductName]bool),
	})
	b.byName[name] = id
	return id
}

// ID returns the id of a registered location
func (b *NetworkBuilder) ID(name string) (entities.LocationID, bool) {
	id, exists := b.byName[name]
	return id, exists
}

// AddStock records a product's available quantity at a location
func (b *NetworkBuilder) AddStock(id entities.LocationID, product entities.ProductName, quantity entities.Quantity) error {
	p, err := b.get(id)
	if err != nil {
		return err
	}

	record, err := entities.NewInventoryRecord(product, quantity)
	if err != nil {
		return fmt.Errorf("location %s: %w", p.name, err)
	}
	if p.products[product] {
		return fmt.Errorf("location %s: %w: %s", p.name, entities.ErrDuplicateProduct, product)
	}

	p.products[product] = true
	p.inventory = append(p.inventory, record)
	return nil
}

// SetFallback points a location at its fallback
func (b *NetworkBuilder) SetFallback(id, fallback entities.LocationID) error {
	p, err := b.get(id)
	if err != nil {
		return err
	}
	if _, err := b.get(fallback); err != nil {
		return fmt.Errorf("fallback of %s: %w", p.name, err)
	}
	fb := fallback
	p.fallback = &fb
	return nil
}

// SetFallbackByName points a location at its fallback, both given by name
func (b *NetworkBuilder) SetFallbackByName(name, fallback string) error {
	id, exists := b.byName[name]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrUnknownLocation, name)
	}
	fb, exists := b.byName[fallback]
	if !exists {
		return fmt.Errorf("fallback of %s: %w: %s", name, entities.ErrUnknownLocation, fallback)
	}
	return b.SetFallback(id, fb)
}

// Build validates the assembled locations and returns the Network.
// Cyclic fallback chains are rejected here.
func (b *NetworkBuilder) Build() (*Network, error) {
	locations := make([]entities.Location, 0, len(b.pending))
	for i, p := range b.pending {
		loc, err := entities.NewLocation(entities.LocationID(i), p.name, p.inventory, p.fallback)
		if err != nil {
			return nil, err
		}
		locations = append(locations, *loc)
	}

	result := services.NewChainValidator().Validate(locations)
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("invalid location network: %w", err)
	}

	byName := make(map[string]entities.LocationID, len(b.byName))
	for name, id := range b.byName {
		byName[name] = id
	}

	return &Network{locations: locations, byName: byName}, nil
}

func (b *NetworkBuilder) get(id entities.LocationID) (*pendingLocation, error) {
	if id < 0 || int(id) >= len(b.pending) {
		return nil, fmt.Errorf("%w: id %d", entities.ErrUnknownLocation, id)
	}
	return b.pending[id], nil
}
