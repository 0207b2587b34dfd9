package repositories

import "github.com/vsinha/chainalloc/pkg/domain/entities"

// LocationRepository provides read access to a network of locations
type LocationRepository interface {
	Location(id entities.LocationID) (*entities.Location, error)
	LocationByName(name string) (*entities.Location, error)
	Locations() []*entities.Location
}
