package memory

import "github.com/vsinha/chainalloc/pkg/domain/entities"

// SampleHead is the head location of the sample network
const SampleHead = "W3"

// BuildSampleNetwork builds the three-warehouse chain W3 -> W2 -> W1 and
// the request the demo run allocates against W3.
func BuildSampleNetwork() (*Network, []entities.LineItem, error) {
	stock := []struct {
		location string
		fallback string
		products map[entities.ProductName]entities.Quantity
	}{
		{"W1", "", map[entities.ProductName]entities.Quantity{"A": 100, "B": 100, "C": 100}},
		{"W2", "W1", map[entities.ProductName]entities.Quantity{"A": 100, "B": 20, "C": 20}},
		{"W3", "W2", map[entities.ProductName]entities.Quantity{"A": 200, "B": 80, "C": 60}},
	}

	b := NewNetworkBuilder()
	for _, s := range stock {
		id := b.AddLocation(s.location)
		// Map iteration order is random; keep inventory order stable.
		for _, product := range []entities.ProductName{"A", "B", "C"} {
			if err := b.AddStock(id, product, s.products[product]); err != nil {
				return nil, nil, err
			}
		}
		if s.fallback != "" {
			if err := b.SetFallbackByName(s.location, s.fallback); err != nil {
				return nil, nil, err
			}
		}
	}

	network, err := b.Build()
	if err != nil {
		return nil, nil, err
	}

	requests := []entities.LineItem{
		{Product: "A", Quantity: 50},
		{Product: "B", Quantity: 100},
		{Product: "C", Quantity: 100},
	}
	return network, requests, nil
}
