package yaml

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/infrastructure/repositories/memory"
)

// Scenario is a network, a head and a request set read from one document
type Scenario struct {
	Head     string
	Network  *memory.Network
	Requests []entities.LineItem
}

type scenarioDocument struct {
	Head      string              `yaml:"head"`
	Locations []locationDocument  `yaml:"locations"`
	Requests  []entities.LineItem `yaml:"requests"`
}

type locationDocument struct {
	Name     string    `yaml:"name"`
	Fallback string    `yaml:"fallback"`
	Stock    yaml.Node `yaml:"stock"`
}

// LoadScenario reads a scenario file
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario %s: %w", path, err)
	}
	defer f.Close()

	scenario, err := ReadScenario(f)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return scenario, nil
}

// ReadScenario decodes a scenario and builds its network. Stock entries keep
// the order they are written in.
func ReadScenario(r io.Reader) (*Scenario, error) {
	var doc scenarioDocument
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}

	b := memory.NewNetworkBuilder()
	for _, loc := range doc.Locations {
		if loc.Name == "" {
			return nil, fmt.Errorf("location name cannot be empty")
		}
		if _, exists := b.ID(loc.Name); exists {
			return nil, fmt.Errorf("duplicate location %s", loc.Name)
		}
		b.AddLocation(loc.Name)
	}

	for _, loc := range doc.Locations {
		id, _ := b.ID(loc.Name)
		if err := addStock(b, id, loc); err != nil {
			return nil, err
		}
		if loc.Fallback != "" {
			if err := b.SetFallbackByName(loc.Name, loc.Fallback); err != nil {
				return nil, err
			}
		}
	}

	network, err := b.Build()
	if err != nil {
		return nil, err
	}

	if err := entities.ValidateRequests(doc.Requests); err != nil {
		return nil, err
	}
	if doc.Head != "" {
		if _, err := network.LocationByName(doc.Head); err != nil {
			return nil, fmt.Errorf("head: %w", err)
		}
	}

	return &Scenario{Head: doc.Head, Network: network, Requests: doc.Requests}, nil
}

func addStock(b *memory.NetworkBuilder, id entities.LocationID, loc locationDocument) error {
	node := &loc.Stock
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("location %s: stock must be a mapping (line %d)", loc.Name, node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		quantity, err := strconv.ParseInt(value.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("location %s: invalid quantity for %s (line %d): %s", loc.Name, key.Value, value.Line, value.Value)
		}
		if err := b.AddStock(id, entities.ProductName(key.Value), entities.Quantity(quantity)); err != nil {
			return fmt.Errorf("line %d: %w", key.Line, err)
		}
	}
	return nil
}
