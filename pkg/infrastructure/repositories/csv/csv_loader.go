package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/infrastructure/repositories/memory"
)

// Loader handles loading location networks and requests from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadNetwork reads a locations file (name,fallback) and an inventory file
// (location,product,quantity) and builds the validated network.
func (l *Loader) LoadNetwork(locationsFile, inventoryFile string) (*memory.Network, error) {
	locations, err := readFile(locationsFile, "locations", []string{"name", "fallback"})
	if err != nil {
		return nil, err
	}
	inventory, err := readFile(inventoryFile, "inventory", []string{"location", "product", "quantity"})
	if err != nil {
		return nil, err
	}
	return buildNetwork(locations, inventory)
}

// LoadRequests reads a requests file (product,quantity)
func (l *Loader) LoadRequests(filename string) ([]entities.LineItem, error) {
	records, err := readFile(filename, "requests", []string{"product", "quantity"})
	if err != nil {
		return nil, err
	}
	return parseRequests(records)
}

// ReadNetwork builds a network from CSV streams
func (l *Loader) ReadNetwork(locations, inventory io.Reader) (*memory.Network, error) {
	locRecords, err := read(locations, "locations", []string{"name", "fallback"})
	if err != nil {
		return nil, err
	}
	invRecords, err := read(inventory, "inventory", []string{"location", "product", "quantity"})
	if err != nil {
		return nil, err
	}
	return buildNetwork(locRecords, invRecords)
}

// ReadRequests parses requests from a CSV stream
func (l *Loader) ReadRequests(r io.Reader) ([]entities.LineItem, error) {
	records, err := read(r, "requests", []string{"product", "quantity"})
	if err != nil {
		return nil, err
	}
	return parseRequests(records)
}

func readFile(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	return read(file, kind, expectedHeader)
}

// read returns the data rows after validating the header and column counts
func read(r io.Reader, kind string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

func buildNetwork(locations, inventory [][]string) (*memory.Network, error) {
	b := memory.NewNetworkBuilder()

	for i, record := range locations {
		name := strings.TrimSpace(record[0])
		if name == "" {
			return nil, fmt.Errorf("locations CSV row %d: name cannot be empty", i+2)
		}
		if _, exists := b.ID(name); exists {
			return nil, fmt.Errorf("locations CSV row %d: duplicate location %s", i+2, name)
		}
		b.AddLocation(name)
	}

	for i, record := range locations {
		fallback := strings.TrimSpace(record[1])
		if fallback == "" {
			continue
		}
		if err := b.SetFallbackByName(strings.TrimSpace(record[0]), fallback); err != nil {
			return nil, fmt.Errorf("locations CSV row %d: %w", i+2, err)
		}
	}

	for i, record := range inventory {
		location := strings.TrimSpace(record[0])
		id, exists := b.ID(location)
		if !exists {
			return nil, fmt.Errorf("inventory CSV row %d: %w: %s", i+2, entities.ErrUnknownLocation, location)
		}

		quantity, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: invalid quantity: %s", i+2, record[2])
		}

		if err := b.AddStock(id, entities.ProductName(strings.TrimSpace(record[1])), entities.Quantity(quantity)); err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
	}

	return b.Build()
}

func parseRequests(records [][]string) ([]entities.LineItem, error) {
	requests := make([]entities.LineItem, 0, len(records))
	for i, record := range records {
		quantity, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("requests CSV row %d: invalid quantity: %s", i+2, record[1])
		}

		item, err := entities.NewLineItem(entities.ProductName(strings.TrimSpace(record[0])), entities.Quantity(quantity))
		if err != nil {
			return nil, fmt.Errorf("requests CSV row %d: %w", i+2, err)
		}
		requests = append(requests, item)
	}
	return requests, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}
