package services

import (
	"fmt"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
)

// ChainValidator checks the integrity of a fallback network
type ChainValidator struct{}

// NewChainValidator creates a new chain validator
func NewChainValidator() *ChainValidator {
	return &ChainValidator{}
}

// ValidationResult contains the results of network validation
type ValidationResult struct {
	HasCycles        bool
	CyclePaths       [][]string
	DanglingFallback []string
	DuplicateNames   []string
	Errors           []string
}

// Valid reports whether no errors were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns the first problem as an error wrapping the matching sentinel,
// or nil when the network is valid.
func (r *ValidationResult) Err() error {
	switch {
	case r.HasCycles:
		return fmt.Errorf("%w: %v", entities.ErrCyclicChain, r.CyclePaths[0])
	case len(r.DanglingFallback) > 0:
		return fmt.Errorf("%w: fallback of %s", entities.ErrUnknownLocation, r.DanglingFallback[0])
	case len(r.DuplicateNames) > 0:
		return fmt.Errorf("duplicate location name: %s", r.DuplicateNames[0])
	}
	return nil
}

// Validate inspects locations whose ID equals their position in the slice
func (v *ChainValidator) Validate(locations []entities.Location) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:       make([][]string, 0),
		DanglingFallback: make([]string, 0),
		DuplicateNames:   make([]string, 0),
		Errors:           make([]string, 0),
	}

	seen := make(map[string]bool, len(locations))
	for _, loc := range locations {
		if seen[loc.Name] {
			result.DuplicateNames = append(result.DuplicateNames, loc.Name)
			result.Errors = append(result.Errors, fmt.Sprintf("Duplicate location name: %s", loc.Name))
		}
		seen[loc.Name] = true

		if loc.Fallback != nil && (*loc.Fallback < 0 || int(*loc.Fallback) >= len(locations)) {
			result.DanglingFallback = append(result.DanglingFallback, loc.Name)
			result.Errors = append(result.Errors, fmt.Sprintf("Location %s falls back to unknown id %d", loc.Name, *loc.Fallback))
		}
	}

	result.CyclePaths = v.detectCycles(locations)
	result.HasCycles = len(result.CyclePaths) > 0
	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("Fallback cycle detected: %v", cycle))
	}

	return result
}

const (
	unvisited = iota
	onPath
	done
)

// detectCycles walks each fallback chain once. Every location has at most
// one fallback, so a chain that reaches a location still on the current
// path has closed a cycle.
func (v *ChainValidator) detectCycles(locations []entities.Location) [][]string {
	state := make([]int, len(locations))
	cycles := make([][]string, 0)

	for start := range locations {
		if state[start] != unvisited {
			continue
		}

		path := make([]int, 0)
		current := start
		for {
			if state[current] == done {
				break
			}
			if state[current] == onPath {
				cycleStart := 0
				for i, id := range path {
					if id == current {
						cycleStart = i
						break
					}
				}
				cycle := make([]string, 0, len(path)-cycleStart+1)
				for _, id := range path[cycleStart:] {
					cycle = append(cycle, locations[id].Name)
				}
				cycle = append(cycle, locations[current].Name) // Close the cycle
				cycles = append(cycles, cycle)
				break
			}

			state[current] = onPath
			path = append(path, current)

			fb := locations[current].Fallback
			if fb == nil || *fb < 0 || int(*fb) >= len(locations) {
				break
			}
			current = int(*fb)
		}

		for _, id := range path {
			state[id] = done
		}
	}

	return cycles
}
