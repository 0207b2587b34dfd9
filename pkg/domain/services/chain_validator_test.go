package services

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
)

func fallbackTo(id entities.LocationID) *entities.LocationID {
	return &id
}

func TestChainValidator_ValidChain(t *testing.T) {
	locations := []entities.Location{
		{ID: 0, Name: "W1"},
		{ID: 1, Name: "W2", Fallback: fallbackTo(0)},
		{ID: 2, Name: "W3", Fallback: fallbackTo(1)},
		{ID: 3, Name: "W4", Fallback: fallbackTo(1)}, // shared fallback target
	}

	result := NewChainValidator().Validate(locations)

	if !result.Valid() {
		t.Fatalf("Expected valid network, got errors: %v", result.Errors)
	}
	if result.Err() != nil {
		t.Errorf("Expected nil error, got %v", result.Err())
	}
}

func TestChainValidator_DetectSimpleCycle(t *testing.T) {
	// W1 -> W2 -> W1
	locations := []entities.Location{
		{ID: 0, Name: "W1", Fallback: fallbackTo(1)},
		{ID: 1, Name: "W2", Fallback: fallbackTo(0)},
	}

	result := NewChainValidator().Validate(locations)

	if !result.HasCycles {
		t.Fatal("Expected cycle to be detected")
	}
	if len(result.CyclePaths) != 1 {
		t.Fatalf("Expected exactly one cycle, got %v", result.CyclePaths)
	}
	if want := []string{"W1", "W2", "W1"}; !reflect.DeepEqual(result.CyclePaths[0], want) {
		t.Errorf("Expected cycle path %v, got %v", want, result.CyclePaths[0])
	}
	if !errors.Is(result.Err(), entities.ErrCyclicChain) {
		t.Errorf("Expected ErrCyclicChain, got %v", result.Err())
	}
}

func TestChainValidator_DetectCycleBehindTail(t *testing.T) {
	// W0 -> W1 -> W2 -> W3 -> W1
	locations := []entities.Location{
		{ID: 0, Name: "W0", Fallback: fallbackTo(1)},
		{ID: 1, Name: "W1", Fallback: fallbackTo(2)},
		{ID: 2, Name: "W2", Fallback: fallbackTo(3)},
		{ID: 3, Name: "W3", Fallback: fallbackTo(1)},
	}

	result := NewChainValidator().Validate(locations)

	if len(result.CyclePaths) != 1 {
		t.Fatalf("Expected exactly one cycle, got %v", result.CyclePaths)
	}
	if want := []string{"W1", "W2", "W3", "W1"}; !reflect.DeepEqual(result.CyclePaths[0], want) {
		t.Errorf("Expected cycle path %v, got %v", want, result.CyclePaths[0])
	}
}

func TestChainValidator_SelfReference(t *testing.T) {
	locations := []entities.Location{
		{ID: 0, Name: "W1", Fallback: fallbackTo(0)},
	}

	result := NewChainValidator().Validate(locations)

	if !result.HasCycles {
		t.Fatal("Expected self-reference to be reported as a cycle")
	}
}

func TestChainValidator_DanglingAndDuplicate(t *testing.T) {
	locations := []entities.Location{
		{ID: 0, Name: "W1", Fallback: fallbackTo(7)},
		{ID: 1, Name: "W1"},
	}

	result := NewChainValidator().Validate(locations)

	if len(result.DanglingFallback) != 1 || result.DanglingFallback[0] != "W1" {
		t.Errorf("Expected dangling fallback on W1, got %v", result.DanglingFallback)
	}
	if len(result.DuplicateNames) != 1 {
		t.Errorf("Expected one duplicate name, got %v", result.DuplicateNames)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Expected 2 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !errors.Is(result.Err(), entities.ErrUnknownLocation) {
		t.Errorf("Expected ErrUnknownLocation, got %v", result.Err())
	}
}
