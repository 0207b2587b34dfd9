package entities

import "errors"

var (
	// ErrInvalidQuantity is returned for request or stock quantities below zero
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrDuplicateProduct is returned when a location stocks the same product twice
	ErrDuplicateProduct = errors.New("duplicate product")
	// ErrCyclicChain is returned when a fallback chain revisits a location
	ErrCyclicChain = errors.New("cyclic chain")
	// ErrUnknownLocation is returned for ids or names that are not in the network
	ErrUnknownLocation = errors.New("unknown location")
	// ErrChainTooDeep is returned when a walk exceeds the configured depth limit
	ErrChainTooDeep = errors.New("chain too deep")
)
