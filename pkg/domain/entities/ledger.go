package entities

// SatisfiedEntry records how much of a product a location covered
type SatisfiedEntry struct {
	Location string      `json:"location"`
	Product  ProductName `json:"product"`
	Quantity Quantity    `json:"quantity"`
}

// UnsatisfiedEntry records a shortfall left after the chain was exhausted
type UnsatisfiedEntry struct {
	Product  ProductName `json:"product"`
	Quantity Quantity    `json:"quantity"`
}

// Ledger is the ordered result of one chain allocation
type Ledger struct {
	Satisfied   []SatisfiedEntry   `json:"satisfied"`
	Unsatisfied []UnsatisfiedEntry `json:"unsatisfied"`
}

// NewLedger creates an empty ledger
func NewLedger() Ledger {
	return Ledger{
		Satisfied:   []SatisfiedEntry{},
		Unsatisfied: []UnsatisfiedEntry{},
	}
}

// Merge appends another ledger's entries after this ledger's own
func (l *Ledger) Merge(other Ledger) {
	l.Satisfied = append(l.Satisfied, other.Satisfied...)
	l.Unsatisfied = append(l.Unsatisfied, other.Unsatisfied...)
}

// TotalSatisfied sums satisfied quantities for a product
func (l Ledger) TotalSatisfied(product ProductName) Quantity {
	var total Quantity
	for _, e := range l.Satisfied {
		if e.Product == product {
			total += e.Quantity
		}
	}
	return total
}

// TotalUnsatisfied sums unsatisfied quantities for a product
func (l Ledger) TotalUnsatisfied(product ProductName) Quantity {
	var total Quantity
	for _, e := range l.Unsatisfied {
		if e.Product == product {
			total += e.Quantity
		}
	}
	return total
}

// FullySatisfied reports whether nothing is left unsatisfied
func (l Ledger) FullySatisfied() bool {
	return len(l.Unsatisfied) == 0
}

// OutcomeKind classifies how a single location resolved one line item
type OutcomeKind int

const (
	// OutcomeNone: zero quantity requested, nothing produced
	OutcomeNone OutcomeKind = iota
	// OutcomeFull: the location covered the whole request
	OutcomeFull
	// OutcomePartial: the location covered part of the request (possibly none of it)
	OutcomePartial
	// OutcomeMissing: the location does not carry the product
	OutcomeMissing
)

// String method for OutcomeKind enum
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNone:
		return "None"
	case OutcomeFull:
		return "Full"
	case OutcomePartial:
		return "Partial"
	case OutcomeMissing:
		return "Missing"
	default:
		return "Unknown"
	}
}

// Outcome is the result of resolving one line item at one location: at
// most one satisfied entry and at most one unsatisfied entry, never with a
// zero quantity.
type Outcome struct {
	kind        OutcomeKind
	satisfied   SatisfiedEntry
	unsatisfied UnsatisfiedEntry
}

// NoOutcome is the outcome of a zero-quantity request
func NoOutcome() Outcome {
	return Outcome{kind: OutcomeNone}
}

// FullOutcome covers the whole request at a location
func FullOutcome(location string, product ProductName, qty Quantity) Outcome {
	return Outcome{
		kind:      OutcomeFull,
		satisfied: SatisfiedEntry{Location: location, Product: product, Quantity: qty},
	}
}

// PartialOutcome covers available units and leaves the remainder short.
// available may be zero, in which case no satisfied entry is carried.
func PartialOutcome(location string, product ProductName, available, remainder Quantity) Outcome {
	return Outcome{
		kind:        OutcomePartial,
		satisfied:   SatisfiedEntry{Location: location, Product: product, Quantity: available},
		unsatisfied: UnsatisfiedEntry{Product: product, Quantity: remainder},
	}
}

// MissingOutcome leaves the whole request short
func MissingOutcome(product ProductName, qty Quantity) Outcome {
	return Outcome{
		kind:        OutcomeMissing,
		unsatisfied: UnsatisfiedEntry{Product: product, Quantity: qty},
	}
}

// Kind returns the outcome classification
func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// Satisfied returns the satisfied entry, if any
func (o Outcome) Satisfied() (SatisfiedEntry, bool) {
	switch o.kind {
	case OutcomeFull, OutcomePartial:
		return o.satisfied, o.satisfied.Quantity > 0
	}
	return SatisfiedEntry{}, false
}

// Unsatisfied returns the shortfall, if any
func (o Outcome) Unsatisfied() (UnsatisfiedEntry, bool) {
	switch o.kind {
	case OutcomePartial, OutcomeMissing:
		return o.unsatisfied, o.unsatisfied.Quantity > 0
	}
	return UnsatisfiedEntry{}, false
}
