package events

import (
	"github.com/google/uuid"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
)

const (
	AllocationCompletedEvent = "allocation.completed"
	ShortageIdentifiedEvent  = "shortage.identified"
)

// AllocationCompleted is published once per successful allocation run
type AllocationCompleted struct {
	RunID          uuid.UUID       `json:"run_id"`
	Head           string          `json:"head"`
	Ledger         entities.Ledger `json:"ledger"`
	FullySatisfied bool            `json:"fully_satisfied"`
}

// ShortageIdentified is published for every unsatisfied entry of a run
type ShortageIdentified struct {
	RunID    uuid.UUID                 `json:"run_id"`
	Head     string                    `json:"head"`
	Shortage entities.UnsatisfiedEntry `json:"shortage"`
}

// StreamID returns the stream an allocation run's events are appended to
func StreamID(runID uuid.UUID) string {
	return "allocation-" + runID.String()
}

func NewAllocationCompletedEvent(runID uuid.UUID, head string, ledger entities.Ledger) Event {
	return envelope(AllocationCompletedEvent, StreamID(runID), AllocationCompleted{
		RunID:          runID,
		Head:           head,
		Ledger:         ledger,
		FullySatisfied: ledger.FullySatisfied(),
	})
}

func NewShortageIdentifiedEvent(runID uuid.UUID, head string, shortage entities.UnsatisfiedEntry) Event {
	return envelope(ShortageIdentifiedEvent, StreamID(runID), ShortageIdentified{
		RunID:    runID,
		Head:     head,
		Shortage: shortage,
	})
}
