package events

import (
	"time"
)

// Event is a fact published about an allocation run
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
}

// EventHandler consumes published events
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore appends events to per-run streams and fans them out to subscribers
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// Envelope carries an event payload together with its stream position.
// Sequence is assigned by the store on append and starts at 1 per stream.
type Envelope struct {
	Kind       string      `json:"type"`
	Stream     string      `json:"stream"`
	Payload    interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurred_at"`
	Sequence   int         `json:"sequence"`
}

func (e Envelope) Type() string         { return e.Kind }
func (e Envelope) StreamID() string     { return e.Stream }
func (e Envelope) Data() interface{}    { return e.Payload }
func (e Envelope) Timestamp() time.Time { return e.OccurredAt }
func (e Envelope) Version() int         { return e.Sequence }

// withSequence returns a copy positioned in stream
func (e Envelope) withSequence(stream string, sequence int) Envelope {
	e.Stream = stream
	e.Sequence = sequence
	return e
}

func envelope(kind, stream string, payload interface{}) Envelope {
	return Envelope{Kind: kind, Stream: stream, Payload: payload, OccurredAt: time.Now().UTC()}
}

// HandlerFunc adapts a function into an EventHandler for a fixed set of types
type HandlerFunc struct {
	Types []string
	Fn    func(Event) error
}

func (h *HandlerFunc) Handle(event Event) error {
	return h.Fn(event)
}

func (h *HandlerFunc) CanHandle(eventType string) bool {
	for _, t := range h.Types {
		if t == eventType {
			return true
		}
	}
	return false
}
