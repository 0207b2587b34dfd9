package events

import (
	"sync"

	"go.uber.org/zap"
)

type subscription struct {
	handler EventHandler
	types   map[string]bool
}

// InMemoryEventStore keeps allocation streams in memory. Subscribers are
// notified asynchronously; handler errors are logged, not returned.
type InMemoryEventStore struct {
	mu         sync.RWMutex
	streams    map[string][]Envelope
	order      []string // stream ids, oldest first
	log        []Envelope
	subs       []subscription
	maxStreams int
	logger     *zap.Logger
}

// StoreOption configures an InMemoryEventStore
type StoreOption func(*InMemoryEventStore)

// WithRetention keeps at most maxStreams streams; opening a new stream past
// the limit evicts the oldest one from both its stream and the global log.
// Zero keeps everything.
func WithRetention(maxStreams int) StoreOption {
	return func(s *InMemoryEventStore) { s.maxStreams = maxStreams }
}

// NewInMemoryEventStore creates an empty store
func NewInMemoryEventStore(logger *zap.Logger, opts ...StoreOption) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InMemoryEventStore{
		streams: make(map[string][]Envelope),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppendEvent stores event at the end of streamID and assigns its sequence
func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mu.Lock()
	existing, ok := s.streams[streamID]
	if !ok {
		s.order = append(s.order, streamID)
		s.evict()
	}
	next := len(existing) + 1

	var stored Envelope
	if e, ok := event.(Envelope); ok {
		stored = e.withSequence(streamID, next)
	} else {
		stored = Envelope{
			Kind:       event.Type(),
			Stream:     streamID,
			Payload:    event.Data(),
			OccurredAt: event.Timestamp(),
			Sequence:   next,
		}
	}

	s.streams[streamID] = append(s.streams[streamID], stored)
	s.log = append(s.log, stored)
	targets := s.subscribersFor(stored.Kind)
	s.mu.Unlock()

	for _, h := range targets {
		go s.deliver(h, stored)
	}
	return nil
}

// ReadEvents returns the events of streamID starting at sequence fromVersion
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fromVersion < 1 {
		fromVersion = 1
	}
	return toEvents(s.streams[streamID], fromVersion-1), nil
}

// ReadAllEvents returns every retained event from a zero-based position in
// append order. Positions shift down when a stream is evicted.
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	return toEvents(s.log, fromPosition), nil
}

// Subscribe registers handler for the given event types
func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	s.subs = append(s.subs, subscription{handler: handler, types: types})
	return nil
}

// Unsubscribe removes every subscription of handler
func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.subs[:0]
	for _, sub := range s.subs {
		if sub.handler != handler {
			kept = append(kept, sub)
		}
	}
	s.subs = kept
	return nil
}

// StreamCount returns the number of retained streams
func (s *InMemoryEventStore) StreamCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams)
}

// evict drops the oldest streams beyond the retention limit; the lock must be held
func (s *InMemoryEventStore) evict() {
	if s.maxStreams <= 0 || len(s.order) <= s.maxStreams {
		return
	}

	dropped := make(map[string]bool)
	for len(s.order) > s.maxStreams {
		dropped[s.order[0]] = true
		delete(s.streams, s.order[0])
		s.order = s.order[1:]
	}

	kept := s.log[:0]
	for _, e := range s.log {
		if !dropped[e.Stream] {
			kept = append(kept, e)
		}
	}
	s.log = kept
	s.logger.Debug("evicted event streams", zap.Int("count", len(dropped)))
}

// subscribersFor must be called with the lock held
func (s *InMemoryEventStore) subscribersFor(kind string) []EventHandler {
	var handlers []EventHandler
	for _, sub := range s.subs {
		if sub.types[kind] && sub.handler.CanHandle(kind) {
			handlers = append(handlers, sub.handler)
		}
	}
	return handlers
}

func (s *InMemoryEventStore) deliver(h EventHandler, e Envelope) {
	if err := h.Handle(e); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", e.Kind),
			zap.String("stream", e.Stream),
			zap.Int("sequence", e.Sequence),
			zap.Error(err))
	}
}

func toEvents(envelopes []Envelope, from int) []Event {
	if from >= len(envelopes) {
		return []Event{}
	}
	out := make([]Event, 0, len(envelopes)-from)
	for _, e := range envelopes[from:] {
		out = append(out, e)
	}
	return out
}
