package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/chainalloc/pkg/application/dto"
	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/domain/repositories"
	"github.com/vsinha/chainalloc/pkg/infrastructure/events"
	"github.com/vsinha/chainalloc/pkg/infrastructure/metrics"
)

// Service runs chain allocations for hosts such as the CLI and the HTTP
// server, adding logging, metrics and event publication around ChainAllocate.
type Service struct {
	repo       repositories.LocationRepository
	logger     *zap.Logger
	recorder   *metrics.Recorder
	eventStore events.EventStore
	maxDepth   int
	newRunID   func() uuid.UUID
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records every allocation on the given recorder
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

// WithEventStore publishes allocation and shortage events to store
func WithEventStore(store events.EventStore) Option {
	return func(s *Service) { s.eventStore = store }
}

// WithMaxDepth bounds how many locations one call may consult; 0 disables the bound
func WithMaxDepth(depth int) Option {
	return func(s *Service) { s.maxDepth = depth }
}

// NewService creates a Service over a location repository
func NewService(repo repositories.LocationRepository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		logger:   zap.NewNop(),
		newRunID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reserve allocates requests starting at the named head location
func (s *Service) Reserve(ctx context.Context, head string, requests []entities.LineItem) (*dto.AllocationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc, err := s.repo.LocationByName(head)
	if err != nil {
		s.fail(head, err)
		return nil, err
	}

	startTime := time.Now()
	ledger, depth, err := walk(s.repo, loc.ID, requests, s.maxDepth)
	elapsed := time.Since(startTime)
	if err != nil {
		s.fail(head, err)
		return nil, fmt.Errorf("allocation from %s failed: %w", head, err)
	}

	chain := s.chainNames(loc)
	report := dto.NewAllocationReport(s.newRunID(), head, chain, requests, ledger, elapsed)

	s.logger.Info("allocation completed",
		zap.String("run_id", report.RunID.String()),
		zap.String("head", head),
		zap.Int("requested_lines", len(requests)),
		zap.Int("satisfied", len(ledger.Satisfied)),
		zap.Int("unsatisfied", len(ledger.Unsatisfied)),
		zap.Int("depth", depth),
		zap.String("fill_rate", report.FillRate.String()),
		zap.Duration("elapsed", elapsed))

	if s.recorder != nil {
		s.recorder.ObserveAllocation(head, ledger, depth, elapsed)
	}
	s.publish(report)

	return report, nil
}

func (s *Service) fail(head string, err error) {
	s.logger.Warn("allocation rejected", zap.String("head", head), zap.Error(err))
	if s.recorder != nil {
		s.recorder.ObserveFailure(head)
	}
}

func (s *Service) publish(report *dto.AllocationReport) {
	if s.eventStore == nil {
		return
	}

	stream := events.StreamID(report.RunID)
	toAppend := []events.Event{events.NewAllocationCompletedEvent(report.RunID, report.Head, report.Ledger)}
	for _, shortage := range report.Ledger.Unsatisfied {
		toAppend = append(toAppend, events.NewShortageIdentifiedEvent(report.RunID, report.Head, shortage))
	}

	for _, e := range toAppend {
		if err := s.eventStore.AppendEvent(stream, e); err != nil {
			s.logger.Error("failed to append event",
				zap.String("event_type", e.Type()),
				zap.String("stream", stream),
				zap.Error(err))
		}
	}
}

// chainNames lists the head and its fallbacks in walk order
func (s *Service) chainNames(head *entities.Location) []string {
	names := []string{head.Name}
	seen := map[entities.LocationID]bool{head.ID: true}
	loc := head
	for loc.Fallback != nil && !seen[*loc.Fallback] {
		next, err := s.repo.Location(*loc.Fallback)
		if err != nil {
			break
		}
		seen[next.ID] = true
		names = append(names, next.Name)
		loc = next
	}
	return names
}
