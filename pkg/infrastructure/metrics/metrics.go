// Package metrics exposes Prometheus collectors for allocation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
)

const namespace = "chainalloc"

// Recorder holds the allocation collectors and the registry they live in
type Recorder struct {
	registry *prometheus.Registry

	runs               *prometheus.CounterVec
	satisfiedUnits     *prometheus.CounterVec
	unsatisfiedUnits   *prometheus.CounterVec
	chainDepth         prometheus.Histogram
	allocationDuration prometheus.Histogram
}

// NewRecorder creates a Recorder registered on a fresh registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_runs_total",
			Help:      "Chain allocation calls by head location and result.",
		}, []string{"head", "result"}),
		satisfiedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "satisfied_units_total",
			Help:      "Units satisfied, by the location that covered them.",
		}, []string{"location"}),
		unsatisfiedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unsatisfied_units_total",
			Help:      "Units left unsatisfied after the chain was exhausted, by head location.",
		}, []string{"head"}),
		chainDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chain_depth",
			Help:      "Number of locations consulted per allocation call.",
			Buckets:   prometheus.LinearBuckets(1, 1, 8),
		}),
		allocationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_duration_seconds",
			Help:      "Wall time of chain allocation calls.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}

	r.registry.MustRegister(r.runs, r.satisfiedUnits, r.unsatisfiedUnits, r.chainDepth, r.allocationDuration)
	return r
}

// Registry returns the registry for exposition
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveAllocation records a completed allocation call
func (r *Recorder) ObserveAllocation(head string, ledger entities.Ledger, depth int, elapsed time.Duration) {
	result := "satisfied"
	if !ledger.FullySatisfied() {
		result = "short"
	}
	r.runs.WithLabelValues(head, result).Inc()

	for _, e := range ledger.Satisfied {
		r.satisfiedUnits.WithLabelValues(e.Location).Add(float64(e.Quantity))
	}
	var short entities.Quantity
	for _, e := range ledger.Unsatisfied {
		short += e.Quantity
	}
	if short > 0 {
		r.unsatisfiedUnits.WithLabelValues(head).Add(float64(short))
	}

	r.chainDepth.Observe(float64(depth))
	r.allocationDuration.Observe(elapsed.Seconds())
}

// ObserveFailure records an allocation call rejected with an error
func (r *Recorder) ObserveFailure(head string) {
	r.runs.WithLabelValues(head, "error").Inc()
}
