package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
)

func TestRecorder_ObserveAllocation(t *testing.T) {
	r := NewRecorder()

	ledger := entities.Ledger{
		Satisfied: []entities.SatisfiedEntry{
			{Location: "W1", Product: "A", Quantity: 100},
			{Location: "W1", Product: "B", Quantity: 20},
		},
		Unsatisfied: []entities.UnsatisfiedEntry{
			{Product: "A", Quantity: 50},
			{Product: "X", Quantity: 999},
		},
	}

	r.ObserveAllocation("W1", ledger, 1, time.Millisecond)
	r.ObserveFailure("W9")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("W1", "short")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("W9", "error")))
	assert.Equal(t, 120.0, testutil.ToFloat64(r.satisfiedUnits.WithLabelValues("W1")))
	assert.Equal(t, 1049.0, testutil.ToFloat64(r.unsatisfiedUnits.WithLabelValues("W1")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.chainDepth))
}
