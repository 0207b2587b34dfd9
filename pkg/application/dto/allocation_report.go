package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
)

// AllocationReport contains the complete output of one chain allocation
type AllocationReport struct {
	RunID     uuid.UUID           `json:"run_id"`
	Head      string              `json:"head"`
	Chain     []string            `json:"chain"`
	Requested []entities.LineItem `json:"requested"`
	Ledger    entities.Ledger     `json:"ledger"`
	Summary   []ProductSummary    `json:"summary"`
	FillRate  decimal.Decimal     `json:"fill_rate"`
	Elapsed   time.Duration       `json:"elapsed_ns"`
}

// ProductSummary totals one product across the whole ledger
type ProductSummary struct {
	Product     entities.ProductName `json:"product"`
	Requested   entities.Quantity    `json:"requested"`
	Satisfied   entities.Quantity    `json:"satisfied"`
	Unsatisfied entities.Quantity    `json:"unsatisfied"`
}

// Conserved reports whether satisfied plus unsatisfied equals requested
func (s ProductSummary) Conserved() bool {
	return s.Satisfied+s.Unsatisfied == s.Requested
}

// NewAllocationReport builds a report with per-product totals ordered by
// first appearance in the request.
func NewAllocationReport(runID uuid.UUID, head string, chain []string, requested []entities.LineItem, ledger entities.Ledger, elapsed time.Duration) *AllocationReport {
	return &AllocationReport{
		RunID:     runID,
		Head:      head,
		Chain:     chain,
		Requested: requested,
		Ledger:    ledger,
		Summary:   Summarize(requested, ledger),
		FillRate:  FillRate(requested, ledger),
		Elapsed:   elapsed,
	}
}

// Summarize totals requested, satisfied and unsatisfied quantities per product
func Summarize(requested []entities.LineItem, ledger entities.Ledger) []ProductSummary {
	index := make(map[entities.ProductName]int)
	summary := make([]ProductSummary, 0)

	row := func(p entities.ProductName) *ProductSummary {
		i, ok := index[p]
		if !ok {
			i = len(summary)
			index[p] = i
			summary = append(summary, ProductSummary{Product: p})
		}
		return &summary[i]
	}

	for _, item := range requested {
		row(item.Product).Requested += item.Quantity
	}
	for _, e := range ledger.Satisfied {
		row(e.Product).Satisfied += e.Quantity
	}
	for _, e := range ledger.Unsatisfied {
		row(e.Product).Unsatisfied += e.Quantity
	}
	return summary
}

// FillRate returns satisfied units over requested units, rounded to four
// places. An empty request is fully filled. Sums are kept in decimal so
// large request sets cannot wrap.
func FillRate(requested []entities.LineItem, ledger entities.Ledger) decimal.Decimal {
	total, satisfied := decimal.Zero, decimal.Zero
	for _, item := range requested {
		total = total.Add(decimal.NewFromInt(int64(item.Quantity)))
	}
	for _, e := range ledger.Satisfied {
		satisfied = satisfied.Add(decimal.NewFromInt(int64(e.Quantity)))
	}
	if total.IsZero() {
		return decimal.NewFromInt(1)
	}
	return satisfied.Div(total).Round(4)
}

// Conserved reports whether every product obeys the conservation law
func (r *AllocationReport) Conserved() bool {
	for _, s := range r.Summary {
		if !s.Conserved() {
			return false
		}
	}
	return true
}
