package dto

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
)

func TestNewAllocationReport_Summary(t *testing.T) {
	requested := []entities.LineItem{
		{Product: "A", Quantity: 150},
		{Product: "X", Quantity: 999},
	}
	ledger := entities.Ledger{
		Satisfied:   []entities.SatisfiedEntry{{Location: "W1", Product: "A", Quantity: 100}},
		Unsatisfied: []entities.UnsatisfiedEntry{{Product: "A", Quantity: 50}, {Product: "X", Quantity: 999}},
	}

	report := NewAllocationReport(uuid.New(), "W1", []string{"W1"}, requested, ledger, 0)

	if len(report.Summary) != 2 {
		t.Fatalf("Expected 2 summary rows, got %d", len(report.Summary))
	}
	if report.Summary[0].Product != "A" || report.Summary[1].Product != "X" {
		t.Errorf("Expected request order A, X; got %s, %s", report.Summary[0].Product, report.Summary[1].Product)
	}
	if !report.Conserved() {
		t.Errorf("Expected conservation to hold: %+v", report.Summary)
	}

	// 100 of 1149 units
	want := decimal.RequireFromString("0.087")
	if !report.FillRate.Equal(want) {
		t.Errorf("Expected fill rate %s, got %s", want, report.FillRate)
	}
}

func TestFillRate_EmptyRequest(t *testing.T) {
	rate := FillRate(nil, entities.NewLedger())
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected fill rate 1 for empty request, got %s", rate)
	}
}

func TestFillRate_LargeTotalsDoNotWrap(t *testing.T) {
	requested := []entities.LineItem{
		{Product: "A", Quantity: math.MaxInt64},
		{Product: "B", Quantity: math.MaxInt64},
	}
	ledger := entities.Ledger{
		Satisfied: []entities.SatisfiedEntry{{Location: "W1", Product: "A", Quantity: math.MaxInt64}},
	}

	rate := FillRate(requested, ledger)
	if !rate.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Expected fill rate 0.5, got %s", rate)
	}
}

func TestConserved_DetectsMismatch(t *testing.T) {
	report := &AllocationReport{
		Summary: []ProductSummary{{Product: "A", Requested: 10, Satisfied: 4, Unsatisfied: 5}},
	}
	if report.Conserved() {
		t.Error("Expected mismatch to be detected")
	}
}
