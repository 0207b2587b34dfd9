package main

import (
	"context"
	"fmt"

	"github.com/vsinha/chainalloc/pkg/application/services/allocation"
	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	// Regional DC falls back to the national DC
	b := memory.NewNetworkBuilder()
	national := b.AddLocation("NATIONAL_DC")
	regional := b.AddLocation("REGIONAL_DC")
	store := b.AddLocation("STORE_042")

	mustStock(b, national, "WIDGET", 500)
	mustStock(b, national, "GADGET", 40)
	mustStock(b, regional, "WIDGET", 60)
	mustStock(b, store, "WIDGET", 12)
	mustStock(b, store, "GIZMO", 3)

	if err := b.SetFallback(store, regional); err != nil {
		panic(err)
	}
	if err := b.SetFallback(regional, national); err != nil {
		panic(err)
	}

	network, err := b.Build()
	if err != nil {
		fmt.Printf("❌ Invalid network: %v\n", err)
		return
	}

	requests := []entities.LineItem{
		{Product: "WIDGET", Quantity: 100},
		{Product: "GADGET", Quantity: 50},
		{Product: "GIZMO", Quantity: 2},
	}

	fmt.Println("🚚 Allocating order at STORE_042...")
	report, err := allocation.NewService(network).Reserve(ctx, "STORE_042", requests)
	if err != nil {
		fmt.Printf("❌ Allocation failed: %v\n", err)
		return
	}

	fmt.Printf("Chain: %v\n\n", report.Chain)

	fmt.Println("📦 Satisfied:")
	for _, e := range report.Ledger.Satisfied {
		fmt.Printf("  %-12s %-8s %d\n", e.Location, e.Product, e.Quantity)
	}

	if len(report.Ledger.Unsatisfied) > 0 {
		fmt.Println("⚠️  Unsatisfied:")
		for _, e := range report.Ledger.Unsatisfied {
			fmt.Printf("  %-8s %d\n", e.Product, e.Quantity)
		}
	}

	fmt.Printf("\nFill rate: %s\n", report.FillRate.String())
}

func mustStock(b *memory.NetworkBuilder, id entities.LocationID, product entities.ProductName, qty entities.Quantity) {
	if err := b.AddStock(id, product, qty); err != nil {
		panic(err)
	}
}
