package main

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopsched/pkg/application/services/scheduling"
	"github.com/vsinha/shopsched/pkg/domain/entities"
	"github.com/vsinha/shopsched/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	// Two bending jobs feed a leak test; the test consumes exhaust pipes
	// the first bending job produces.
	orders := []*entities.Order{
		mustOrder("1", "ORD-4500-1", "BUIG 1", entities.TypeA, 0, 6, 40),
		mustOrder("2", "ORD-4501-1", "BUIG 1", entities.TypeB, 12, 4, 20),
		mustOrder("3", "ORD-4500-2", "LEAKTEST 1", entities.TypeC, 8, 3, 40),
	}
	orders[0].ParentOrderNumber = "ORD-4500"
	orders[2].ParentOrderNumber = "ORD-4500"

	orderRepo := memory.NewOrderRepository(len(orders))
	if err := orderRepo.LoadOrders(orders); err != nil {
		log.Fatal(err)
	}

	steel, err := entities.NewMaterial("steel-plate", decimal.NewFromInt(100), "kg")
	if err != nil {
		log.Fatal(err)
	}
	inventoryRepo := memory.NewInventoryRepository()
	if err := inventoryRepo.LoadMaterials([]*entities.Material{steel}); err != nil {
		log.Fatal(err)
	}

	engine, err := scheduling.NewEngine(orderRepo, inventoryRepo, scheduling.Options{
		Recipes: entities.Recipes{
			entities.TypeA: {Consumes: "steel-plate", ConsumeRate: decimal.NewFromInt(2), Produces: "exhaust-pipe", ProduceRate: decimal.NewFromInt(1)},
			entities.TypeB: {Consumes: "steel-plate", ConsumeRate: decimal.NewFromInt(3)},
			entities.TypeC: {Consumes: "exhaust-pipe", ConsumeRate: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Initial ledger:")
	result, err := engine.RecomputeLedger()
	if err != nil {
		log.Fatal(err)
	}
	printIssues(result.Issues)

	fmt.Println("\nPurging BUIG 1 from order 1:")
	result, err = engine.PurgeFrom("1")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("  moved %v\n", result.Moved)

	fmt.Println("\nMoving the leak test before its bending job finishes:")
	result, err = engine.Relocate("3", "LEAKTEST 1", 2)
	if err != nil {
		log.Fatal(err)
	}
	printIssues(result.Issues)

	timelines, err := engine.Timelines(ctx, 0, 24)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("\nTimelines [0, 24):")
	for _, t := range timelines {
		fmt.Printf("  %s: %d orders, %d setups, %.0f%% busy\n",
			t.Machine, len(t.Orders), len(t.SetupBlocks), t.Utilization*100)
	}
}

func mustOrder(id, number, machine string, typ entities.ProductType, start, duration float64, qty int64) *entities.Order {
	o, err := entities.NewOrder(id, number, machine, typ, start, duration, qty, entities.Planned)
	if err != nil {
		log.Fatal(err)
	}
	return o
}

func printIssues(issues []entities.StockIssue) {
	if len(issues) == 0 {
		fmt.Println("  no stock issues")
		return
	}
	for _, issue := range issues {
		fmt.Printf("  %s: order %s short %s %s", issue.Severity, issue.OrderNumber, issue.Shortage, issue.Material)
		if issue.ResolvedByOrder != "" {
			fmt.Printf(" (covered by %s)", issue.ResolvedByOrder)
		}
		fmt.Println()
	}
}
