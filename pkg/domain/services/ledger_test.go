package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

func withQty(o *entities.Order, qty int64) *entities.Order {
	o.Quantity = qty
	return o
}

func recipe(consumes entities.MaterialName, consumeRate int64, produces entities.MaterialName, produceRate int64) entities.Recipe {
	return entities.Recipe{
		Consumes:    consumes,
		ConsumeRate: decimal.NewFromInt(consumeRate),
		Produces:    produces,
		ProduceRate: decimal.NewFromInt(produceRate),
	}
}

func stock(pairs map[entities.MaterialName]int64) map[entities.MaterialName]decimal.Decimal {
	out := make(map[entities.MaterialName]decimal.Decimal, len(pairs))
	for name, qty := range pairs {
		out[name] = decimal.NewFromInt(qty)
	}
	return out
}

func TestRunLedger_ShortageClassification(t *testing.T) {
	recipes := entities.Recipes{
		entities.TypeA: recipe("S", 1, "", 0),
		entities.TypeB: recipe("", 0, "S", 1),
	}

	testCases := []struct {
		name             string
		producerQty      int64
		consumerStart    float64
		expectSeverity   entities.IssueSeverity
		expectResolvedBy string
	}{
		{"single run covers shortage", 100, 25, entities.SeverityWarning, "ORD-Y"},
		{"single run too small", 50, 25, entities.SeverityError, ""},
		{"run finishes exactly at need hour", 100, 20, entities.SeverityError, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			orders := []*entities.Order{
				withQty(order("X", "M1", entities.TypeA, tc.consumerStart, 4), 100),
				withQty(order("Y", "M2", entities.TypeB, 10, 10), tc.producerQty),
			}

			result := RunLedger(orders, stock(map[entities.MaterialName]int64{"S": 0}), recipes)
			require.Len(t, result.Issues, 1)

			issue := result.Issues[0]
			assert.Equal(t, "X", issue.OrderID)
			assert.Equal(t, entities.MaterialName("S"), issue.Material)
			assert.True(t, issue.Required.Equal(decimal.NewFromInt(100)))
			assert.True(t, issue.Available.IsZero())
			assert.True(t, issue.Shortage.Equal(decimal.NewFromInt(100)))
			assert.Equal(t, tc.expectSeverity, issue.Severity)
			assert.Equal(t, tc.expectResolvedBy, issue.ResolvedByOrder)
		})
	}
}

func TestRunLedger_PartialRunsAreNotSummed(t *testing.T) {
	recipes := entities.Recipes{
		entities.TypeA: recipe("S", 1, "", 0),
		entities.TypeB: recipe("", 0, "S", 1),
	}
	orders := []*entities.Order{
		withQty(order("Y1", "M2", entities.TypeB, 0, 2), 60),
		withQty(order("Y2", "M2", entities.TypeB, 2, 2), 60),
		withQty(order("X", "M1", entities.TypeA, 10, 1), 100),
	}

	result := RunLedger(orders, nil, recipes)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, entities.SeverityError, result.Issues[0].Severity)
	assert.Len(t, result.Incoming["S"], 2)
}

func TestRunLedger_NegativeStockPropagation(t *testing.T) {
	recipes := entities.Recipes{entities.TypeA: recipe("S", 1, "", 0)}
	orders := []*entities.Order{
		withQty(order("1", "M", entities.TypeA, 0, 2), 80),
		withQty(order("2", "N", entities.TypeA, 1, 2), 80),
	}

	result := RunLedger(orders, stock(map[entities.MaterialName]int64{"S": 50}), recipes)
	require.Len(t, result.Issues, 2)
	assert.True(t, result.Issues[0].Shortage.Equal(decimal.NewFromInt(30)))
	assert.True(t, result.Issues[1].Available.Equal(decimal.NewFromInt(-30)))
	assert.True(t, result.Issues[1].Shortage.Equal(decimal.NewFromInt(110)))
	assert.True(t, result.ClosingStock["S"].Equal(decimal.NewFromInt(-110)))
	assert.Len(t, result.Errors(), 2)
	assert.Empty(t, result.Warnings())
}

func TestRunLedger_ProductionNeverAddsToStock(t *testing.T) {
	recipes := entities.Recipes{
		entities.TypeA: recipe("S", 1, "P", 1),
		entities.TypeB: recipe("P", 1, "", 0),
	}
	orders := []*entities.Order{
		withQty(order("maker", "M", entities.TypeA, 0, 5), 10),
		withQty(order("user", "N", entities.TypeB, 8, 1), 10),
	}

	result := RunLedger(orders, stock(map[entities.MaterialName]int64{"S": 10}), recipes)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, entities.SeverityWarning, result.Issues[0].Severity)
	assert.Equal(t, "ORD-maker", result.Issues[0].ResolvedByOrder)
	assert.True(t, result.ClosingStock["P"].Equal(decimal.NewFromInt(-10)))
	assert.True(t, result.ClosingStock["S"].IsZero())
}

func TestRunLedger_ChronologicalAcrossMachines(t *testing.T) {
	recipes := entities.Recipes{entities.TypeA: recipe("S", 1, "", 0)}
	// input order is reversed; the walk follows start hour
	orders := []*entities.Order{
		withQty(order("late", "M1", entities.TypeA, 50, 1), 10),
		withQty(order("early", "M2", entities.TypeA, 5, 1), 10),
	}

	result := RunLedger(orders, stock(map[entities.MaterialName]int64{"S": 10}), recipes)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "late", result.Issues[0].OrderID)
}

func TestRunLedger_SkipsParkedAndUnknownTypes(t *testing.T) {
	recipes := entities.Recipes{entities.TypeA: recipe("S", 1, "", 0)}
	orders := []*entities.Order{
		parked(withQty(order("p", "M", entities.TypeA, 0, 1), 100)),
		withQty(order("d", "M", entities.TypeD, 2, 1), 100),
	}

	result := RunLedger(orders, nil, recipes)
	assert.Empty(t, result.Issues)
	assert.NotNil(t, result.Issues)
}

func TestRunLedger_Deterministic(t *testing.T) {
	recipes := entities.Recipes{
		entities.TypeA: recipe("S", 2, "P", 1),
		entities.TypeB: recipe("P", 3, "", 0),
		entities.TypeC: recipe("S", 1, "", 0),
	}
	orders := []*entities.Order{
		withQty(order("1", "M", entities.TypeA, 0, 3), 10),
		withQty(order("2", "N", entities.TypeB, 1, 3), 5),
		withQty(order("3", "M", entities.TypeC, 4, 3), 20),
		withQty(order("4", "N", entities.TypeB, 4, 3), 5),
	}
	inventory := stock(map[entities.MaterialName]int64{"S": 25})

	first := RunLedger(orders, inventory, recipes)
	second := RunLedger(orders, inventory, recipes)
	assert.Equal(t, first.Issues, second.Issues)
	assert.True(t, inventory["S"].Equal(decimal.NewFromInt(25)), "starting inventory must not be mutated")
}
