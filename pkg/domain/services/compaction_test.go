package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

func order(id, machine string, productType entities.ProductType, start, duration float64) *entities.Order {
	return &entities.Order{
		ID:            id,
		OrderNumber:   "ORD-" + id,
		Machine:       machine,
		ProductType:   productType,
		StartHour:     start,
		DurationHours: duration,
		Quantity:      1,
	}
}

func locked(o *entities.Order) *entities.Order {
	o.Status = entities.Locked
	return o
}

func parked(o *entities.Order) *entities.Order {
	o.Status = entities.Parked
	return o
}

// apply writes compaction output back onto copies of the orders
func apply(orders []*entities.Order, starts map[string]float64) []*entities.Order {
	out := make([]*entities.Order, 0, len(orders))
	for _, o := range orders {
		c := *o
		if s, ok := starts[o.ID]; ok {
			c.StartHour = s
		}
		out = append(out, &c)
	}
	return out
}

func TestWindowScope(t *testing.T) {
	scope, err := WindowScope(2, 10)
	require.NoError(t, err)
	assert.True(t, scope.Bounded())
	assert.True(t, scope.Contains(2))
	assert.True(t, scope.Contains(9.99))
	assert.False(t, scope.Contains(10))
	assert.False(t, scope.Contains(1))

	assert.False(t, FromScope(3).Bounded())

	for _, bad := range [][2]float64{{5, 5}, {6, 5}, {-1, 5}, {math.NaN(), 5}} {
		_, err := WindowScope(bad[0], bad[1])
		assert.ErrorIs(t, err, entities.ErrInvalidWindow, "window %v", bad)
	}
}

func TestCompact_SetupInsertion(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		order("O1", "M", entities.TypeA, 0, 4),
		order("O2", "M", entities.TypeB, 4, 2),
	}

	starts, err := Compact("M", orders, FromScope(0), matrix)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"O1": 0, "O2": 6}, starts)
}

func TestCompact_LockedBarrier(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		locked(order("O1", "M", entities.TypeA, 0, 5)),
		order("O2", "M", entities.TypeA, 3, 2),
	}

	scope, err := WindowScope(0, 20)
	require.NoError(t, err)
	starts, err := Compact("M", orders, scope, matrix)
	require.NoError(t, err)

	assert.NotContains(t, starts, "O1")
	assert.Equal(t, 5.0, starts["O2"])
}

func TestCompact_LockedOrderAnchorsLaterOrders(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		order("a", "M", entities.TypeA, 1, 2),
		locked(order("l", "M", entities.TypeA, 6, 4)),
		order("b", "M", entities.TypeA, 12, 3),
		order("c", "M", entities.TypeA, 20, 2),
	}

	starts, err := Compact("M", orders, FromScope(0), matrix)
	require.NoError(t, err)

	// b fits in [2,6) but started after l, so it stays behind it
	assert.Equal(t, map[string]float64{"a": 0, "b": 10, "c": 13}, starts)
}

func TestCompact_WindowKeepsOrdersBehindLockedOrder(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		order("c1", "M", entities.TypeA, 0, 2),
		locked(order("l", "M", entities.TypeA, 10, 5)),
		order("c2", "M", entities.TypeA, 20, 2),
	}

	scope, err := WindowScope(0, 100)
	require.NoError(t, err)
	starts, err := Compact("M", orders, scope, matrix)
	require.NoError(t, err)

	assert.Equal(t, 0.0, starts["c1"])
	assert.Equal(t, 15.0, starts["c2"])
	assert.Empty(t, CheckInvariant(apply(orders, starts), matrix))
}

func TestCompact_LockedOrderChangeoverAnchorsNextOrder(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		locked(order("l", "M", entities.TypeB, 4, 2)),
		order("x", "M", entities.TypeA, 12, 1),
	}

	starts, err := Compact("M", orders, FromScope(0), matrix)
	require.NoError(t, err)

	// B->A changeover after l ends at 6
	assert.Equal(t, 8.5, starts["x"])
}

func TestCompact_BeforeOrderSeedsCursor(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		order("before", "M", entities.TypeC, 0, 10),
		order("x", "M", entities.TypeA, 14, 2),
		order("y", "M", entities.TypeA, 30, 2),
	}

	// lo falls inside "before"; x must still wait for it plus C->A setup
	starts, err := Compact("M", orders, FromScope(8), matrix)
	require.NoError(t, err)
	assert.Equal(t, 14.0, starts["x"])
	assert.Equal(t, 16.0, starts["y"])
	assert.NotContains(t, starts, "before")
}

func TestCompact_PreservesRelativeOrder(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	// reordering to A,A,B would save a setup; compaction must not do it
	orders := []*entities.Order{
		order("a1", "M", entities.TypeA, 0, 1),
		order("b", "M", entities.TypeB, 5, 1),
		order("a2", "M", entities.TypeA, 9, 1),
	}

	starts, err := Compact("M", orders, FromScope(0), matrix)
	require.NoError(t, err)
	assert.Less(t, starts["a1"], starts["b"])
	assert.Less(t, starts["b"], starts["a2"])
	assert.Equal(t, 3.0, starts["b"])
	assert.Equal(t, 6.5, starts["a2"])
}

func TestCompact_TiesKeepInputOrder(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		order("first", "M", entities.TypeA, 3, 1),
		order("second", "M", entities.TypeA, 3, 2),
	}

	starts, err := Compact("M", orders, FromScope(0), matrix)
	require.NoError(t, err)
	assert.Equal(t, 0.0, starts["first"])
	assert.Equal(t, 1.0, starts["second"])

	scope := FromScope(0)
	scope.Priority = "second"
	starts, err = Compact("M", orders, scope, matrix)
	require.NoError(t, err)
	assert.Equal(t, 0.0, starts["second"])
	assert.Equal(t, 2.0, starts["first"])
}

func TestCompact_IgnoresParkedAndOtherMachines(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		parked(order("p", "M", entities.TypeA, 0, 10)),
		order("other", "N", entities.TypeA, 0, 10),
		order("x", "M", entities.TypeA, 4, 2),
	}

	starts, err := Compact("M", orders, FromScope(0), matrix)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"x": 0}, starts)
}

func TestCompact_WindowBlockedByLaterOrder(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		locked(order("l", "M", entities.TypeA, 0, 6)),
		order("a", "M", entities.TypeA, 3, 4),
		order("c", "M", entities.TypeA, 8, 2),
	}

	scope, err := WindowScope(0, 5)
	require.NoError(t, err)
	_, err = Compact("M", orders, scope, matrix)
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrScopeBlocked)
	assert.Contains(t, err.Error(), "order a would run into order c at hour 8 on M")
}

func TestCompact_WindowLeavesOutOfScopeOrders(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		order("a", "M", entities.TypeA, 2, 2),
		order("b", "M", entities.TypeA, 12, 2),
		order("c", "M", entities.TypeA, 30, 2),
	}

	scope, err := WindowScope(0, 20)
	require.NoError(t, err)
	starts, err := Compact("M", orders, scope, matrix)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 0, "b": 2}, starts)
}

func TestCompact_NoOverlapAndIdempotent(t *testing.T) {
	matrix := entities.DefaultSetupTimeMatrix()
	orders := []*entities.Order{
		order("1", "M", entities.TypeD, 0, 3),
		order("2", "M", entities.TypeA, 2, 4),
		locked(order("3", "M", entities.TypeB, 9, 2)),
		order("4", "M", entities.TypeC, 9, 5),
		order("5", "M", entities.TypeC, 11, 1),
		locked(order("6", "M", entities.TypeA, 30, 3)),
		order("7", "M", entities.TypeB, 31, 2),
	}

	starts, err := Compact("M", orders, FromScope(0), matrix)
	require.NoError(t, err)
	compacted := apply(orders, starts)
	assert.Empty(t, CheckInvariant(compacted, matrix))

	// locked orders untouched
	assert.NotContains(t, starts, "3")
	assert.NotContains(t, starts, "6")

	again, err := Compact("M", compacted, FromScope(0), matrix)
	require.NoError(t, err)
	assert.Equal(t, starts, again)
}
