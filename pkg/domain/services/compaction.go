package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// epsilon absorbs float noise when comparing hour boundaries
const epsilon = 1e-9

// Scope selects which orders on a machine a compaction may move.
// Candidates are movable orders starting in [Lo, Hi).
type Scope struct {
	Lo float64
	Hi float64
	// Priority names an order that wins start-hour ties against other
	// candidates. Placement uses it so a dropped order lands before an
	// order already sitting at the requested hour.
	Priority string
}

// FromScope covers every order starting at or after lo
func FromScope(lo float64) Scope {
	return Scope{Lo: lo, Hi: math.Inf(1)}
}

// WindowScope covers orders starting in [lo, hi)
func WindowScope(lo, hi float64) (Scope, error) {
	if lo < 0 || math.IsNaN(lo) || math.IsNaN(hi) || hi <= lo {
		return Scope{}, fmt.Errorf("%w: [%g, %g)", entities.ErrInvalidWindow, lo, hi)
	}
	return Scope{Lo: lo, Hi: hi}, nil
}

// Bounded reports whether the scope has a finite upper edge
func (s Scope) Bounded() bool {
	return !math.IsInf(s.Hi, 1)
}

// Contains reports whether an order starting at hour falls in scope
func (s Scope) Contains(hour float64) bool {
	return hour >= s.Lo && hour < s.Hi
}

// interval is an occupied stretch of a machine
type interval struct {
	orderID  string
	start    float64
	end      float64
	typ      entities.ProductType
	passable bool
}

type candidate struct {
	order *entities.Order
	index int
}

// Compact repacks the movable orders of one machine that fall in scope as
// densely as possible. Candidates keep their relative order by original
// start hour and are never reordered to save setup time. Locked orders and
// orders before Lo stay put. A candidate never moves ahead of a fixed order
// that started before it, and only slides past a later fixed order when the
// orders packed ahead of it leave no room. Orders starting at or beyond a
// bounded scope's Hi are fixed as well; if a candidate would have to cross
// one, the whole compaction is rejected with ErrScopeBlocked.
//
// Compact does not modify orders. It returns the new start hour of every
// candidate, keyed by order ID.
func Compact(
	machine string,
	orders []*entities.Order,
	scope Scope,
	matrix *entities.SetupTimeMatrix,
) (map[string]float64, error) {
	var candidates []candidate
	var obstacles []interval

	for i, o := range activeOnMachine(machine, orders) {
		if o.IsMovable() && scope.Contains(o.StartHour) {
			candidates = append(candidates, candidate{order: o, index: i})
			continue
		}
		obstacles = append(obstacles, interval{
			orderID:  o.ID,
			start:    o.StartHour,
			end:      o.EndHour(),
			typ:      o.ProductType,
			passable: o.StartHour < scope.Hi,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.order.StartHour != b.order.StartHour {
			return a.order.StartHour < b.order.StartHour
		}
		if scope.Priority != "" && (a.order.ID == scope.Priority) != (b.order.ID == scope.Priority) {
			return a.order.ID == scope.Priority
		}
		return a.index < b.index
	})
	sort.SliceStable(obstacles, func(i, j int) bool {
		return obstacles[i].start < obstacles[j].start
	})

	starts := make(map[string]float64, len(candidates))
	var tail *interval
	next := 0

	for _, c := range candidates {
		// fixed orders that started no later than the candidate stay ahead of it
		for ; next < len(obstacles) && obstacles[next].start <= c.order.StartHour; next++ {
			if tail == nil || obstacles[next].end > tail.end {
				tail = &obstacles[next]
			}
		}

		earliest := scope.Lo
		if tail != nil {
			earliest = math.Max(earliest, tail.end+matrix.Changeover(tail.typ, c.order.ProductType))
		}

		start, err := fitAfter(machine, earliest, c.order, obstacles, matrix)
		if err != nil {
			return nil, err
		}

		starts[c.order.ID] = start
		tail = &interval{
			orderID: c.order.ID,
			start:   start,
			end:     start + c.order.DurationHours,
			typ:     c.order.ProductType,
		}
	}

	return starts, nil
}

// fitAfter finds the first hour >= earliest where the order fits between
// the obstacles, changeovers on both sides included.
func fitAfter(
	machine string,
	earliest float64,
	o *entities.Order,
	obstacles []interval,
	matrix *entities.SetupTimeMatrix,
) (float64, error) {
	start := earliest
	for {
		moved := false
		for _, ob := range obstacles {
			if !conflicts(start, o, ob, matrix) {
				continue
			}
			if !ob.passable {
				return 0, fmt.Errorf("%w: order %s would run into order %s at hour %g on %s",
					entities.ErrScopeBlocked, o.ID, ob.orderID, ob.start, machine)
			}
			start = ob.end + matrix.Changeover(ob.typ, o.ProductType)
			moved = true
		}
		if !moved {
			return start, nil
		}
	}
}

// conflicts reports whether placing o at start collides with ob
func conflicts(start float64, o *entities.Order, ob interval, matrix *entities.SetupTimeMatrix) bool {
	if ob.start >= start {
		end := start + o.DurationHours + matrix.Changeover(o.ProductType, ob.typ)
		return end > ob.start+epsilon
	}
	return ob.end+matrix.Changeover(ob.typ, o.ProductType) > start+epsilon
}
