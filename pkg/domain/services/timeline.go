package services

import (
	"sort"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// Timeline is the ordered projection of one machine's active orders
type Timeline struct {
	Machine     string                `json:"machine"`
	Orders      []*entities.Order     `json:"orders"`
	SetupBlocks []entities.SetupBlock `json:"setup_blocks"`
}

// BuildTimeline sorts a machine's active orders by start hour (stable on
// input order) and derives setup blocks between temporally consecutive
// orders of different product types. Orders for other machines are ignored.
func BuildTimeline(machine string, orders []*entities.Order, matrix *entities.SetupTimeMatrix) Timeline {
	sorted := activeOnMachine(machine, orders)
	sortByStart(sorted)

	timeline := Timeline{
		Machine:     machine,
		Orders:      sorted,
		SetupBlocks: []entities.SetupBlock{},
	}

	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if prev.ProductType == next.ProductType {
			continue
		}
		timeline.SetupBlocks = append(timeline.SetupBlocks, entities.SetupBlock{
			Machine:       machine,
			FromOrderID:   prev.ID,
			ToOrderID:     next.ID,
			FromType:      prev.ProductType,
			ToType:        next.ProductType,
			StartHour:     prev.EndHour(),
			DurationHours: matrix.SetupTime(prev.ProductType, next.ProductType),
		})
	}

	return timeline
}

// Window keeps the orders and setup blocks intersecting [lo, hi). Blocks are
// derived from the full machine before windowing, so a block whose earlier
// order lies outside the window is still reported.
func (t Timeline) Window(lo, hi float64) Timeline {
	windowed := Timeline{
		Machine:     t.Machine,
		Orders:      []*entities.Order{},
		SetupBlocks: []entities.SetupBlock{},
	}
	for _, o := range t.Orders {
		if o.StartHour < hi && o.EndHour() > lo {
			windowed.Orders = append(windowed.Orders, o)
		}
	}
	for _, b := range t.SetupBlocks {
		if b.StartHour < hi && b.EndHour() > lo {
			windowed.SetupBlocks = append(windowed.SetupBlocks, b)
		}
	}
	return windowed
}

// End returns the latest end hour on the timeline, counting setup blocks
func (t Timeline) End() float64 {
	end := 0.0
	for _, o := range t.Orders {
		if o.EndHour() > end {
			end = o.EndHour()
		}
	}
	for _, b := range t.SetupBlocks {
		if b.EndHour() > end {
			end = b.EndHour()
		}
	}
	return end
}

// activeOnMachine returns the non-parked orders on a machine in input order
func activeOnMachine(machine string, orders []*entities.Order) []*entities.Order {
	var result []*entities.Order
	for _, o := range orders {
		if o.Machine == machine && o.IsActive() {
			result = append(result, o)
		}
	}
	return result
}

// sortByStart orders by start hour; ties keep input order
func sortByStart(orders []*entities.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].StartHour < orders[j].StartHour
	})
}
