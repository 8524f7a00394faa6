package services

import (
	"fmt"
	"math"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// Placement is the outcome of relocating one order
type Placement struct {
	OrderID     string
	FromMachine string
	ToMachine   string
	// Starts holds the new start hour of every order on ToMachine that the
	// follow-up compaction positioned, the relocated order included.
	Starts map[string]float64
}

// Place relocates an order to (machine, start) and recompacts the
// destination machine from hour zero so the order slots in at its requested
// position and everything after it shifts to stay non-overlapping. Locked
// orders on the destination never move, and an order requested after a
// locked order stays behind it. The requested slot, changeovers on both
// sides included, must not overlap a locked order.
//
// Place is all-or-nothing and does not modify orders: a rejected move
// returns an error and the caller keeps the previous state.
func Place(
	orders []*entities.Order,
	orderID, machine string,
	start float64,
	matrix *entities.SetupTimeMatrix,
) (*Placement, error) {
	var moved *entities.Order
	for _, o := range orders {
		if o.ID == orderID {
			moved = o
			break
		}
	}
	if moved == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrOrderNotFound, orderID)
	}
	switch moved.Status {
	case entities.Locked:
		return nil, fmt.Errorf("%w: %s cannot be relocated", entities.ErrOrderLocked, orderID)
	case entities.Parked:
		return nil, fmt.Errorf("%w: %s must be unparked before relocation", entities.ErrOrderParked, orderID)
	}
	if start < 0 || math.IsNaN(start) || math.IsInf(start, 0) {
		return nil, fmt.Errorf("%w: %g", entities.ErrInvalidStart, start)
	}

	provisional := *moved
	provisional.Machine = machine
	provisional.StartHour = start

	destination := make([]*entities.Order, 0, len(orders))
	for _, o := range orders {
		if o.ID == orderID {
			destination = append(destination, &provisional)
			continue
		}
		if o.Machine != machine || !o.IsActive() {
			continue
		}
		if o.Status == entities.Locked && overlapsLocked(&provisional, o, matrix) {
			return nil, fmt.Errorf("%w: %s at [%g, %g) on %s",
				entities.ErrLockedConflict, o.ID, o.StartHour, o.EndHour(), machine)
		}
		destination = append(destination, o)
	}

	scope := FromScope(0)
	scope.Priority = orderID

	starts, err := Compact(machine, destination, scope, matrix)
	if err != nil {
		return nil, err
	}

	return &Placement{
		OrderID:     orderID,
		FromMachine: moved.Machine,
		ToMachine:   machine,
		Starts:      starts,
	}, nil
}

// overlapsLocked reports whether o at its provisional slot, with the
// changeovers into and out of it, runs into the locked order l
func overlapsLocked(o, l *entities.Order, matrix *entities.SetupTimeMatrix) bool {
	after := l.EndHour() + matrix.Changeover(l.ProductType, o.ProductType)
	before := o.EndHour() + matrix.Changeover(o.ProductType, l.ProductType)
	return o.StartHour < after-epsilon && before > l.StartHour+epsilon
}
