package entities

import "fmt"

// planned <-> locked toggles; every active state may be parked;
// parked orders only come back as planned.
var validStatusTransitions = map[OrderStatus]map[OrderStatus]bool{
	Planned: {
		Locked: true,
		Parked: true,
	},
	Locked: {
		Planned: true,
		Parked:  true,
	},
	NearDeadline: {
		Parked: true,
	},
	Late: {
		Parked: true,
	},
	Parked: {
		Planned: true,
	},
}

// CanTransition reports whether a status change is permitted.
// Setting the current status again is always allowed and is a no-op.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	return validStatusTransitions[from][to]
}

// ValidateTransition returns ErrInvalidTransition for forbidden status changes
func ValidateTransition(from, to OrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
