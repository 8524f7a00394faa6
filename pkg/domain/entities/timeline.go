package entities

import "fmt"

// SetupBlock is the changeover between two temporally adjacent orders of
// different product types. It is derived, never stored.
type SetupBlock struct {
	Machine       string      `json:"machine"`
	FromOrderID   string      `json:"from_order_id"`
	ToOrderID     string      `json:"to_order_id"`
	FromType      ProductType `json:"from_type"`
	ToType        ProductType `json:"to_type"`
	StartHour     float64     `json:"start_hour"`
	DurationHours float64     `json:"duration_hours"`
}

// EndHour is the hour the changeover completes
func (b SetupBlock) EndHour() float64 {
	return b.StartHour + b.DurationHours
}

// Violation records two adjacent orders on a machine that break the
// non-overlap rule, typically after a manual start-hour override.
type Violation struct {
	Machine         string  `json:"machine"`
	EarlierOrderID  string  `json:"earlier_order_id"`
	LaterOrderID    string  `json:"later_order_id"`
	EarliestAllowed float64 `json:"earliest_allowed"`
	ActualStart     float64 `json:"actual_start"`
}

// Overlap is how many hours the later order starts too early
func (v Violation) Overlap() float64 {
	return v.EarliestAllowed - v.ActualStart
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: order %s starts at %g, must not start before %g (after order %s)",
		v.Machine, v.LaterOrderID, v.ActualStart, v.EarliestAllowed, v.EarlierOrderID)
}
