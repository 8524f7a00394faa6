package events

import (
	"github.com/vsinha/shopsched/pkg/domain/entities"
)

const (
	OrderRelocatedEvent       = "order.relocated"
	OrderCompactedEvent       = "order.compacted"
	OrderStatusChangedEvent   = "order.status_changed"
	OrderDeletedEvent         = "order.deleted"
	OrderStartOverriddenEvent = "order.start_overridden"

	ShortageIdentifiedEvent = "shortage.identified"
	InvariantViolatedEvent  = "schedule.invariant_violated"
)

// OrderStream is the stream ID events about one order are appended to
func OrderStream(orderID string) string {
	return "order-" + orderID
}

// MachineStream is the stream ID events about one machine are appended to
func MachineStream(machine string) string {
	return "machine-" + machine
}

// LedgerStream collects material ledger events
const LedgerStream = "ledger"

type OrderRelocated struct {
	OrderID     string  `json:"order_id"`
	FromMachine string  `json:"from_machine"`
	ToMachine   string  `json:"to_machine"`
	FromStart   float64 `json:"from_start"`
	ToStart     float64 `json:"to_start"`
}

type OrderCompacted struct {
	Machine string             `json:"machine"`
	Trigger string             `json:"trigger"`
	Starts  map[string]float64 `json:"starts"`
}

type OrderStatusChanged struct {
	OrderID string               `json:"order_id"`
	From    entities.OrderStatus `json:"from"`
	To      entities.OrderStatus `json:"to"`
}

type OrderDeleted struct {
	Order entities.Order `json:"order"`
}

type OrderStartOverridden struct {
	OrderID   string  `json:"order_id"`
	FromStart float64 `json:"from_start"`
	ToStart   float64 `json:"to_start"`
}

type ShortageIdentified struct {
	Issue entities.StockIssue `json:"issue"`
}

type InvariantViolated struct {
	Violation entities.Violation `json:"violation"`
}
