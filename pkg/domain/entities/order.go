package entities

import (
	"fmt"
	"strings"
)

// OrderStatus represents the scheduling state of an order
type OrderStatus int

const (
	Planned OrderStatus = iota
	Locked
	NearDeadline
	Late
	Parked
)

// String method for OrderStatus enum
func (s OrderStatus) String() string {
	switch s {
	case Planned:
		return "planned"
	case Locked:
		return "locked"
	case NearDeadline:
		return "near-deadline"
	case Late:
		return "late"
	case Parked:
		return "parked"
	default:
		return "unknown"
	}
}

// ParseOrderStatus parses the status names used by order imports
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "planned":
		return Planned, nil
	case "locked":
		return Locked, nil
	case "near-deadline", "near_deadline":
		return NearDeadline, nil
	case "late":
		return Late, nil
	case "parked":
		return Parked, nil
	default:
		return 0, fmt.Errorf("unknown order status: %q", s)
	}
}

// MarshalText encodes the status by name
func (s OrderStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *OrderStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// BOMStatus is the externally supplied bill-of-material health flag
type BOMStatus int

const (
	BOMOk BOMStatus = iota
	BOMRisk
)

// String method for BOMStatus enum
func (b BOMStatus) String() string {
	switch b {
	case BOMOk:
		return "ok"
	case BOMRisk:
		return "risk"
	default:
		return "unknown"
	}
}

// ParseBOMStatus parses "ok" or "risk"
func ParseBOMStatus(s string) (BOMStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ok":
		return BOMOk, nil
	case "risk":
		return BOMRisk, nil
	default:
		return 0, fmt.Errorf("unknown bom status: %q", s)
	}
}

// MarshalText encodes the BOM status by name
func (b BOMStatus) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a BOM status name
func (b *BOMStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseBOMStatus(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Order is one manufacturing operation scheduled on a machine.
// StartHour is an offset in hours from the shared schedule epoch.
type Order struct {
	ID                   string      `json:"id"`
	OrderNumber          string      `json:"order_number"`
	ParentOrderNumber    string      `json:"parent_order_number,omitempty"`
	Operation            string      `json:"operation,omitempty"`
	Machine              string      `json:"machine"`
	MachineGroup         string      `json:"machine_group,omitempty"`
	StartHour            float64     `json:"start_hour"`
	DurationHours        float64     `json:"duration_hours"`
	ProductType          ProductType `json:"product_type"`
	Status               OrderStatus `json:"status"`
	Quantity             int64       `json:"quantity"`
	Deadline             string      `json:"deadline,omitempty"`
	PreferredWorkstation string      `json:"preferred_workstation,omitempty"`
	BOMStatus            BOMStatus   `json:"bom_status"`
}

// NewOrder creates a validated Order
func NewOrder(
	id, orderNumber, machine string,
	productType ProductType,
	startHour, durationHours float64,
	quantity int64,
	status OrderStatus,
) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if orderNumber == "" {
		return nil, fmt.Errorf("order number cannot be empty")
	}
	if machine == "" {
		return nil, fmt.Errorf("machine cannot be empty")
	}
	if !productType.Valid() {
		return nil, fmt.Errorf("unknown product type: %d", int(productType))
	}
	if startHour < 0 {
		return nil, fmt.Errorf("start hour cannot be negative, got %g", startHour)
	}
	if durationHours <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %g", durationHours)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative, got %d", quantity)
	}

	return &Order{
		ID:                   id,
		OrderNumber:          orderNumber,
		Machine:              machine,
		ProductType:          productType,
		StartHour:            startHour,
		DurationHours:        durationHours,
		Quantity:             quantity,
		Status:               status,
		PreferredWorkstation: machine,
	}, nil
}

// EndHour is the hour the order releases its machine
func (o *Order) EndHour() float64 {
	return o.StartHour + o.DurationHours
}

// IsActive reports whether the order takes part in scheduling
func (o *Order) IsActive() bool {
	return o.Status != Parked
}

// IsMovable reports whether compaction and placement may reposition the order
func (o *Order) IsMovable() bool {
	return o.Status != Locked && o.Status != Parked
}
