package dto

import "github.com/vsinha/shopsched/pkg/domain/entities"

// OrderFilter narrows an order list. Zero-valued fields match everything.
type OrderFilter struct {
	Statuses    []entities.OrderStatus
	Machine     string
	Group       string
	OrderNumber string
}

// Matches reports whether the order passes every set criterion
func (f OrderFilter) Matches(o *entities.Order) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if o.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Machine != "" && o.Machine != f.Machine {
		return false
	}
	if f.Group != "" && o.MachineGroup != f.Group {
		return false
	}
	if f.OrderNumber != "" && o.OrderNumber != f.OrderNumber && o.ParentOrderNumber != f.OrderNumber {
		return false
	}
	return true
}

// FilterOrders returns the orders matching the filter, preserving order
func FilterOrders(orders []*entities.Order, filter OrderFilter) []*entities.Order {
	result := []*entities.Order{}
	for _, o := range orders {
		if filter.Matches(o) {
			result = append(result, o)
		}
	}
	return result
}
