package testing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopsched/pkg/domain/entities"
	"github.com/vsinha/shopsched/pkg/infrastructure/repositories/memory"
)

// NewOrder builds a planned fixture order. It panics on invalid input, like
// the rest of this package.
func NewOrder(id, machine string, productType entities.ProductType, start, duration float64) *entities.Order {
	order, err := entities.NewOrder(id, "ORD-"+id, machine, productType, start, duration, 1, entities.Planned)
	if err != nil {
		panic(err)
	}
	return order
}

// WithStatus returns the order with its status replaced
func WithStatus(order *entities.Order, status entities.OrderStatus) *entities.Order {
	order.Status = status
	return order
}

// WithQuantity returns the order with its quantity replaced
func WithQuantity(order *entities.Order, quantity int64) *entities.Order {
	order.Quantity = quantity
	return order
}

// BuildOrderRepository loads the given orders into a fresh repository
func BuildOrderRepository(orders ...*entities.Order) *memory.OrderRepository {
	repo := memory.NewOrderRepository(len(orders))
	if err := repo.LoadOrders(orders); err != nil {
		panic(err)
	}
	return repo
}

// BuildInventory creates an inventory repository from name/quantity pairs
func BuildInventory(stock map[entities.MaterialName]int64) *memory.InventoryRepository {
	repo := memory.NewInventoryRepository()
	for name, qty := range stock {
		material, err := entities.NewMaterial(name, decimal.NewFromInt(qty), "pcs")
		if err != nil {
			panic(err)
		}
		repo.AddMaterial(*material)
	}
	return repo
}

// Recipe builds a recipe with integer rates. Empty names mean no material.
func Recipe(consumes entities.MaterialName, consumeRate int64, produces entities.MaterialName, produceRate int64) entities.Recipe {
	recipe, err := entities.NewRecipe(consumes, decimal.NewFromInt(consumeRate), produces, decimal.NewFromInt(produceRate))
	if err != nil {
		panic(err)
	}
	return *recipe
}

// Machines builds machines for the given names, all in group "TEST"
func Machines(names ...string) []*entities.Machine {
	machines := make([]*entities.Machine, 0, len(names))
	for _, name := range names {
		m, err := entities.NewMachine(name, "TEST")
		if err != nil {
			panic(err)
		}
		machines = append(machines, m)
	}
	return machines
}

// BuildPlantSchedule builds a small two-group plant: a bending line feeding
// a leak test line, with a locked maintenance order on BUIG 1. Operations of
// one manufacturing order share a parent order number.
func BuildPlantSchedule() *memory.OrderRepository {
	type row struct {
		id, parent, operation, machine, group string
		typ                                   entities.ProductType
		start, duration                       float64
		qty                                   int64
		status                                entities.OrderStatus
	}
	rows := []row{
		{"1", "ORD-4500", "Buigen", "BUIG 1", "BUIG", entities.TypeA, 0, 6, 50, entities.Planned},
		{"2", "ORD-4501", "Buigen", "BUIG 1", "BUIG", entities.TypeB, 10, 4, 20, entities.Planned},
		{"3", "ORD-MAINT", "Onderhoud", "BUIG 1", "BUIG", entities.TypeA, 20, 4, 0, entities.Locked},
		{"4", "ORD-4502", "Buigen", "BUIG 1", "BUIG", entities.TypeA, 30, 5, 30, entities.NearDeadline},
		{"5", "ORD-4500", "Lektest", "LEAKTEST 1", "LEAKTEST", entities.TypeC, 8, 3, 50, entities.Planned},
		{"6", "ORD-4501", "Lektest", "LEAKTEST 1", "LEAKTEST", entities.TypeD, 16, 2, 20, entities.Late},
		{"7", "ORD-4503", "Lektest", "LEAKTEST 1", "LEAKTEST", entities.TypeC, 40, 3, 10, entities.Parked},
	}

	orders := make([]*entities.Order, 0, len(rows))
	for i, r := range rows {
		order, err := entities.NewOrder(r.id, fmt.Sprintf("%s-%d", r.parent, i+1), r.machine, r.typ, r.start, r.duration, r.qty, r.status)
		if err != nil {
			panic(err)
		}
		order.ParentOrderNumber = r.parent
		order.Operation = r.operation
		order.MachineGroup = r.group
		orders = append(orders, order)
	}
	return BuildOrderRepository(orders...)
}
