package memory

import (
	"fmt"
	"sort"

	"github.com/vsinha/shopsched/pkg/domain/entities"
	"github.com/vsinha/shopsched/pkg/domain/repositories"
)

// OrderRepository is an in-memory arena of orders indexed by ID. Insertion
// order is preserved across saves and deletes. The machine index is rebuilt
// lazily after any change to the collection.
//
// Readers always receive copies; changes only land through SaveOrder.
type OrderRepository struct {
	orders    []*entities.Order
	ordersMap map[string]int

	byMachine  map[string][]int
	indexDirty bool
}

// NewOrderRepository creates a new in-memory order repository
func NewOrderRepository(expectedOrders int) *OrderRepository {
	return &OrderRepository{
		orders:     make([]*entities.Order, 0, expectedOrders),
		ordersMap:  make(map[string]int, expectedOrders),
		indexDirty: true,
	}
}

// Verify interface compliance
var _ repositories.OrderRepository = (*OrderRepository)(nil)

// LoadOrders loads orders into the repository, rejecting duplicate IDs
func (r *OrderRepository) LoadOrders(orders []*entities.Order) error {
	for _, order := range orders {
		if _, exists := r.ordersMap[order.ID]; exists {
			return fmt.Errorf("duplicate order id: %s", order.ID)
		}
		r.AddOrder(*order)
	}
	return nil
}

// AddOrder appends an order to the repository. An order whose ID is already
// present replaces the stored one in place.
func (r *OrderRepository) AddOrder(order entities.Order) {
	if index, exists := r.ordersMap[order.ID]; exists {
		r.orders[index] = &order
		r.indexDirty = true
		return
	}
	r.ordersMap[order.ID] = len(r.orders)
	r.orders = append(r.orders, &order)
	r.indexDirty = true
}

// GetOrder returns a copy of the order with the given ID
func (r *OrderRepository) GetOrder(id string) (*entities.Order, error) {
	index, exists := r.ordersMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrOrderNotFound, id)
	}
	order := *r.orders[index]
	return &order, nil
}

// GetAllOrders returns copies of all orders in insertion order
func (r *OrderRepository) GetAllOrders() ([]*entities.Order, error) {
	orders := make([]*entities.Order, 0, len(r.orders))
	for _, o := range r.orders {
		order := *o
		orders = append(orders, &order)
	}
	return orders, nil
}

// GetOrdersByMachine returns copies of the orders assigned to a machine, in insertion order
func (r *OrderRepository) GetOrdersByMachine(machine string) ([]*entities.Order, error) {
	r.rebuildIndex()
	indexes := r.byMachine[machine]
	orders := make([]*entities.Order, 0, len(indexes))
	for _, i := range indexes {
		order := *r.orders[i]
		orders = append(orders, &order)
	}
	return orders, nil
}

// GetOrdersByParent returns the sibling operations of one manufacturing order
func (r *OrderRepository) GetOrdersByParent(parentOrderNumber string) ([]*entities.Order, error) {
	var orders []*entities.Order
	for _, o := range r.orders {
		if o.ParentOrderNumber == parentOrderNumber || (o.ParentOrderNumber == "" && o.OrderNumber == parentOrderNumber) {
			order := *o
			orders = append(orders, &order)
		}
	}
	return orders, nil
}

// Machines returns the sorted names of machines that have orders
func (r *OrderRepository) Machines() []string {
	r.rebuildIndex()
	names := make([]string, 0, len(r.byMachine))
	for name := range r.byMachine {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SaveOrder updates an existing order in place or appends a new one
func (r *OrderRepository) SaveOrder(order *entities.Order) error {
	if order == nil {
		return fmt.Errorf("order cannot be nil")
	}
	index, exists := r.ordersMap[order.ID]
	if !exists {
		r.AddOrder(*order)
		return nil
	}
	if r.orders[index].Machine != order.Machine {
		r.indexDirty = true
	}
	*r.orders[index] = *order
	return nil
}

// DeleteOrder removes an order from the collection
func (r *OrderRepository) DeleteOrder(id string) error {
	index, exists := r.ordersMap[id]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrOrderNotFound, id)
	}
	r.orders = append(r.orders[:index], r.orders[index+1:]...)
	delete(r.ordersMap, id)
	for i := index; i < len(r.orders); i++ {
		r.ordersMap[r.orders[i].ID] = i
	}
	r.indexDirty = true
	return nil
}

// Len returns the number of orders held
func (r *OrderRepository) Len() int {
	return len(r.orders)
}

func (r *OrderRepository) rebuildIndex() {
	if !r.indexDirty {
		return
	}
	r.byMachine = make(map[string][]int)
	for i, o := range r.orders {
		r.byMachine[o.Machine] = append(r.byMachine[o.Machine], i)
	}
	r.indexDirty = false
}
