package repositories

import "github.com/vsinha/shopsched/pkg/domain/entities"

// OrderRepository owns the order collection. Implementations keep insertion
// order stable; it is the tie-break for every start-hour sort.
type OrderRepository interface {
	GetOrder(id string) (*entities.Order, error)
	GetAllOrders() ([]*entities.Order, error)
	GetOrdersByMachine(machine string) ([]*entities.Order, error)
	GetOrdersByParent(parentOrderNumber string) ([]*entities.Order, error)
	Machines() []string
	LoadOrders(orders []*entities.Order) error
	SaveOrder(order *entities.Order) error
	DeleteOrder(id string) error
}
