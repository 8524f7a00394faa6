package repositories

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// InventoryRepository provides the starting material inventory
type InventoryRepository interface {
	GetMaterial(name entities.MaterialName) (*entities.Material, error)
	GetAllMaterials() ([]*entities.Material, error)
	LoadMaterials(materials []*entities.Material) error
	// StartingStock snapshots on-hand quantities for a ledger run
	StartingStock() map[entities.MaterialName]decimal.Decimal
}
