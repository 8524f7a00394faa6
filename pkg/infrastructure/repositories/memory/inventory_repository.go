package memory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopsched/pkg/domain/entities"
	"github.com/vsinha/shopsched/pkg/domain/repositories"
)

// InventoryRepository provides in-memory starting inventory storage
type InventoryRepository struct {
	materials    []entities.Material
	materialsMap map[entities.MaterialName]int
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		materials:    []entities.Material{},
		materialsMap: make(map[entities.MaterialName]int),
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadMaterials loads materials into the repository. A material listed twice
// has its quantities summed, like two lots of the same stock.
func (r *InventoryRepository) LoadMaterials(materials []*entities.Material) error {
	for _, m := range materials {
		if m == nil {
			return fmt.Errorf("material cannot be nil")
		}
		r.AddMaterial(*m)
	}
	return nil
}

// AddMaterial adds stock for a material
func (r *InventoryRepository) AddMaterial(material entities.Material) {
	if index, exists := r.materialsMap[material.Name]; exists {
		r.materials[index].OnHand = r.materials[index].OnHand.Add(material.OnHand)
		return
	}
	r.materialsMap[material.Name] = len(r.materials)
	r.materials = append(r.materials, material)
}

// GetMaterial returns a copy of the named material
func (r *InventoryRepository) GetMaterial(name entities.MaterialName) (*entities.Material, error) {
	index, exists := r.materialsMap[name]
	if !exists {
		return nil, fmt.Errorf("material not found: %s", name)
	}
	material := r.materials[index]
	return &material, nil
}

// GetAllMaterials returns copies of all materials sorted by name
func (r *InventoryRepository) GetAllMaterials() ([]*entities.Material, error) {
	materials := make([]*entities.Material, 0, len(r.materials))
	for i := range r.materials {
		material := r.materials[i]
		materials = append(materials, &material)
	}
	sort.Slice(materials, func(i, j int) bool {
		return materials[i].Name < materials[j].Name
	})
	return materials, nil
}

// StartingStock returns the on-hand quantity per material
func (r *InventoryRepository) StartingStock() map[entities.MaterialName]decimal.Decimal {
	stock := make(map[entities.MaterialName]decimal.Decimal, len(r.materials))
	for _, m := range r.materials {
		stock[m.Name] = m.OnHand
	}
	return stock
}

// GetAvailableQuantity returns the on-hand quantity of a material, zero if unknown
func (r *InventoryRepository) GetAvailableQuantity(name entities.MaterialName) decimal.Decimal {
	index, exists := r.materialsMap[name]
	if !exists {
		return decimal.Zero
	}
	return r.materials[index].OnHand
}
