package memory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

func TestInventoryRepository_LoadAndGetMaterial(t *testing.T) {
	repo := NewInventoryRepository()

	err := repo.LoadMaterials([]*entities.Material{
		{Name: "steel-sheet", OnHand: decimal.NewFromInt(500), Unit: "kg"},
		{Name: "bearings", OnHand: decimal.NewFromInt(40), Unit: "pcs"},
	})
	require.NoError(t, err)

	material, err := repo.GetMaterial("steel-sheet")
	require.NoError(t, err)
	assert.Equal(t, entities.MaterialName("steel-sheet"), material.Name)
	assert.True(t, material.OnHand.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "kg", material.Unit)

	_, err = repo.GetMaterial("carbide-inserts")
	assert.EqualError(t, err, "material not found: carbide-inserts")
}

func TestInventoryRepository_DuplicateMaterialsAreSummed(t *testing.T) {
	repo := NewInventoryRepository()

	require.NoError(t, repo.LoadMaterials([]*entities.Material{
		{Name: "steel-sheet", OnHand: decimal.NewFromInt(50)},
		{Name: "steel-sheet", OnHand: decimal.RequireFromString("25.5")},
	}))

	assert.True(t, repo.GetAvailableQuantity("steel-sheet").Equal(decimal.RequireFromString("75.5")))

	all, err := repo.GetAllMaterials()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInventoryRepository_StartingStockIsASnapshot(t *testing.T) {
	repo := NewInventoryRepository()
	repo.AddMaterial(entities.Material{Name: "tube", OnHand: decimal.NewFromInt(10)})

	stock := repo.StartingStock()
	stock["tube"] = decimal.NewFromInt(-99)

	assert.True(t, repo.GetAvailableQuantity("tube").Equal(decimal.NewFromInt(10)))
	assert.True(t, repo.GetAvailableQuantity("unknown").IsZero())
}

func TestInventoryRepository_GetAllMaterialsSortedByName(t *testing.T) {
	repo := NewInventoryRepository()
	repo.AddMaterial(entities.Material{Name: "tube", OnHand: decimal.NewFromInt(1)})
	repo.AddMaterial(entities.Material{Name: "bearings", OnHand: decimal.NewFromInt(2)})
	repo.AddMaterial(entities.Material{Name: "manifold", OnHand: decimal.NewFromInt(3)})

	all, err := repo.GetAllMaterials()
	require.NoError(t, err)

	names := make([]entities.MaterialName, 0, len(all))
	for _, m := range all {
		names = append(names, m.Name)
	}
	assert.Equal(t, []entities.MaterialName{"bearings", "manifold", "tube"}, names)
}
