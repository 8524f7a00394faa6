package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shopsched/pkg/domain/entities"
	"github.com/vsinha/shopsched/pkg/domain/services"
	"github.com/vsinha/shopsched/pkg/infrastructure/repositories/csv"
)

func generate(t *testing.T, config GenerateConfig) string {
	t.Helper()
	config.OutputDir = t.TempDir()
	cmd := NewGenerateCommand(config)
	cmd.SetOutput(&bytes.Buffer{})
	require.NoError(t, cmd.Execute(context.Background()))
	return config.OutputDir
}

func TestGenerateCommand_ProducesLoadableSchedule(t *testing.T) {
	dir := generate(t, GenerateConfig{Orders: 12, Locked: 0.2, Inventory: 1, Seed: 7})

	loader := csv.NewLoader()
	orders, err := loader.LoadOrders(filepath.Join(dir, "orders.csv"))
	require.NoError(t, err)
	// Default plant serves all three routing steps
	assert.Len(t, orders, 36)

	assert.Empty(t, services.CheckInvariant(orders, entities.DefaultSetupTimeMatrix()))

	parents := make(map[string]int)
	for _, o := range orders {
		parents[o.ParentOrderNumber]++
		assert.NotEmpty(t, o.Operation)
		assert.NotEmpty(t, o.Deadline)
	}
	assert.Len(t, parents, 12)

	materials, err := loader.LoadInventory(filepath.Join(dir, "inventory.csv"))
	require.NoError(t, err)
	assert.NotEmpty(t, materials)
}

func TestGenerateCommand_FlowIsSequential(t *testing.T) {
	dir := generate(t, GenerateConfig{Orders: 5, Inventory: 1, Seed: 99})

	orders, err := csv.NewLoader().LoadOrders(filepath.Join(dir, "orders.csv"))
	require.NoError(t, err)

	byParent := make(map[string][]*entities.Order)
	for _, o := range orders {
		byParent[o.ParentOrderNumber] = append(byParent[o.ParentOrderNumber], o)
	}
	for parent, flow := range byParent {
		require.Len(t, flow, 3, parent)
		assert.Equal(t, []string{"Buigen", "Lassen", "Lektest"},
			[]string{flow[0].Operation, flow[1].Operation, flow[2].Operation})
		for i := 1; i < len(flow); i++ {
			assert.GreaterOrEqual(t, flow[i].StartHour, flow[i-1].EndHour(), parent)
		}
	}
}

func TestGenerateCommand_SeedIsReproducible(t *testing.T) {
	first := generate(t, GenerateConfig{Orders: 8, Locked: 0.1, Inventory: 0.5, Seed: 12345})
	second := generate(t, GenerateConfig{Orders: 8, Locked: 0.1, Inventory: 0.5, Seed: 12345})

	for _, name := range []string{"orders.csv", "inventory.csv"} {
		a, err := os.ReadFile(filepath.Join(first, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), name)
	}
}

func TestGenerateCommand_Validation(t *testing.T) {
	tests := []struct {
		name   string
		config GenerateConfig
		errMsg string
	}{
		{"no orders", GenerateConfig{OutputDir: "x"}, "order count must be positive"},
		{"no output", GenerateConfig{Orders: 1}, "output directory is required"},
		{"bad locked fraction", GenerateConfig{Orders: 1, OutputDir: "x", Locked: 2}, "locked fraction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGenerateCommand(tt.config).Execute(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
