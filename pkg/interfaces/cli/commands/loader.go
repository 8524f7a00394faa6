package commands

import (
	"fmt"
	"os"

	"github.com/vsinha/shopsched/pkg/application/services/scheduling"
	"github.com/vsinha/shopsched/pkg/infrastructure/config"
	"github.com/vsinha/shopsched/pkg/infrastructure/events"
	"github.com/vsinha/shopsched/pkg/infrastructure/logging"
	"github.com/vsinha/shopsched/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/shopsched/pkg/infrastructure/repositories/memory"
)

// InputFiles names the files a scheduling run is built from. Only Orders is
// required; the plant config and inventory fall back to defaults.
type InputFiles struct {
	Config    string
	Orders    string
	Inventory string
}

// loadPlantConfig reads the YAML plant config, or the defaults when no
// file is given
func loadPlantConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildEngine loads orders and inventory and wires a scheduling engine
func buildEngine(files InputFiles, cfg *config.Config, log *logging.Logger) (*scheduling.Engine, error) {
	if files.Orders == "" {
		return nil, fmt.Errorf("orders file is required")
	}
	for _, path := range []string{files.Orders, files.Inventory} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
	}

	matrix, err := cfg.SetupMatrix()
	if err != nil {
		return nil, fmt.Errorf("invalid setup matrix: %w", err)
	}
	machines, err := cfg.MachineList()
	if err != nil {
		return nil, fmt.Errorf("invalid machine list: %w", err)
	}
	recipes, err := cfg.RecipeTable()
	if err != nil {
		return nil, fmt.Errorf("invalid recipes: %w", err)
	}

	loader := csv.NewLoader()
	orders, err := loader.LoadOrders(files.Orders)
	if err != nil {
		return nil, fmt.Errorf("error loading orders: %w", err)
	}

	materials, err := cfg.Materials()
	if err != nil {
		return nil, fmt.Errorf("invalid inventory: %w", err)
	}
	if files.Inventory != "" {
		materials, err = loader.LoadInventory(files.Inventory)
		if err != nil {
			return nil, fmt.Errorf("error loading inventory: %w", err)
		}
	}

	orderRepo := memory.NewOrderRepository(len(orders))
	if err := orderRepo.LoadOrders(orders); err != nil {
		return nil, fmt.Errorf("failed to load orders into repository: %w", err)
	}
	inventoryRepo := memory.NewInventoryRepository()
	if err := inventoryRepo.LoadMaterials(materials); err != nil {
		return nil, fmt.Errorf("failed to load inventory into repository: %w", err)
	}

	log.Debug("loaded schedule inputs", "orders", len(orders), "materials", len(materials), "machines", len(machines))

	return scheduling.NewEngine(orderRepo, inventoryRepo, scheduling.Options{
		Matrix:   matrix,
		Recipes:  recipes,
		Machines: machines,
		Events:   events.NewInMemoryEventStore(log),
		Logger:   log,
	})
}

// newLogger builds the run logger; an explicit mode wins over the config file
func newLogger(mode string, verbose bool, cfg *config.Config) (*logging.Logger, error) {
	if mode == "" {
		mode = cfg.Logging.Mode
	}
	return logging.New(mode, verbose)
}
