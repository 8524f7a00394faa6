// Package config loads the plant configuration: setup matrix, machines,
// starting inventory and per-product material recipes.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

type Config struct {
	Setup     SetupConfig             `yaml:"setup"`
	Machines  []MachineConfig         `yaml:"machines"`
	Inventory map[string]float64      `yaml:"inventory"`
	Recipes   map[string]RecipeConfig `yaml:"recipes"`
	Logging   LoggingConfig           `yaml:"logging"`
}

type SetupConfig struct {
	SameTypeHours float64            `yaml:"same_type_hours"`
	DefaultHours  float64            `yaml:"default_hours"`
	Transitions   []TransitionConfig `yaml:"transitions"`
}

type TransitionConfig struct {
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
	Hours float64 `yaml:"hours"`
}

type MachineConfig struct {
	Name             string `yaml:"name"`
	Group            string `yaml:"group"`
	CapacityModifier int    `yaml:"capacity_modifier"`
	ShiftCount       int    `yaml:"shift_count"`
}

type RecipeConfig struct {
	Consumes    string  `yaml:"consumes"`
	ConsumeRate float64 `yaml:"consume_rate"`
	Produces    string  `yaml:"produces"`
	ProduceRate float64 `yaml:"produce_rate"`
}

type LoggingConfig struct {
	Mode string `yaml:"mode"` // development | production
}

// Default returns the standard plant layout and retooling matrix
func Default() *Config {
	cfg := &Config{
		Setup: SetupConfig{
			SameTypeHours: entities.DefaultSameTypeSetupHours,
			DefaultHours:  entities.DefaultSetupHours,
		},
		Machines: []MachineConfig{
			{Name: "BUIG 1", Group: "BUIG", CapacityModifier: 85, ShiftCount: 2},
			{Name: "BUIG 2", Group: "BUIG", CapacityModifier: 90, ShiftCount: 2},
			{Name: "BUIG 3", Group: "BUIG", CapacityModifier: 80, ShiftCount: 1},
			{Name: "LASROBOT 1", Group: "LASROBOT", CapacityModifier: 95, ShiftCount: 3},
			{Name: "LASROBOT 2", Group: "LASROBOT", CapacityModifier: 88, ShiftCount: 2},
			{Name: "LAS 1", Group: "LAS", CapacityModifier: 80, ShiftCount: 2},
			{Name: "LAS 2", Group: "LAS", CapacityModifier: 85, ShiftCount: 2},
			{Name: "LAS 3", Group: "LAS", CapacityModifier: 90, ShiftCount: 1},
			{Name: "HYDRO 1", Group: "HYDRO", CapacityModifier: 92, ShiftCount: 2},
			{Name: "HYDRO 2", Group: "HYDRO", CapacityModifier: 88, ShiftCount: 2},
			{Name: "ASSEMBLAGE 1", Group: "ASSEMBLAGE", CapacityModifier: 100, ShiftCount: 1},
			{Name: "ASSEMBLAGE 2", Group: "ASSEMBLAGE", CapacityModifier: 95, ShiftCount: 2},
			{Name: "LEAKTEST 1", Group: "LEAKTEST", CapacityModifier: 90, ShiftCount: 2},
			{Name: "LEAKTEST 2", Group: "LEAKTEST", CapacityModifier: 85, ShiftCount: 1},
		},
		Inventory: map[string]float64{
			"steel-plate":     2000,
			"bearings":        400,
			"carbide-inserts": 150,
		},
		Recipes: map[string]RecipeConfig{
			"TYPE_A": {Consumes: "steel-plate", ConsumeRate: 2, Produces: "exhaust-pipe", ProduceRate: 1},
			"TYPE_B": {Consumes: "steel-plate", ConsumeRate: 3, Produces: "chassis-tube", ProduceRate: 1},
			"TYPE_C": {Consumes: "exhaust-pipe", ConsumeRate: 1, Produces: "manifold", ProduceRate: 1},
			"TYPE_D": {Consumes: "chassis-tube", ConsumeRate: 1},
		},
		Logging: LoggingConfig{Mode: "development"},
	}
	for pair, hours := range entities.DefaultSetupTransitions() {
		cfg.Setup.Transitions = append(cfg.Setup.Transitions, TransitionConfig{
			From:  pair.From.String(),
			To:    pair.To.String(),
			Hours: hours,
		})
	}
	return cfg
}

// Load reads a YAML file over the defaults. Sections present in the file
// replace the default section wholesale; absent sections keep defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if overlay.Setup.SameTypeHours != 0 || overlay.Setup.DefaultHours != 0 || overlay.Setup.Transitions != nil {
		cfg.Setup = overlay.Setup
	}
	if overlay.Machines != nil {
		cfg.Machines = overlay.Machines
	}
	if overlay.Inventory != nil {
		cfg.Inventory = overlay.Inventory
	}
	if overlay.Recipes != nil {
		cfg.Recipes = overlay.Recipes
	}
	if overlay.Logging.Mode != "" {
		cfg.Logging = overlay.Logging
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks names, product types and value ranges
func (c *Config) Validate() error {
	if _, err := c.SetupMatrix(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if _, err := c.MachineList(); err != nil {
		return fmt.Errorf("machines: %w", err)
	}
	if _, err := c.Materials(); err != nil {
		return fmt.Errorf("inventory: %w", err)
	}
	if _, err := c.RecipeTable(); err != nil {
		return fmt.Errorf("recipes: %w", err)
	}
	return nil
}

// SetupMatrix builds the immutable setup time matrix
func (c *Config) SetupMatrix() (*entities.SetupTimeMatrix, error) {
	transitions := make(map[entities.SetupPair]float64, len(c.Setup.Transitions))
	for _, t := range c.Setup.Transitions {
		from, err := entities.ParseProductType(t.From)
		if err != nil {
			return nil, err
		}
		to, err := entities.ParseProductType(t.To)
		if err != nil {
			return nil, err
		}
		pair := entities.SetupPair{From: from, To: to}
		if _, dup := transitions[pair]; dup {
			return nil, fmt.Errorf("duplicate transition %s->%s", from, to)
		}
		transitions[pair] = t.Hours
	}
	return entities.NewSetupTimeMatrix(c.Setup.SameTypeHours, c.Setup.DefaultHours, transitions)
}

// MachineList returns the configured machines, rejecting duplicate names
func (c *Config) MachineList() ([]*entities.Machine, error) {
	seen := make(map[string]bool, len(c.Machines))
	machines := make([]*entities.Machine, 0, len(c.Machines))
	for _, mc := range c.Machines {
		m, err := entities.NewMachine(mc.Name, mc.Group)
		if err != nil {
			return nil, err
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("duplicate machine %s", m.Name)
		}
		seen[m.Name] = true
		if mc.CapacityModifier != 0 {
			m.CapacityModifier = mc.CapacityModifier
		}
		if mc.ShiftCount != 0 {
			m.ShiftCount = mc.ShiftCount
		}
		machines = append(machines, m)
	}
	return machines, nil
}

// Materials converts the inventory section into starting stock
func (c *Config) Materials() ([]*entities.Material, error) {
	materials := make([]*entities.Material, 0, len(c.Inventory))
	for name, qty := range c.Inventory {
		m, err := entities.NewMaterial(entities.MaterialName(name), decimal.NewFromFloat(qty), "")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		materials = append(materials, m)
	}
	return materials, nil
}

// RecipeTable converts the recipes section keyed by product type
func (c *Config) RecipeTable() (entities.Recipes, error) {
	recipes := make(entities.Recipes, len(c.Recipes))
	for typeName, rc := range c.Recipes {
		productType, err := entities.ParseProductType(typeName)
		if err != nil {
			return nil, err
		}
		if _, dup := recipes[productType]; dup {
			return nil, fmt.Errorf("duplicate recipe for %s", productType)
		}
		recipe, err := entities.NewRecipe(
			entities.MaterialName(rc.Consumes),
			decimal.NewFromFloat(rc.ConsumeRate),
			entities.MaterialName(rc.Produces),
			decimal.NewFromFloat(rc.ProduceRate),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", productType, err)
		}
		recipes[productType] = *recipe
	}
	return recipes, nil
}
