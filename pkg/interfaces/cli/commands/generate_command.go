package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// GenerateConfig holds configuration for schedule generation
type GenerateConfig struct {
	ConfigFile string  // Plant config supplying machines, setup matrix and recipes
	Orders     int     // Number of manufacturing orders; each expands to one operation per routing step
	Locked     float64 // Fraction of operations generated as locked
	Inventory  float64 // Inventory multiplier (e.g., 0.5 = half coverage, 2.0 = double coverage)
	OutputDir  string  // Output directory for generated files
	Seed       int64   // Random seed for reproducible generation
	Help       bool    // Show help
	Verbose    bool    // Verbose output
}

// GenerateCommand writes a synthetic orders.csv and inventory.csv
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    os.Stdout,
	}
}

// SetOutput redirects progress and help output
func (cmd *GenerateCommand) SetOutput(w io.Writer) {
	cmd.out = w
}

// routingStep is one operation of every generated manufacturing order,
// run on any machine of the listed groups
type routingStep struct {
	Operation string
	Groups    []string
}

var routing = []routingStep{
	{Operation: "Buigen", Groups: []string{"BUIG"}},
	{Operation: "Lassen", Groups: []string{"LAS", "LASROBOT"}},
	{Operation: "Lektest", Groups: []string{"LEAKTEST"}},
}

// generationEpoch is the calendar date of hour zero in generated schedules
var generationEpoch = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if cmd.config.Orders <= 0 {
		return fmt.Errorf("order count must be positive, got %d", cmd.config.Orders)
	}
	if cmd.config.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if cmd.config.Locked < 0 || cmd.config.Locked > 1 {
		return fmt.Errorf("locked fraction must be between 0 and 1, got %g", cmd.config.Locked)
	}

	cfg, err := loadPlantConfig(cmd.config.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	matrix, err := cfg.SetupMatrix()
	if err != nil {
		return fmt.Errorf("invalid setup matrix: %w", err)
	}
	machines, err := cfg.MachineList()
	if err != nil {
		return fmt.Errorf("invalid machine list: %w", err)
	}
	recipes, err := cfg.RecipeTable()
	if err != nil {
		return fmt.Errorf("invalid recipes: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "Generating %d manufacturing orders across %d machines, %.0f%% locked, %.1fx inventory\n",
			cmd.config.Orders, len(machines), cmd.config.Locked*100, cmd.config.Inventory)
		fmt.Fprintf(cmd.out, "Output directory: %s\n", cmd.config.OutputDir)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	orders, err := cmd.generateOrders(ctx, machines, matrix)
	if err != nil {
		return fmt.Errorf("failed to generate orders: %w", err)
	}
	if err := cmd.writeOrders(orders); err != nil {
		return fmt.Errorf("failed to write orders: %w", err)
	}
	if err := cmd.writeInventory(orders, recipes); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "Wrote %d operations to %s\n", len(orders), cmd.config.OutputDir)
	}
	return nil
}

// generateOrders expands each manufacturing order along the routing. Every
// operation starts after its predecessor in the flow has finished and after
// the chosen machine is free, changeover included, so the output satisfies
// the machine invariant.
func (cmd *GenerateCommand) generateOrders(
	ctx context.Context,
	machines []*entities.Machine,
	matrix *entities.SetupTimeMatrix,
) ([]*entities.Order, error) {
	byGroup := make(map[string][]*entities.Machine)
	for _, m := range machines {
		byGroup[m.Group] = append(byGroup[m.Group], m)
	}

	type machineTail struct {
		end float64
		typ entities.ProductType
		set bool
	}
	tails := make(map[string]*machineTail, len(machines))
	for _, m := range machines {
		tails[m.Name] = &machineTail{}
	}

	var orders []*entities.Order
	for i := 0; i < cmd.config.Orders; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parent := fmt.Sprintf("ORD-%d", 4500+i)
		productType := entities.AllProductTypes[cmd.rand.Intn(len(entities.AllProductTypes))]
		quantity := int64(10 + cmd.rand.Intn(191))
		ready := float64(cmd.rand.Intn(24))

		var flow []*entities.Order
		for _, step := range routing {
			var candidates []*entities.Machine
			for _, group := range step.Groups {
				candidates = append(candidates, byGroup[group]...)
			}
			if len(candidates) == 0 {
				continue
			}
			machine := candidates[cmd.rand.Intn(len(candidates))]
			tail := tails[machine.Name]

			start := ready
			if tail.set {
				start = math.Max(start, tail.end+matrix.Changeover(tail.typ, productType))
			}
			duration := float64(2 + cmd.rand.Intn(11))

			order, err := entities.NewOrder(
				strconv.Itoa(len(orders)+len(flow)+1),
				fmt.Sprintf("%s-%d", parent, len(flow)+1),
				machine.Name,
				productType,
				start,
				duration,
				quantity,
				entities.Planned,
			)
			if err != nil {
				return nil, err
			}
			order.ParentOrderNumber = parent
			order.Operation = step.Operation
			order.MachineGroup = machine.Group
			if cmd.rand.Float64() < cmd.config.Locked {
				order.Status = entities.Locked
			}
			if cmd.rand.Float64() < 0.05 {
				order.BOMStatus = entities.BOMRisk
			}

			tail.end, tail.typ, tail.set = order.EndHour(), productType, true
			ready = order.EndHour()
			flow = append(flow, order)
		}
		if len(flow) == 0 {
			return nil, fmt.Errorf("no configured machine serves any routing step")
		}

		// Deadline lands between two days early and ten days of slack
		finish := ready
		deadlineDays := int(finish/24) + cmd.rand.Intn(13) - 2
		if deadlineDays < 0 {
			deadlineDays = 0
		}
		deadline := generationEpoch.AddDate(0, 0, deadlineDays)
		deadlineHour := float64(deadlineDays * 24)
		for _, o := range flow {
			o.Deadline = deadline.Format("2006-01-02")
			if o.Status == entities.Locked {
				continue
			}
			switch {
			case finish > deadlineHour:
				o.Status = entities.Late
			case finish > deadlineHour-24:
				o.Status = entities.NearDeadline
			}
		}
		orders = append(orders, flow...)
	}

	return orders, nil
}

// writeOrders creates the orders.csv file
func (cmd *GenerateCommand) writeOrders(orders []*entities.Order) error {
	file, err := os.Create(filepath.Join(cmd.config.OutputDir, "orders.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	w.Write([]string{
		"id", "order_number", "parent_order_number", "operation", "machine", "machine_group",
		"product_type", "start_hour", "duration_hours", "status", "quantity", "deadline", "bom_status",
	})
	for _, o := range orders {
		w.Write([]string{
			o.ID,
			o.OrderNumber,
			o.ParentOrderNumber,
			o.Operation,
			o.Machine,
			o.MachineGroup,
			o.ProductType.String(),
			strconv.FormatFloat(o.StartHour, 'f', -1, 64),
			strconv.FormatFloat(o.DurationHours, 'f', -1, 64),
			o.Status.String(),
			strconv.FormatInt(o.Quantity, 10),
			o.Deadline,
			o.BOMStatus.String(),
		})
	}
	w.Flush()
	return w.Error()
}

// writeInventory creates the inventory.csv file. Each consumed material is
// stocked at the multiplier times the schedule's total requirement.
func (cmd *GenerateCommand) writeInventory(orders []*entities.Order, recipes entities.Recipes) error {
	required := make(map[entities.MaterialName]decimal.Decimal)
	for _, o := range orders {
		recipe, ok := recipes[o.ProductType]
		if !ok || recipe.Consumes == "" {
			continue
		}
		required[recipe.Consumes] = required[recipe.Consumes].Add(recipe.Required(o.Quantity))
	}

	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, string(name))
	}
	sort.Strings(names)

	file, err := os.Create(filepath.Join(cmd.config.OutputDir, "inventory.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	multiplier := decimal.NewFromFloat(cmd.config.Inventory)
	w := csv.NewWriter(file)
	w.Write([]string{"material", "quantity", "unit"})
	for _, name := range names {
		qty := required[entities.MaterialName(name)].Mul(multiplier).Ceil()
		w.Write([]string{name, qty.String(), "ea"})
	}
	w.Flush()
	return w.Error()
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.out, `Schedule Generator

USAGE:
    scheduler generate [OPTIONS]

OPTIONS:
    -orders <N>         Number of manufacturing orders to generate (default: 20)
    -locked <F>         Fraction of operations generated as locked (default: 0.1)
    -inventory <F>      Inventory multiplier (e.g., 0.5 = half coverage, 2.0 = double coverage)
    -config <file>      Plant config YAML supplying machines, setup matrix and recipes
    -output <DIR>       Output directory for generated files (required)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    # Generate a small schedule with tight material coverage
    scheduler generate -orders 10 -inventory 0.6 -output ./data/small

    # Generate a reproducible schedule
    scheduler generate -orders 200 -locked 0.05 -inventory 1.2 -output ./data/large -seed 12345`)
}
