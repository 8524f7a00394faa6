package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vsinha/shopsched/pkg/application/dto"
	"github.com/vsinha/shopsched/pkg/application/services/scheduling"
	"github.com/vsinha/shopsched/pkg/domain/entities"
	"github.com/vsinha/shopsched/pkg/interfaces/cli/output"
)

// Operations accepted by the schedule command
const (
	OpShow        = "show"
	OpPurgeFrom   = "purge-from"
	OpPurgeWindow = "purge-window"
	OpRelocate    = "relocate"
	OpStatus      = "status"
	OpSetStart    = "set-start"
	OpDelete      = "delete"
	OpLedger      = "ledger"
	OpFlow        = "flow"
)

// Config holds configuration for the schedule command
type Config struct {
	ConfigFile    string
	OrdersFile    string
	InventoryFile string
	Operation     string
	OrderID       string
	Machine       string
	Machines      string // comma-separated, for purge-window
	Start         float64
	From          float64
	To            float64
	Status        string
	Parent        string
	Filter        string // comma-separated statuses shown in text output
	Group         string
	Format        string
	OutputDir     string
	Verbose       bool
	LogMode       string
	Help          bool
}

// ScheduleCommand loads a schedule, applies one operation and prints the result
type ScheduleCommand struct {
	config Config
	out    io.Writer
}

// NewScheduleCommand creates a new schedule command with the given configuration
func NewScheduleCommand(config Config) *ScheduleCommand {
	return &ScheduleCommand{
		config: config,
		out:    os.Stdout,
	}
}

// SetOutput redirects command output, stdout by default
func (c *ScheduleCommand) SetOutput(w io.Writer) {
	c.out = w
}

// Execute runs the schedule command
func (c *ScheduleCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	op := c.config.Operation
	if op == "" {
		op = OpShow
	}
	filter, err := c.orderFilter(op)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	cfg, err := loadPlantConfig(c.config.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := newLogger(c.config.LogMode, c.config.Verbose, cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	engine, err := buildEngine(InputFiles{
		Config:    c.config.ConfigFile,
		Orders:    c.config.OrdersFile,
		Inventory: c.config.InventoryFile,
	}, cfg, log)
	if err != nil {
		return err
	}

	startTime := time.Now()
	result, listed, err := c.run(engine, op)
	if err != nil {
		return fmt.Errorf("%s rejected: %w", op, err)
	}
	elapsed := time.Since(startTime)
	log.Info("operation complete", "operation", op, "moved", len(result.Moved),
		"issues", len(result.Issues), "violations", len(result.Violations), "elapsed", elapsed)

	if listed == nil {
		listed = dto.FilterOrders(result.Orders, filter)
	}
	lo, hi := c.window(result.Orders)
	timelines, err := engine.Timelines(ctx, lo, hi)
	if err != nil {
		return fmt.Errorf("failed to derive timelines: %w", err)
	}
	stock, err := engine.Stock()
	if err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}

	report := &output.Report{
		Operation: op,
		Result:    result,
		Timelines: timelines,
		Stock:     stock,
		Listed:    listed,
	}
	return output.Generate(c.out, report, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Elapsed:   elapsed,
	})
}

// run dispatches one operation; the order slice is non-nil only when the
// operation selects its own orders to list
func (c *ScheduleCommand) run(engine *scheduling.Engine, op string) (*dto.ScheduleResult, []*entities.Order, error) {
	switch op {
	case OpShow, OpLedger:
		result, err := engine.RecomputeLedger()
		return result, nil, err
	case OpPurgeFrom:
		if err := c.require("order", c.config.OrderID); err != nil {
			return nil, nil, err
		}
		result, err := engine.PurgeFrom(c.config.OrderID)
		return result, nil, err
	case OpPurgeWindow:
		result, err := engine.PurgeWindow(splitList(c.config.Machines), c.config.From, c.config.To)
		return result, nil, err
	case OpRelocate:
		if err := c.require("order", c.config.OrderID); err != nil {
			return nil, nil, err
		}
		if err := c.require("machine", c.config.Machine); err != nil {
			return nil, nil, err
		}
		result, err := engine.Relocate(c.config.OrderID, c.config.Machine, c.config.Start)
		return result, nil, err
	case OpStatus:
		if err := c.require("order", c.config.OrderID); err != nil {
			return nil, nil, err
		}
		status, err := entities.ParseOrderStatus(c.config.Status)
		if err != nil {
			return nil, nil, err
		}
		result, err := engine.SetStatus(c.config.OrderID, status)
		return result, nil, err
	case OpSetStart:
		if err := c.require("order", c.config.OrderID); err != nil {
			return nil, nil, err
		}
		result, err := engine.SetStartHour(c.config.OrderID, c.config.Start)
		return result, nil, err
	case OpDelete:
		if err := c.require("order", c.config.OrderID); err != nil {
			return nil, nil, err
		}
		result, err := engine.Delete(c.config.OrderID)
		return result, nil, err
	case OpFlow:
		if err := c.require("parent", c.config.Parent); err != nil {
			return nil, nil, err
		}
		flow, err := engine.Flow(c.config.Parent)
		if err != nil {
			return nil, nil, err
		}
		result, err := engine.RecomputeLedger()
		return result, flow, err
	default:
		return nil, nil, fmt.Errorf("unknown operation: %s", op)
	}
}

func (c *ScheduleCommand) require(flag, value string) error {
	if value == "" {
		return fmt.Errorf("-%s is required for %s", flag, c.config.Operation)
	}
	return nil
}

func (c *ScheduleCommand) orderFilter(op string) (dto.OrderFilter, error) {
	filter := dto.OrderFilter{Group: c.config.Group}
	if op == OpShow {
		filter.Machine = c.config.Machine
	}
	for _, name := range splitList(c.config.Filter) {
		status, err := entities.ParseOrderStatus(name)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	return filter, nil
}

// window is the timeline range to report: [From, To) when given, otherwise
// From up to the end of the last active order
func (c *ScheduleCommand) window(orders []*entities.Order) (float64, float64) {
	lo, hi := c.config.From, c.config.To
	if hi > lo {
		return lo, hi
	}
	hi = lo + 1
	for _, o := range orders {
		if o.IsActive() && o.EndHour() > hi {
			hi = o.EndHour()
		}
	}
	return lo, hi
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// showHelp displays the help message
func (c *ScheduleCommand) showHelp() {
	fmt.Fprintf(c.out, `Shop Floor Scheduler - machine timelines, changeover-aware compaction and material feasibility

USAGE:
    scheduler -orders <file> [-op <operation>] [OPTIONS]
    scheduler session -orders <file> [OPTIONS]
    scheduler generate -output <dir> [OPTIONS]

OPERATIONS:
    show            Print orders, timelines and stock issues (default)
    purge-from      Compact the order's machine from the order onwards (-order)
    purge-window    Compact [-from, -to) on -machines (all machines when empty)
    relocate        Move -order to -machine at -start and recompact the destination
    status          Set -order to -status (planned, locked, parked, ...)
    set-start       Write -start directly onto -order without compaction
    delete          Remove -order from the schedule
    ledger          Recompute the material ledger
    flow            List the operations of manufacturing order -parent

OPTIONS:
    -config <file>      Plant config YAML (setup matrix, machines, inventory, recipes)
    -orders <file>      Orders CSV file
    -inventory <file>   Inventory CSV file (overrides config inventory)
    -filter <list>      Only list orders with these statuses, e.g. late,near-deadline
    -group <name>       Only list orders of this machine group
    -format <fmt>       Output format: text, json, csv (default: text)
    -output <dir>       Output directory for json/csv results
    -log-mode <mode>    development or production logging
    -verbose            Enable verbose output
    -help               Show this help message

CSV FILE FORMATS:

orders.csv:
    id,order_number,parent_order_number,operation,machine,machine_group,product_type,start_hour,duration_hours,status,quantity,deadline,bom_status
    1,ORD-4500-1,ORD-4500,Buigen,BUIG 1,BUIG,TYPE_A,0,12,planned,120,2026-02-21,ok

inventory.csv:
    material,quantity,unit
    steel-plate,2000,kg

EXAMPLES:
    scheduler -orders data/orders.csv -filter late
    scheduler -orders data/orders.csv -op relocate -order 7 -machine "LAS 2" -start 16
    scheduler -orders data/orders.csv -op purge-window -machines "BUIG 1,BUIG 2" -from 0 -to 48
    scheduler -config plant.yaml -orders data/orders.csv -op ledger -format json
`)
}
