package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/vsinha/shopsched/pkg/application/dto"
	"github.com/vsinha/shopsched/pkg/application/services/scheduling"
	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// SessionConfig holds configuration for the interactive scheduling session
type SessionConfig struct {
	ConfigFile    string
	OrdersFile    string
	InventoryFile string
	Verbose       bool
	LogMode       string
	Help          bool
}

// SessionCommand runs an interactive session over one loaded schedule.
// Every accepted mutation is applied to the in-memory schedule and the
// ledger is rerun before the prompt returns.
type SessionCommand struct {
	config SessionConfig
	engine *scheduling.Engine
	in     io.Reader
	out    io.Writer
}

// NewSessionCommand creates a new session command reading stdin
func NewSessionCommand(config SessionConfig) *SessionCommand {
	return &SessionCommand{
		config: config,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetIO replaces the session input and output streams
func (c *SessionCommand) SetIO(in io.Reader, out io.Writer) {
	c.in = in
	c.out = out
}

// Execute runs the interactive session until quit, end of input or
// context cancellation
func (c *SessionCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.printHelp()
		return nil
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

	c.engine, err = buildEngine(InputFiles{
		Config:    c.config.ConfigFile,
		Orders:    c.config.OrdersFile,
		Inventory: c.config.InventoryFile,
	}, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}

	return c.runInteractiveSession(ctx)
}

func (c *SessionCommand) runInteractiveSession(ctx context.Context) error {
	fmt.Fprintln(c.out, "=== Scheduling Session ===")
	fmt.Fprintln(c.out, "Type 'help' for available commands")
	fmt.Fprintln(c.out)

	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "sched> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		quit, err := c.processCommand(line)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
		if quit {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}
		fmt.Fprintln(c.out)
	}

	return scanner.Err()
}

func (c *SessionCommand) processCommand(line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	command := parts[0]
	args := parts[1:]

	switch command {
	case "help", "h":
		c.printInteractiveHelp()
	case "show", "ls":
		return false, c.handleShow(args)
	case "purge":
		return false, c.handlePurge(args)
	case "window":
		return false, c.handleWindow(args)
	case "move", "mv":
		return false, c.handleMove(args)
	case "status":
		return false, c.handleStatus(args)
	case "start":
		return false, c.handleStart(args)
	case "delete", "rm":
		return false, c.handleDelete(args)
	case "ledger":
		return false, c.printResult(c.engine.RecomputeLedger())
	case "flow":
		return false, c.handleFlow(args)
	case "violations":
		return false, c.handleViolations()
	case "events":
		return false, c.handleShowEvents(args)
	case "stats":
		return false, c.handleStats()
	case "quit", "q", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command: %s (type 'help' for available commands)", command)
	}

	return false, nil
}

func (c *SessionCommand) handleShow(args []string) error {
	orders, err := c.engine.Orders()
	if err != nil {
		return err
	}
	filter := dto.OrderFilter{Machine: strings.Join(args, " ")}
	c.printOrders(dto.FilterOrders(orders, filter))
	return nil
}

func (c *SessionCommand) handlePurge(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: purge <order-id>")
	}
	return c.printResult(c.engine.PurgeFrom(args[0]))
}

func (c *SessionCommand) handleWindow(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: window <from-hour> <to-hour> [machine,machine...]")
	}
	lo, err := parseHour(args[0])
	if err != nil {
		return err
	}
	hi, err := parseHour(args[1])
	if err != nil {
		return err
	}
	machines := splitList(strings.Join(args[2:], " "))
	return c.printResult(c.engine.PurgeWindow(machines, lo, hi))
}

func (c *SessionCommand) handleMove(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: move <order-id> <machine> <start-hour>")
	}
	start, err := parseHour(args[len(args)-1])
	if err != nil {
		return err
	}
	machine := strings.Join(args[1:len(args)-1], " ")
	return c.printResult(c.engine.Relocate(args[0], machine, start))
}

func (c *SessionCommand) handleStatus(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: status <order-id> <planned|locked|near-deadline|late|parked>")
	}
	status, err := entities.ParseOrderStatus(args[1])
	if err != nil {
		return err
	}
	return c.printResult(c.engine.SetStatus(args[0], status))
}

func (c *SessionCommand) handleStart(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: start <order-id> <hour>")
	}
	hour, err := parseHour(args[1])
	if err != nil {
		return err
	}
	return c.printResult(c.engine.SetStartHour(args[0], hour))
}

func (c *SessionCommand) handleDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <order-id>")
	}
	return c.printResult(c.engine.Delete(args[0]))
}

func (c *SessionCommand) handleFlow(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: flow <parent-order-number>")
	}
	flow, err := c.engine.Flow(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "=== Flow %s ===\n", args[0])
	for _, o := range flow {
		fmt.Fprintf(c.out, "  %-12s %-12s %-12s %g-%g %s\n",
			o.OrderNumber, o.Operation, o.Machine, o.StartHour, o.EndHour(), o.Status)
	}
	return nil
}

func (c *SessionCommand) handleViolations() error {
	violations, err := c.engine.Violations()
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		fmt.Fprintln(c.out, "No invariant violations")
		return nil
	}
	for _, v := range violations {
		fmt.Fprintf(c.out, "  %s\n", v)
	}
	return nil
}

func (c *SessionCommand) handleStats() error {
	allEvents, err := c.engine.Events().ReadAllEvents(0)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	fmt.Fprintf(c.out, "=== Session Status ===\n")
	fmt.Fprintf(c.out, "Total events recorded: %d\n", len(allEvents))

	eventCounts := make(map[string]int)
	for _, event := range allEvents {
		eventCounts[event.Type()]++
	}
	types := make([]string, 0, len(eventCounts))
	for eventType := range eventCounts {
		types = append(types, eventType)
	}
	sort.Strings(types)

	fmt.Fprintf(c.out, "\nEvent counts by type:\n")
	for _, eventType := range types {
		fmt.Fprintf(c.out, "  %s: %d\n", eventType, eventCounts[eventType])
	}

	return nil
}

func (c *SessionCommand) handleShowEvents(args []string) error {
	limit := 10
	if len(args) > 0 {
		if l, err := strconv.Atoi(args[0]); err == nil && l > 0 {
			limit = l
		}
	}

	allEvents, err := c.engine.Events().ReadAllEvents(0)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	fmt.Fprintf(c.out, "=== Recent Events (last %d) ===\n", limit)
	start := len(allEvents) - limit
	if start < 0 {
		start = 0
	}

	for i := start; i < len(allEvents); i++ {
		event := allEvents[i]
		fmt.Fprintf(c.out, "[%s] %s -> %s\n",
			event.Timestamp().Format("15:04:05"),
			event.Type(),
			event.StreamID())
	}

	return nil
}

func (c *SessionCommand) printResult(result *dto.ScheduleResult, err error) error {
	if err != nil {
		return err
	}
	if len(result.Moved) > 0 {
		fmt.Fprintf(c.out, "Moved: %s\n", strings.Join(result.Moved, ", "))
	} else {
		fmt.Fprintln(c.out, "Moved: none")
	}
	fmt.Fprintf(c.out, "Stock errors: %d, warnings: %d\n", result.ErrorCount(), result.WarningCount())
	for _, issue := range result.Issues {
		fmt.Fprintf(c.out, "  %s %s short %s of %s\n",
			issue.Severity, issue.OrderNumber, issue.Shortage.String(), issue.Material)
	}
	fmt.Fprintf(c.out, "Invariant violations: %d\n", len(result.Violations))
	for _, v := range result.Violations {
		fmt.Fprintf(c.out, "  %s\n", v)
	}
	return nil
}

func (c *SessionCommand) printOrders(orders []*entities.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(c.out, "No orders")
		return
	}
	for _, o := range orders {
		fmt.Fprintf(c.out, "  %-8s %-14s %-12s %-7s %6g-%-6g %s\n",
			o.ID, o.OrderNumber, o.Machine, o.ProductType, o.StartHour, o.EndHour(), o.Status)
	}
}

func parseHour(s string) (float64, error) {
	hour, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hour: %s", s)
	}
	return hour, nil
}

func (c *SessionCommand) printHelp() {
	fmt.Fprintln(c.out, `Interactive Scheduling Session

USAGE:
    scheduler session -orders <file> [OPTIONS]

OPTIONS:
    -config <file>      Plant config YAML
    -orders <file>      Orders CSV file (required)
    -inventory <file>   Inventory CSV file
    -log-mode <mode>    development, production or nop
    -verbose            Enable verbose output
    -help               Show this help message

Once started, type 'help' for the session commands.`)
}

func (c *SessionCommand) printInteractiveHelp() {
	fmt.Fprintln(c.out, `Available commands:
  show [machine]                      List orders, optionally for one machine
  purge <order-id>                    Compact the order's machine from the order onwards
  window <from> <to> [m1,m2...]       Compact [from, to) on the machines (all when omitted)
  move <order-id> <machine> <hour>    Relocate an order and recompact the destination
  status <order-id> <status>          Change order status
  start <order-id> <hour>             Override the start hour without compaction
  delete <order-id>                   Remove an order
  ledger                              Rerun the material ledger
  flow <parent-order>                 Show the operations of a manufacturing order
  violations                          List invariant violations
  events [n]                          Show the last n events (default 10)
  stats                               Event counts by type
  quit                                Leave the session`)
}
