package scheduling

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vsinha/shopsched/pkg/application/dto"
	"github.com/vsinha/shopsched/pkg/domain/entities"
	"github.com/vsinha/shopsched/pkg/domain/repositories"
	"github.com/vsinha/shopsched/pkg/domain/services"
	"github.com/vsinha/shopsched/pkg/infrastructure/events"
	"github.com/vsinha/shopsched/pkg/infrastructure/logging"
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Matrix   *entities.SetupTimeMatrix
	Recipes  entities.Recipes
	Machines []*entities.Machine
	Events   events.EventStore
	Logger   *logging.Logger
}

// Engine owns the order collection and serializes every mutation on it.
// Each accepted mutation recomputes the material ledger and re-checks the
// non-overlap invariant; rejected mutations leave the collection untouched.
type Engine struct {
	mu sync.Mutex

	orders    repositories.OrderRepository
	inventory repositories.InventoryRepository
	matrix    *entities.SetupTimeMatrix
	recipes   entities.Recipes
	machines  map[string]*entities.Machine
	events    events.EventStore
	log       *logging.Logger

	ledger     *services.LedgerResult
	seenIssues map[issueKey]bool
}

type issueKey struct {
	orderID  string
	material entities.MaterialName
	severity entities.IssueSeverity
}

// NewEngine creates a scheduling engine over the given repositories
func NewEngine(
	orders repositories.OrderRepository,
	inventory repositories.InventoryRepository,
	opts Options,
) (*Engine, error) {
	if orders == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}

	e := &Engine{
		orders:     orders,
		inventory:  inventory,
		matrix:     opts.Matrix,
		recipes:    opts.Recipes,
		machines:   make(map[string]*entities.Machine),
		events:     opts.Events,
		log:        opts.Logger,
		seenIssues: make(map[issueKey]bool),
	}
	if e.log == nil {
		e.log = logging.NewNop()
	}
	if e.matrix == nil {
		e.matrix = entities.DefaultSetupTimeMatrix()
	}
	if e.recipes == nil {
		e.recipes = entities.Recipes{}
	}
	if e.events == nil {
		e.events = events.NewInMemoryEventStore(e.log)
	}

	for _, m := range opts.Machines {
		if _, dup := e.machines[m.Name]; dup {
			return nil, fmt.Errorf("duplicate machine: %s", m.Name)
		}
		e.machines[m.Name] = m
	}
	// machines referenced only by orders are admitted without a group
	for _, name := range orders.Machines() {
		if _, ok := e.machines[name]; !ok {
			e.machines[name] = &entities.Machine{Name: name, CapacityModifier: 100, ShiftCount: 1}
		}
	}

	return e, nil
}

// Events exposes the store mutations are published to
func (e *Engine) Events() events.EventStore {
	return e.events
}

// Machines returns the known machines sorted by name
func (e *Engine) Machines() []*entities.Machine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machineList()
}

// PurgeFrom compacts the anchor's machine starting at the anchor's own start
// hour. Every movable order at or after that hour is packed tight behind its
// predecessor; locked orders stay where they are.
func (e *Engine) PurgeFrom(orderID string) (*dto.ScheduleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	anchor, err := e.orders.GetOrder(orderID)
	if err != nil {
		return nil, e.reject("purge", err, "order_id", orderID)
	}
	if anchor.Status == entities.Parked {
		return nil, e.reject("purge", fmt.Errorf("%w: %s cannot anchor a purge", entities.ErrOrderParked, orderID), "order_id", orderID)
	}

	machineOrders, err := e.orders.GetOrdersByMachine(anchor.Machine)
	if err != nil {
		return nil, err
	}
	starts, err := services.Compact(anchor.Machine, machineOrders, services.FromScope(anchor.StartHour), e.matrix)
	if err != nil {
		return nil, e.reject("purge", err, "order_id", orderID)
	}

	moved, err := e.applyStarts(machineOrders, starts)
	if err != nil {
		return nil, err
	}
	e.publish(events.MachineStream(anchor.Machine), events.OrderCompactedEvent, events.OrderCompacted{
		Machine: anchor.Machine,
		Trigger: "purge:" + orderID,
		Starts:  starts,
	})
	e.log.Info("purged machine from order", "order_id", orderID, "machine", anchor.Machine, "from_hour", anchor.StartHour, "moved", len(moved))

	return e.result(moved)
}

// PurgeWindow compacts the movable orders starting in [lo, hi) on each of
// the given machines, or on every known machine when none are given. All
// machines are computed before any is applied, so a blocked window on one
// machine rejects the whole call.
func (e *Engine) PurgeWindow(machines []string, lo, hi float64) (*dto.ScheduleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	scope, err := services.WindowScope(lo, hi)
	if err != nil {
		return nil, e.reject("purge window", err, "lo", lo, "hi", hi)
	}

	if len(machines) == 0 {
		for _, m := range e.machineList() {
			machines = append(machines, m.Name)
		}
	}
	for _, name := range machines {
		if _, ok := e.machines[name]; !ok {
			return nil, e.reject("purge window", fmt.Errorf("%w: %s", entities.ErrMachineNotFound, name), "machine", name)
		}
	}

	type plan struct {
		machine string
		orders  []*entities.Order
		starts  map[string]float64
	}
	plans := make([]plan, 0, len(machines))
	for _, name := range machines {
		machineOrders, err := e.orders.GetOrdersByMachine(name)
		if err != nil {
			return nil, err
		}
		starts, err := services.Compact(name, machineOrders, scope, e.matrix)
		if err != nil {
			return nil, e.reject("purge window", fmt.Errorf("machine %s: %w", name, err), "machine", name, "lo", lo, "hi", hi)
		}
		plans = append(plans, plan{machine: name, orders: machineOrders, starts: starts})
	}

	var moved []string
	for _, p := range plans {
		ids, err := e.applyStarts(p.orders, p.starts)
		if err != nil {
			return nil, err
		}
		moved = append(moved, ids...)
		e.publish(events.MachineStream(p.machine), events.OrderCompactedEvent, events.OrderCompacted{
			Machine: p.machine,
			Trigger: fmt.Sprintf("window:[%g,%g)", lo, hi),
			Starts:  p.starts,
		})
	}
	e.log.Info("purged window", "machines", len(machines), "lo", lo, "hi", hi, "moved", len(moved))

	return e.result(moved)
}

// Relocate moves an order to (machine, start) and recompacts the
// destination. Rejected moves leave the order at its prior machine and start.
func (e *Engine) Relocate(orderID, machine string, start float64) (*dto.ScheduleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.machines[machine]; !ok {
		return nil, e.reject("relocate", fmt.Errorf("%w: %s", entities.ErrMachineNotFound, machine), "order_id", orderID, "machine", machine)
	}
	order, err := e.orders.GetOrder(orderID)
	if err != nil {
		return nil, e.reject("relocate", err, "order_id", orderID)
	}

	all, err := e.orders.GetAllOrders()
	if err != nil {
		return nil, err
	}
	placement, err := services.Place(all, orderID, machine, start, e.matrix)
	if err != nil {
		return nil, e.reject("relocate", err, "order_id", orderID, "machine", machine, "start", start)
	}

	order.Machine = machine
	order.MachineGroup = e.groupOf(machine, order.MachineGroup)
	order.StartHour = placement.Starts[orderID]
	if err := e.orders.SaveOrder(order); err != nil {
		return nil, err
	}

	destination, err := e.orders.GetOrdersByMachine(machine)
	if err != nil {
		return nil, err
	}
	moved, err := e.applyStarts(destination, placement.Starts)
	if err != nil {
		return nil, err
	}
	moved = appendUnique(moved, orderID)

	e.publish(events.OrderStream(orderID), events.OrderRelocatedEvent, events.OrderRelocated{
		OrderID:     orderID,
		FromMachine: placement.FromMachine,
		ToMachine:   machine,
		FromStart:   e.startBefore(all, orderID),
		ToStart:     order.StartHour,
	})
	e.publish(events.MachineStream(machine), events.OrderCompactedEvent, events.OrderCompacted{
		Machine: machine,
		Trigger: "relocate:" + orderID,
		Starts:  placement.Starts,
	})
	e.log.Info("relocated order", "order_id", orderID, "from_machine", placement.FromMachine, "to_machine", machine,
		"requested_start", start, "start", order.StartHour, "shifted", len(moved)-1)

	return e.result(moved)
}

// SetStatus moves an order through the status state machine. Requesting
// the current status is a no-op.
func (e *Engine) SetStatus(orderID string, status entities.OrderStatus) (*dto.ScheduleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, err := e.orders.GetOrder(orderID)
	if err != nil {
		return nil, e.reject("set status", err, "order_id", orderID)
	}
	if err := entities.ValidateTransition(order.Status, status); err != nil {
		return nil, e.reject("set status", err, "order_id", orderID)
	}
	if order.Status == status {
		return e.result(nil)
	}

	from := order.Status
	order.Status = status
	if err := e.orders.SaveOrder(order); err != nil {
		return nil, err
	}
	e.publish(events.OrderStream(orderID), events.OrderStatusChangedEvent, events.OrderStatusChanged{
		OrderID: orderID,
		From:    from,
		To:      status,
	})
	e.log.Info("changed order status", "order_id", orderID, "from", from.String(), "to", status.String())

	return e.result(nil)
}

// SetStartHour writes a start hour directly without compaction. The result
// may violate the non-overlap invariant; such violations are reported in
// this and every later result until a purge or relocation repairs them.
func (e *Engine) SetStartHour(orderID string, hour float64) (*dto.ScheduleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if hour < 0 || math.IsNaN(hour) || math.IsInf(hour, 0) {
		return nil, e.reject("set start", fmt.Errorf("%w: %g", entities.ErrInvalidStart, hour), "order_id", orderID)
	}
	order, err := e.orders.GetOrder(orderID)
	if err != nil {
		return nil, e.reject("set start", err, "order_id", orderID)
	}
	if order.Status == entities.Locked {
		return nil, e.reject("set start", fmt.Errorf("%w: %s cannot be moved", entities.ErrOrderLocked, orderID), "order_id", orderID)
	}

	from := order.StartHour
	order.StartHour = hour
	if err := e.orders.SaveOrder(order); err != nil {
		return nil, err
	}
	e.publish(events.OrderStream(orderID), events.OrderStartOverriddenEvent, events.OrderStartOverridden{
		OrderID:   orderID,
		FromStart: from,
		ToStart:   hour,
	})
	e.log.Info("overrode start hour", "order_id", orderID, "from", from, "to", hour)

	result, err := e.result([]string{orderID})
	if err != nil {
		return nil, err
	}
	for _, v := range result.Violations {
		if v.EarlierOrderID == orderID || v.LaterOrderID == orderID {
			e.publish(events.MachineStream(v.Machine), events.InvariantViolatedEvent, events.InvariantViolated{Violation: v})
		}
	}
	return result, nil
}

// Delete removes an order from the collection. Other orders keep their
// positions.
func (e *Engine) Delete(orderID string) (*dto.ScheduleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, err := e.orders.GetOrder(orderID)
	if err != nil {
		return nil, e.reject("delete", err, "order_id", orderID)
	}
	if err := e.orders.DeleteOrder(orderID); err != nil {
		return nil, err
	}
	e.publish(events.OrderStream(orderID), events.OrderDeletedEvent, events.OrderDeleted{Order: *order})
	e.log.Info("deleted order", "order_id", orderID, "machine", order.Machine)

	return e.result(nil)
}

// RecomputeLedger reruns the material ledger over the current collection
func (e *Engine) RecomputeLedger() (*dto.ScheduleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result(nil)
}

// Violations reports every place the non-overlap invariant currently fails
func (e *Engine) Violations() ([]entities.Violation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	all, err := e.orders.GetAllOrders()
	if err != nil {
		return nil, err
	}
	return services.CheckInvariant(all, e.matrix), nil
}

// Orders returns a snapshot of every order in collection order
func (e *Engine) Orders() ([]*entities.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orders.GetAllOrders()
}

// Order returns a snapshot of one order
func (e *Engine) Order(orderID string) (*entities.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orders.GetOrder(orderID)
}

// Flow returns the operations of one manufacturing order by start hour
func (e *Engine) Flow(parentOrderNumber string) ([]*entities.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	flow, err := e.orders.GetOrdersByParent(parentOrderNumber)
	if err != nil {
		return nil, err
	}
	if len(flow) == 0 {
		return nil, fmt.Errorf("%w: no operations for order number %s", entities.ErrOrderNotFound, parentOrderNumber)
	}
	sort.SliceStable(flow, func(i, j int) bool {
		return flow[i].StartHour < flow[j].StartHour
	})
	return flow, nil
}

// Stock returns the closing stock and total incoming production per
// material from the latest ledger run
func (e *Engine) Stock() ([]dto.StockLine, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ledger == nil {
		if _, err := e.result(nil); err != nil {
			return nil, err
		}
	}
	return stockLines(e.ledger), nil
}

// Timelines derives the per-machine timelines intersecting [lo, hi) from a
// snapshot of the collection, one goroutine per machine. Setup blocks are
// derived from each machine's full order list before windowing.
func (e *Engine) Timelines(ctx context.Context, lo, hi float64) ([]dto.MachineTimeline, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || hi <= lo {
		return nil, fmt.Errorf("%w: [%g, %g)", entities.ErrInvalidWindow, lo, hi)
	}

	e.mu.Lock()
	snapshot, err := e.orders.GetAllOrders()
	machines := e.machineList()
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	timelines := make([]dto.MachineTimeline, len(machines))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range machines {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			full := services.BuildTimeline(m.Name, snapshot, e.matrix)
			windowed := full.Window(lo, hi)
			timelines[i] = dto.MachineTimeline{
				Machine:     m.Name,
				Group:       m.Group,
				Orders:      windowed.Orders,
				SetupBlocks: windowed.SetupBlocks,
				Utilization: utilization(windowed, lo, hi),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return timelines, nil
}

// result recomputes the ledger and the invariant check over the current
// collection. Callers hold e.mu.
func (e *Engine) result(moved []string) (*dto.ScheduleResult, error) {
	all, err := e.orders.GetAllOrders()
	if err != nil {
		return nil, err
	}

	ledger := services.RunLedger(all, e.inventory.StartingStock(), e.recipes)
	e.ledger = ledger
	e.publishNewIssues(ledger.Issues)

	violations := services.CheckInvariant(all, e.matrix)
	if len(violations) > 0 {
		e.log.Warn("schedule violates non-overlap invariant", "violations", len(violations))
	}
	e.log.Debug("ledger recomputed", "orders", len(all), "errors", len(ledger.Errors()), "warnings", len(ledger.Warnings()))

	return &dto.ScheduleResult{
		Orders:     all,
		Issues:     ledger.Issues,
		Violations: violations,
		Moved:      moved,
	}, nil
}

// applyStarts writes new start hours for the given machine orders and
// returns the IDs whose start actually changed, in collection order
func (e *Engine) applyStarts(machineOrders []*entities.Order, starts map[string]float64) ([]string, error) {
	var moved []string
	for _, o := range machineOrders {
		start, ok := starts[o.ID]
		if !ok {
			continue
		}
		current, err := e.orders.GetOrder(o.ID)
		if err != nil {
			return nil, err
		}
		if current.StartHour == start {
			continue
		}
		current.StartHour = start
		if err := e.orders.SaveOrder(current); err != nil {
			return nil, err
		}
		moved = append(moved, o.ID)
	}
	return moved, nil
}

func (e *Engine) publishNewIssues(issues []entities.StockIssue) {
	current := make(map[issueKey]bool, len(issues))
	for _, issue := range issues {
		key := issueKey{orderID: issue.OrderID, material: issue.Material, severity: issue.Severity}
		current[key] = true
		if !e.seenIssues[key] {
			e.publish(events.LedgerStream, events.ShortageIdentifiedEvent, events.ShortageIdentified{Issue: issue})
		}
	}
	e.seenIssues = current
}

func (e *Engine) publish(stream, eventType string, data interface{}) {
	if err := e.events.AppendEvent(stream, events.NewEvent(eventType, stream, data)); err != nil {
		e.log.Error("failed to append event", "event_type", eventType, "stream", stream, "error", err)
	}
}

func (e *Engine) reject(op string, err error, keysAndValues ...interface{}) error {
	e.log.Warn(op+" rejected", append(keysAndValues, "error", err)...)
	return err
}

func (e *Engine) machineList() []*entities.Machine {
	list := make([]*entities.Machine, 0, len(e.machines))
	for _, m := range e.machines {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

func (e *Engine) groupOf(machine, fallback string) string {
	if m, ok := e.machines[machine]; ok && m.Group != "" {
		return m.Group
	}
	return fallback
}

func (e *Engine) startBefore(snapshot []*entities.Order, orderID string) float64 {
	for _, o := range snapshot {
		if o.ID == orderID {
			return o.StartHour
		}
	}
	return 0
}

// utilization is the share of [lo, hi) covered by orders or setup blocks.
// Overlapping stretches count once.
func utilization(t services.Timeline, lo, hi float64) float64 {
	spans := make([][2]float64, 0, len(t.Orders)+len(t.SetupBlocks))
	for _, o := range t.Orders {
		spans = append(spans, [2]float64{math.Max(o.StartHour, lo), math.Min(o.EndHour(), hi)})
	}
	for _, b := range t.SetupBlocks {
		spans = append(spans, [2]float64{math.Max(b.StartHour, lo), math.Min(b.EndHour(), hi)})
	}
	sort.Slice(spans, func(i, j int) bool {
		return spans[i][0] < spans[j][0]
	})

	busy, reach := 0.0, lo
	for _, s := range spans {
		start := math.Max(s[0], reach)
		if s[1] > start {
			busy += s[1] - start
			reach = s[1]
		}
	}
	return busy / (hi - lo)
}

func stockLines(ledger *services.LedgerResult) []dto.StockLine {
	names := make(map[entities.MaterialName]bool)
	for name := range ledger.ClosingStock {
		names[name] = true
	}
	for name := range ledger.Incoming {
		names[name] = true
	}
	lines := make([]dto.StockLine, 0, len(names))
	for name := range names {
		line := dto.StockLine{Material: name, Closing: ledger.ClosingStock[name]}
		for _, in := range ledger.Incoming[name] {
			line.Incoming = line.Incoming.Add(in.Amount)
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Material < lines[j].Material
	})
	return lines
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
