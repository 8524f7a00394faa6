package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopsched/pkg/domain/entities"
)

var ordersHeader = []string{
	"id", "order_number", "parent_order_number", "operation", "machine", "machine_group",
	"product_type", "start_hour", "duration_hours", "status", "quantity", "deadline", "bom_status",
}

var inventoryHeader = []string{"material", "quantity", "unit"}

// deadlineLayouts are tried in order; the first is the canonical output form
var deadlineLayouts = []string{"2006-01-02", "02-01-2006"}

// Loader handles loading schedule data from CSV files
type Loader struct {
	// NewID generates IDs for order rows with an empty id column
	NewID func() string
}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{NewID: uuid.NewString}
}

// LoadOrders loads orders from a CSV file
func (l *Loader) LoadOrders(filename string) ([]*entities.Order, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadOrders(file)
}

// ReadOrders parses orders CSV from r
func (l *Loader) ReadOrders(r io.Reader) ([]*entities.Order, error) {
	records, err := readAll(r, "orders", ordersHeader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(records))
	var orders []*entities.Order
	for i, record := range records {
		row := i + 2
		order, err := l.parseOrder(record)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", row, err)
		}
		if first, dup := seen[order.ID]; dup {
			return nil, fmt.Errorf("orders CSV row %d: duplicate id %s (first seen in row %d)", row, order.ID, first)
		}
		seen[order.ID] = row
		orders = append(orders, order)
	}

	return orders, nil
}

// LoadInventory loads starting material stock from a CSV file
func (l *Loader) LoadInventory(filename string) ([]*entities.Material, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadInventory(file)
}

// ReadInventory parses inventory CSV from r
func (l *Loader) ReadInventory(r io.Reader) ([]*entities.Material, error) {
	records, err := readAll(r, "inventory", inventoryHeader)
	if err != nil {
		return nil, err
	}

	var materials []*entities.Material
	for i, record := range records {
		quantity, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: invalid quantity: %s", i+2, record[1])
		}
		material, err := entities.NewMaterial(entities.MaterialName(strings.TrimSpace(record[0])), quantity, strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		materials = append(materials, material)
	}

	return materials, nil
}

// readAll reads every record, validates the header and column counts, and
// returns the data rows
func readAll(r io.Reader, name string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func (l *Loader) parseOrder(record []string) (*entities.Order, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	id := record[0]
	if id == "" {
		id = l.NewID()
	}

	productType, err := entities.ParseProductType(record[6])
	if err != nil {
		return nil, err
	}

	startHour, err := strconv.ParseFloat(record[7], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start_hour: %s", record[7])
	}

	durationHours, err := strconv.ParseFloat(record[8], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration_hours: %s", record[8])
	}

	status, err := entities.ParseOrderStatus(record[9])
	if err != nil {
		return nil, err
	}

	quantity, err := strconv.ParseInt(record[10], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %s", record[10])
	}

	deadline, err := parseDeadline(record[11])
	if err != nil {
		return nil, err
	}

	bomStatus, err := entities.ParseBOMStatus(record[12])
	if err != nil {
		return nil, err
	}

	order, err := entities.NewOrder(id, record[1], record[4], productType, startHour, durationHours, quantity, status)
	if err != nil {
		return nil, err
	}
	order.ParentOrderNumber = record[2]
	order.Operation = record[3]
	order.MachineGroup = record[5]
	order.Deadline = deadline
	order.BOMStatus = bomStatus

	return order, nil
}

func parseDeadline(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(deadlineLayouts[0]), nil
		}
	}
	return "", fmt.Errorf("invalid deadline format: %s (expected YYYY-MM-DD or DD-MM-YYYY)", s)
}
