package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vsinha/shopsched/pkg/application/dto"
	"github.com/vsinha/shopsched/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Elapsed   time.Duration
}

// Report is everything one scheduler run prints
type Report struct {
	Operation string                `json:"operation"`
	Result    *dto.ScheduleResult   `json:"result"`
	Timelines []dto.MachineTimeline `json:"timelines,omitempty"`
	Stock     []dto.StockLine       `json:"stock,omitempty"`
	// Listed narrows the order table in text output; JSON always carries
	// the full collection in Result.
	Listed []*entities.Order `json:"-"`
}

// Generate writes the report to w in the configured format
func Generate(w io.Writer, report *Report, config Config) error {
	switch config.Format {
	case "", "text":
		return generateTextOutput(w, report, config)
	case "json":
		return generateJSONOutput(w, report, config)
	case "csv":
		return generateCSVOutput(w, report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(w io.Writer, report *Report, config Config) error {
	result := report.Result
	listed := report.Listed
	if listed == nil {
		listed = result.Orders
	}

	fmt.Fprintf(w, "Schedule Summary (%s)\n", report.Operation)
	fmt.Fprintf(w, "==========================\n\n")
	fmt.Fprintf(w, "Orders: %d\n", len(result.Orders))
	fmt.Fprintf(w, "Moved: %d\n", len(result.Moved))
	fmt.Fprintf(w, "Stock errors: %d\n", result.ErrorCount())
	fmt.Fprintf(w, "Stock warnings: %d\n", result.WarningCount())
	fmt.Fprintf(w, "Invariant violations: %d\n", len(result.Violations))
	if config.Verbose {
		fmt.Fprintf(w, "Elapsed: %v\n", config.Elapsed)
	}
	fmt.Fprintln(w)

	if len(listed) > 0 {
		fmt.Fprintf(w, "Orders:\n")
		fmt.Fprintf(w, "%-10s %-14s %-12s %-8s %-8s %-8s %-14s\n",
			"ID", "Order Number", "Machine", "Type", "Start", "End", "Status")
		fmt.Fprintf(w, "%-10s %-14s %-12s %-8s %-8s %-8s %-14s\n",
			"----------", "--------------", "------------", "--------", "--------", "--------", "--------------")
		for _, o := range listed {
			fmt.Fprintf(w, "%-10s %-14s %-12s %-8s %-8g %-8g %-14s\n",
				o.ID, o.OrderNumber, o.Machine, o.ProductType, o.StartHour, o.EndHour(), o.Status)
		}
		fmt.Fprintln(w)
	}

	if len(report.Timelines) > 0 {
		fmt.Fprintf(w, "Timelines:\n")
		for _, t := range report.Timelines {
			fmt.Fprintf(w, "  %s [%s] %d orders, %d setups, %.0f%% busy\n",
				t.Machine, t.Group, len(t.Orders), len(t.SetupBlocks), t.Utilization*100)
			for _, b := range t.SetupBlocks {
				fmt.Fprintf(w, "    setup %s->%s at %g for %gh\n", b.FromType, b.ToType, b.StartHour, b.DurationHours)
			}
		}
		fmt.Fprintln(w)
	}

	if len(result.Issues) > 0 {
		fmt.Fprintf(w, "Stock Issues:\n")
		fmt.Fprintf(w, "%-10s %-16s %-10s %-10s %-10s %-8s %-14s\n",
			"Order", "Material", "Required", "Available", "Shortage", "Level", "Resolved By")
		fmt.Fprintf(w, "%-10s %-16s %-10s %-10s %-10s %-8s %-14s\n",
			"----------", "----------------", "----------", "----------", "----------", "--------", "--------------")
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "%-10s %-16s %-10s %-10s %-10s %-8s %-14s\n",
				issue.OrderID, issue.Material,
				issue.Required.String(), issue.Available.String(), issue.Shortage.String(),
				issue.Severity, issue.ResolvedByOrder)
		}
		fmt.Fprintln(w)
	}

	if len(report.Stock) > 0 {
		fmt.Fprintf(w, "Closing Stock:\n")
		for _, line := range report.Stock {
			fmt.Fprintf(w, "  %-16s %10s (incoming %s)\n", line.Material, line.Closing.String(), line.Incoming.String())
		}
		fmt.Fprintln(w)
	}

	if len(result.Violations) > 0 {
		fmt.Fprintf(w, "Invariant Violations:\n")
		for _, v := range result.Violations {
			fmt.Fprintf(w, "  %s\n", v)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(w io.Writer, report *Report, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(w, string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "schedule.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(w, "JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes orders, issues and violations as CSV files
func generateCSVOutput(w io.Writer, report *Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ordersFile := filepath.Join(config.OutputDir, "orders.csv")
	if err := writeOrdersCSV(report.Result.Orders, ordersFile); err != nil {
		return fmt.Errorf("failed to write orders CSV: %w", err)
	}
	issuesFile := filepath.Join(config.OutputDir, "stock_issues.csv")
	if err := writeIssuesCSV(report.Result.Issues, issuesFile); err != nil {
		return fmt.Errorf("failed to write stock issues CSV: %w", err)
	}
	violationsFile := filepath.Join(config.OutputDir, "violations.csv")
	if err := writeViolationsCSV(report.Result.Violations, violationsFile); err != nil {
		return fmt.Errorf("failed to write violations CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "CSV results saved to:\n")
		fmt.Fprintf(w, "  Orders: %s\n", ordersFile)
		fmt.Fprintf(w, "  Stock Issues: %s\n", issuesFile)
		fmt.Fprintf(w, "  Violations: %s\n", violationsFile)
	}
	return nil
}

func writeOrdersCSV(orders []*entities.Order, filename string) error {
	rows := [][]string{{
		"id", "order_number", "parent_order_number", "operation", "machine", "machine_group",
		"product_type", "start_hour", "duration_hours", "status", "quantity", "deadline", "bom_status",
	}}
	for _, o := range orders {
		rows = append(rows, []string{
			o.ID, o.OrderNumber, o.ParentOrderNumber, o.Operation, o.Machine, o.MachineGroup,
			o.ProductType.String(), formatHour(o.StartHour), formatHour(o.DurationHours), o.Status.String(),
			strconv.FormatInt(o.Quantity, 10), o.Deadline, o.BOMStatus.String(),
		})
	}
	return writeCSV(filename, rows)
}

func writeIssuesCSV(issues []entities.StockIssue, filename string) error {
	rows := [][]string{{"order_id", "order_number", "material", "required", "available", "shortage", "severity", "resolved_by_order", "need_hour"}}
	for _, i := range issues {
		rows = append(rows, []string{
			i.OrderID, i.OrderNumber, string(i.Material),
			i.Required.String(), i.Available.String(), i.Shortage.String(),
			i.Severity.String(), i.ResolvedByOrder, formatHour(i.NeedHour),
		})
	}
	return writeCSV(filename, rows)
}

func writeViolationsCSV(violations []entities.Violation, filename string) error {
	rows := [][]string{{"machine", "earlier_order_id", "later_order_id", "earliest_allowed", "actual_start"}}
	for _, v := range violations {
		rows = append(rows, []string{
			v.Machine, v.EarlierOrderID, v.LaterOrderID, formatHour(v.EarliestAllowed), formatHour(v.ActualStart),
		})
	}
	return writeCSV(filename, rows)
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

func formatHour(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
