package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/vsinha/shopsched/pkg/interfaces/cli/commands"
)

type command interface {
	Execute(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var cmd command
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "session":
			cmd = sessionCommand(args[1:])
		case "generate":
			cmd = generateCommand(args[1:])
		}
	}
	if cmd == nil {
		cmd = scheduleCommand(args)
	}

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func scheduleCommand(args []string) command {
	fs := flag.NewFlagSet("scheduler", flag.ExitOnError)
	var (
		configFile    = fs.String("config", "", "Path to plant config YAML")
		ordersFile    = fs.String("orders", "", "Path to orders CSV file")
		inventoryFile = fs.String("inventory", "", "Path to inventory CSV file")
		op            = fs.String("op", commands.OpShow, "Operation: show, purge-from, purge-window, relocate, status, set-start, delete, ledger, flow")
		orderID       = fs.String("order", "", "Order ID the operation applies to")
		machine       = fs.String("machine", "", "Target machine for relocate, or machine filter for show")
		machines      = fs.String("machines", "", "Comma-separated machines for purge-window (default: all)")
		start         = fs.Float64("start", 0, "Start hour for relocate and set-start")
		from          = fs.Float64("from", 0, "Window start hour")
		to            = fs.Float64("to", 0, "Window end hour (exclusive)")
		status        = fs.String("status", "", "New status for the status operation")
		parent        = fs.String("parent", "", "Parent order number for flow")
		filter        = fs.String("filter", "", "Comma-separated statuses to list")
		group         = fs.String("group", "", "Machine group to list")
		format        = fs.String("format", "text", "Output format: text, json, csv")
		outputDir     = fs.String("output", "", "Output directory for results (optional)")
		logMode       = fs.String("log-mode", "", "Logging mode: development, production, nop")
		verbose       = fs.Bool("verbose", false, "Enable verbose output")
		help          = fs.Bool("help", false, "Show help message")
	)
	fs.Parse(args)

	return commands.NewScheduleCommand(commands.Config{
		ConfigFile:    *configFile,
		OrdersFile:    *ordersFile,
		InventoryFile: *inventoryFile,
		Operation:     *op,
		OrderID:       *orderID,
		Machine:       *machine,
		Machines:      *machines,
		Start:         *start,
		From:          *from,
		To:            *to,
		Status:        *status,
		Parent:        *parent,
		Filter:        *filter,
		Group:         *group,
		Format:        *format,
		OutputDir:     *outputDir,
		Verbose:       *verbose,
		LogMode:       *logMode,
		Help:          *help,
	})
}

func sessionCommand(args []string) command {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	var (
		configFile    = fs.String("config", "", "Path to plant config YAML")
		ordersFile    = fs.String("orders", "", "Path to orders CSV file")
		inventoryFile = fs.String("inventory", "", "Path to inventory CSV file")
		logMode       = fs.String("log-mode", "nop", "Logging mode: development, production, nop")
		verbose       = fs.Bool("verbose", false, "Enable verbose output")
		help          = fs.Bool("help", false, "Show help message")
	)
	fs.Parse(args)

	return commands.NewSessionCommand(commands.SessionConfig{
		ConfigFile:    *configFile,
		OrdersFile:    *ordersFile,
		InventoryFile: *inventoryFile,
		LogMode:       *logMode,
		Verbose:       *verbose,
		Help:          *help,
	})
}

func generateCommand(args []string) command {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		configFile = fs.String("config", "", "Path to plant config YAML")
		orders     = fs.Int("orders", 20, "Number of manufacturing orders")
		locked     = fs.Float64("locked", 0.1, "Fraction of operations generated as locked")
		inventory  = fs.Float64("inventory", 1.0, "Inventory multiplier")
		outputDir  = fs.String("output", "", "Output directory for generated files")
		seed       = fs.Int64("seed", 0, "Random seed (0 = time based)")
		verbose    = fs.Bool("verbose", false, "Enable verbose output")
		help       = fs.Bool("help", false, "Show help message")
	)
	fs.Parse(args)

	return commands.NewGenerateCommand(commands.GenerateConfig{
		ConfigFile: *configFile,
		Orders:     *orders,
		Locked:     *locked,
		Inventory:  *inventory,
		OutputDir:  *outputDir,
		Seed:       *seed,
		Verbose:    *verbose,
		Help:       *help,
	})
}
