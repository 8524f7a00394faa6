package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaterialName identifies a stocked material
type MaterialName string

// Material is a named resource with an on-hand quantity
type Material struct {
	Name     MaterialName    `json:"name"`
	OnHand   decimal.Decimal `json:"on_hand"`
	Unit     string          `json:"unit,omitempty"`
	Location string          `json:"location,omitempty"`
}

// NewMaterial creates a validated Material
func NewMaterial(name MaterialName, onHand decimal.Decimal, unit string) (*Material, error) {
	if string(name) == "" {
		return nil, fmt.Errorf("material name cannot be empty")
	}
	if onHand.IsNegative() {
		return nil, fmt.Errorf("on-hand quantity cannot be negative, got %s", onHand)
	}
	return &Material{Name: name, OnHand: onHand, Unit: unit}, nil
}

// Recipe describes what one unit of an order of a product type consumes and produces
type Recipe struct {
	Consumes    MaterialName    `json:"consumes,omitempty"`
	ConsumeRate decimal.Decimal `json:"consume_rate"`
	Produces    MaterialName    `json:"produces,omitempty"`
	ProduceRate decimal.Decimal `json:"produce_rate"`
}

// NewRecipe creates a validated Recipe. Either side may be empty.
func NewRecipe(consumes MaterialName, consumeRate decimal.Decimal, produces MaterialName, produceRate decimal.Decimal) (*Recipe, error) {
	if consumeRate.IsNegative() {
		return nil, fmt.Errorf("consume rate cannot be negative, got %s", consumeRate)
	}
	if produceRate.IsNegative() {
		return nil, fmt.Errorf("produce rate cannot be negative, got %s", produceRate)
	}
	if consumes == "" && !consumeRate.IsZero() {
		return nil, fmt.Errorf("consume rate %s set without a consumed material", consumeRate)
	}
	if produces == "" && !produceRate.IsZero() {
		return nil, fmt.Errorf("produce rate %s set without a produced material", produceRate)
	}
	return &Recipe{
		Consumes:    consumes,
		ConsumeRate: consumeRate,
		Produces:    produces,
		ProduceRate: produceRate,
	}, nil
}

// Required is the material amount an order of the given quantity needs
func (r Recipe) Required(quantity int64) decimal.Decimal {
	if r.Consumes == "" {
		return decimal.Zero
	}
	return r.ConsumeRate.Mul(decimal.NewFromInt(quantity))
}

// Produced is the material amount an order of the given quantity yields
func (r Recipe) Produced(quantity int64) decimal.Decimal {
	if r.Produces == "" {
		return decimal.Zero
	}
	return r.ProduceRate.Mul(decimal.NewFromInt(quantity))
}

// Recipes maps each product type to its material flow
type Recipes map[ProductType]Recipe

// IssueSeverity classifies a stock shortage
type IssueSeverity int

const (
	// SeverityError means nothing in the schedule covers the shortage in time
	SeverityError IssueSeverity = iota
	// SeverityWarning means an earlier production run can cover the shortage
	SeverityWarning
)

// String method for IssueSeverity enum
func (s IssueSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name
func (s IssueSeverity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StockIssue reports one shortage of one material for one order
type StockIssue struct {
	OrderID         string          `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	Material        MaterialName    `json:"material"`
	Required        decimal.Decimal `json:"required"`
	Available       decimal.Decimal `json:"available"`
	Shortage        decimal.Decimal `json:"shortage"`
	Severity        IssueSeverity   `json:"severity"`
	ResolvedByOrder string          `json:"resolved_by_order,omitempty"`
	NeedHour        float64         `json:"need_hour"`
}

// IncomingSupply is material a scheduled order will have produced by AvailableAt
type IncomingSupply struct {
	Material    MaterialName
	Amount      decimal.Decimal
	AvailableAt float64
	OrderID     string
	OrderNumber string
}
