package entities

import "fmt"

// Machine is a workstation orders are scheduled on. Orders reference
// machines by Name.
type Machine struct {
	Name             string `json:"name"`
	Group            string `json:"group"`
	CapacityModifier int    `json:"capacity_modifier,omitempty"` // percent
	ShiftCount       int    `json:"shift_count,omitempty"`
}

// NewMachine creates a validated Machine
func NewMachine(name, group string) (*Machine, error) {
	if name == "" {
		return nil, fmt.Errorf("machine name cannot be empty")
	}
	if group == "" {
		return nil, fmt.Errorf("machine group cannot be empty for %s", name)
	}
	return &Machine{Name: name, Group: group, CapacityModifier: 100, ShiftCount: 1}, nil
}
