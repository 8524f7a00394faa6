package entities

import (
	"fmt"
	"strings"
)

// ProductType determines setup requirements and material flow of an order
type ProductType int

const (
	TypeA ProductType = iota
	TypeB
	TypeC
	TypeD
)

// AllProductTypes lists the closed set of product types in declaration order
var AllProductTypes = []ProductType{TypeA, TypeB, TypeC, TypeD}

// String method for ProductType enum
func (p ProductType) String() string {
	switch p {
	case TypeA:
		return "TYPE_A"
	case TypeB:
		return "TYPE_B"
	case TypeC:
		return "TYPE_C"
	case TypeD:
		return "TYPE_D"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is one of the known product types
func (p ProductType) Valid() bool {
	return p >= TypeA && p <= TypeD
}

// ParseProductType accepts "A", "type_a" or "TYPE_A" style names
func ParseProductType(s string) (ProductType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "TYPE_")
	switch name {
	case "A":
		return TypeA, nil
	case "B":
		return TypeB, nil
	case "C":
		return TypeC, nil
	case "D":
		return TypeD, nil
	default:
		return 0, fmt.Errorf("unknown product type: %q", s)
	}
}

// MarshalText encodes the product type by name
func (p ProductType) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown product type: %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a product type name
func (p *ProductType) UnmarshalText(text []byte) error {
	parsed, err := ParseProductType(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
