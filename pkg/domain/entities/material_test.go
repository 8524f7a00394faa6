package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewMaterial_Validation(t *testing.T) {
	if _, err := NewMaterial("", decimal.NewFromInt(1), "kg"); err == nil || err.Error() != "material name cannot be empty" {
		t.Errorf("Expected empty name error, got %v", err)
	}
	if _, err := NewMaterial("steel", decimal.NewFromInt(-1), "kg"); err == nil || err.Error() != "on-hand quantity cannot be negative, got -1" {
		t.Errorf("Expected negative quantity error, got %v", err)
	}
	m, err := NewMaterial("steel", decimal.RequireFromString("12.5"), "kg")
	if err != nil {
		t.Fatal(err)
	}
	if !m.OnHand.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Expected 12.5 on hand, got %s", m.OnHand)
	}
}

func TestRecipe_RequiredAndProduced(t *testing.T) {
	recipe, err := NewRecipe("steel-plate", decimal.RequireFromString("2.5"), "exhaust-pipe", decimal.NewFromInt(1))
	if err != nil {
		t.Fatal(err)
	}

	if got := recipe.Required(40); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected 100 required, got %s", got)
	}
	if got := recipe.Produced(40); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected 40 produced, got %s", got)
	}

	consumeOnly, err := NewRecipe("chassis-tube", decimal.NewFromInt(1), "", decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	if !consumeOnly.Produced(10).IsZero() {
		t.Error("Expected nothing produced without a produced material")
	}
}

func TestNewRecipe_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		consumes    MaterialName
		consumeRate decimal.Decimal
		produces    MaterialName
		produceRate decimal.Decimal
		expectError string
	}{
		{"negative consume", "steel", decimal.NewFromInt(-1), "", decimal.Zero, "consume rate cannot be negative, got -1"},
		{"negative produce", "", decimal.Zero, "pipe", decimal.NewFromInt(-2), "produce rate cannot be negative, got -2"},
		{"rate without material", "", decimal.NewFromInt(3), "", decimal.Zero, "consume rate 3 set without a consumed material"},
		{"produce without material", "", decimal.Zero, "", decimal.NewFromInt(1), "produce rate 1 set without a produced material"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRecipe(tc.consumes, tc.consumeRate, tc.produces, tc.produceRate)
			if err == nil {
				t.Fatalf("Expected error for %s", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error %q, got %q", tc.expectError, err.Error())
			}
		})
	}
}

func TestViolation_String(t *testing.T) {
	v := Violation{Machine: "LAS 1", EarlierOrderID: "a", LaterOrderID: "b", EarliestAllowed: 6, ActualStart: 4.5}
	if v.Overlap() != 1.5 {
		t.Errorf("Expected overlap 1.5, got %g", v.Overlap())
	}
	expected := "LAS 1: order b starts at 4.5, must not start before 6 (after order a)"
	if v.String() != expected {
		t.Errorf("Expected %q, got %q", expected, v.String())
	}
}
