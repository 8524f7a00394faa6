package entities

import (
	"errors"
	"testing"
)

func TestValidateTransition(t *testing.T) {
	testCases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{Planned, Locked, true},
		{Locked, Planned, true},
		{Planned, Parked, true},
		{Locked, Parked, true},
		{NearDeadline, Parked, true},
		{Late, Parked, true},
		{Parked, Planned, true},
		{Late, Late, true},

		{Parked, Locked, false},
		{Parked, Late, false},
		{Locked, Late, false},
		{Planned, NearDeadline, false},
		{NearDeadline, Locked, false},
		{Late, Planned, false},
	}

	for _, tc := range testCases {
		t.Run(tc.from.String()+"->"+tc.to.String(), func(t *testing.T) {
			err := ValidateTransition(tc.from, tc.to)
			if tc.allowed && err != nil {
				t.Errorf("Expected transition to be allowed, got %v", err)
			}
			if !tc.allowed {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Expected ErrInvalidTransition, got %v", err)
				}
			}
		})
	}
}

func TestValidateTransition_Message(t *testing.T) {
	err := ValidateTransition(Parked, Locked)
	expected := "invalid status transition: parked -> locked"
	if err == nil || err.Error() != expected {
		t.Errorf("Expected %q, got %v", expected, err)
	}
}
