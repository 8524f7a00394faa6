package entities

import "fmt"

const (
	// DefaultSameTypeSetupHours covers cleaning and inspection between identical types
	DefaultSameTypeSetupHours = 0.5
	// DefaultSetupHours applies to distinct type pairs missing from the matrix
	DefaultSetupHours = 3.0
)

// SetupPair is an ordered (from, to) product type changeover
type SetupPair struct {
	From ProductType
	To   ProductType
}

// SetupTimeMatrix maps changeovers to durations in hours. The matrix is
// asymmetric: A->C need not equal C->A.
type SetupTimeMatrix struct {
	sameTypeHours float64
	defaultHours  float64
	transitions   map[SetupPair]float64
}

// NewSetupTimeMatrix creates a validated SetupTimeMatrix
func NewSetupTimeMatrix(sameTypeHours, defaultHours float64, transitions map[SetupPair]float64) (*SetupTimeMatrix, error) {
	if sameTypeHours < 0 {
		return nil, fmt.Errorf("same-type setup hours cannot be negative, got %g", sameTypeHours)
	}
	if defaultHours < 0 {
		return nil, fmt.Errorf("default setup hours cannot be negative, got %g", defaultHours)
	}

	copied := make(map[SetupPair]float64, len(transitions))
	for pair, hours := range transitions {
		if !pair.From.Valid() || !pair.To.Valid() {
			return nil, fmt.Errorf("setup pair %d->%d references unknown product type", int(pair.From), int(pair.To))
		}
		if pair.From == pair.To {
			return nil, fmt.Errorf("setup pair %s->%s must differ, same-type time is fixed", pair.From, pair.To)
		}
		if hours < 0 {
			return nil, fmt.Errorf("setup hours for %s->%s cannot be negative, got %g", pair.From, pair.To, hours)
		}
		copied[pair] = hours
	}

	return &SetupTimeMatrix{
		sameTypeHours: sameTypeHours,
		defaultHours:  defaultHours,
		transitions:   copied,
	}, nil
}

// DefaultSetupTimeMatrix returns the plant's standard retooling matrix
func DefaultSetupTimeMatrix() *SetupTimeMatrix {
	m, err := NewSetupTimeMatrix(DefaultSameTypeSetupHours, DefaultSetupHours, DefaultSetupTransitions())
	if err != nil {
		panic(err)
	}
	return m
}

// DefaultSetupTransitions returns the standard distinct-type changeover hours
func DefaultSetupTransitions() map[SetupPair]float64 {
	return map[SetupPair]float64{
		// standard exhaust pipes
		{TypeA, TypeB}: 2.0,
		{TypeA, TypeC}: 3.5,
		{TypeA, TypeD}: 4.0,
		// reinforced chassis tubes
		{TypeB, TypeA}: 2.5,
		{TypeB, TypeC}: 2.0,
		{TypeB, TypeD}: 3.0,
		// exhaust manifolds
		{TypeC, TypeA}: 4.0,
		{TypeC, TypeB}: 2.5,
		{TypeC, TypeD}: 2.0,
		// custom chassis components
		{TypeD, TypeA}: 4.5,
		{TypeD, TypeB}: 3.5,
		{TypeD, TypeC}: 2.5,
	}
}

// SetupTime looks up the changeover duration between two product types
func (m *SetupTimeMatrix) SetupTime(from, to ProductType) float64 {
	if from == to {
		return m.sameTypeHours
	}
	if hours, ok := m.transitions[SetupPair{From: from, To: to}]; ok {
		return hours
	}
	return m.defaultHours
}

// Changeover is the idle time enforced between two adjacent orders on a
// machine: zero for identical types, SetupTime otherwise.
func (m *SetupTimeMatrix) Changeover(from, to ProductType) float64 {
	if from == to {
		return 0
	}
	return m.SetupTime(from, to)
}

// SameTypeHours returns the fixed same-type setup value
func (m *SetupTimeMatrix) SameTypeHours() float64 {
	return m.sameTypeHours
}

// DefaultHours returns the fallback for unlisted distinct pairs
func (m *SetupTimeMatrix) DefaultHours() float64 {
	return m.defaultHours
}
