// Package turnover implements the per-cell scalars spec.md §4.5 needs: the
// speciation probability per generation and the turnover rate used by the
// Gillespie event-rate formula.
package turnover

import (
	"fmt"

	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
)

// SpeciationProbability reports the per-generation speciation probability
// at a location.
type SpeciationProbability interface {
	At(loc landscape.Location) bond.ClosedUnitF64
}

// Rate reports the turnover rate at a location (spec.md §4.5's lambda
// formula multiplies this by 1-nu*(1-k/C)*P_self).
type Rate interface {
	At(loc landscape.Location) bond.NonNegativeF64
}

// Uniform is a SpeciationProbability that returns the same value
// everywhere.
type Uniform struct {
	p bond.PositiveUnitF64
}

// NewUniform builds a Uniform speciation probability in (0,1] (spec.md §6:
// "per-generation speciation probability nu in (0,1]").
func NewUniform(p bond.PositiveUnitF64) Uniform {
	return Uniform{p: p}
}

// At implements SpeciationProbability.
func (u Uniform) At(_ landscape.Location) bond.ClosedUnitF64 {
	return bond.NewClosedUnitF64(u.p.Get())
}

// UniformRate is a Rate that returns the same turnover rate everywhere.
type UniformRate struct {
	rate bond.PositiveF64
}

// NewUniformRate builds a UniformRate (necsim's default of 0.5 is not
// special-cased here: callers choose an explicit rate).
func NewUniformRate(rate bond.PositiveF64) UniformRate {
	return UniformRate{rate: rate}
}

// At implements Rate.
func (u UniformRate) At(_ landscape.Location) bond.NonNegativeF64 {
	return bond.NewNonNegativeF64(u.rate.Get())
}

// InMemory is a Rate backed by a dense per-cell map (spec.md §6 "optional
// per-cell turnover map").
type InMemory struct {
	habitat *landscape.Habitat
	rates   []float64 // row-major, aligned with habitat
}

// NewInMemory builds an InMemory turnover rate. It validates that rates is
// positive wherever habitat has positive capacity (spec.md §7
// ZeroTurnoverWithNonZeroHabitat).
func NewInMemory(h *landscape.Habitat, rates []float64) (*InMemory, error) {
	if len(rates) != h.Len() {
		return nil, fmt.Errorf("turnover: rates has %d cells but habitat has %d", len(rates), h.Len())
	}
	for i, r := range rates {
		if r < 0 {
			return nil, fmt.Errorf("turnover: %w: negative rate at cell %d", ErrZeroTurnoverWithNonZeroHabitat, i)
		}
		if r == 0 && h.CapacityAtIndex(uint64(i)) > 0 {
			return nil, fmt.Errorf("turnover: %w: zero turnover rate at inhabited cell %d", ErrZeroTurnoverWithNonZeroHabitat, i)
		}
	}
	cp := make([]float64, len(rates))
	copy(cp, rates)
	return &InMemory{habitat: h, rates: cp}, nil
}

// At implements Rate.
func (m *InMemory) At(loc landscape.Location) bond.NonNegativeF64 {
	idx := m.habitat.Extent().Index(loc)
	return bond.NewNonNegativeF64(m.rates[idx])
}

// ErrZeroTurnoverWithNonZeroHabitat is returned when an inhabited cell has
// a zero (or negative) turnover rate (spec.md §7).
var ErrZeroTurnoverWithNonZeroHabitat = fmt.Errorf("zero turnover rate with non-zero habitat")

// InMemorySpeciation is a per-cell SpeciationProbability, for callers who
// want spatially varying speciation rather than Uniform.
type InMemorySpeciation struct {
	habitat *landscape.Habitat
	probs   []float64
}

// NewInMemorySpeciation builds an InMemorySpeciation, validating every
// value lies in (0,1] (spec.md §7 InvalidProbability).
func NewInMemorySpeciation(h *landscape.Habitat, probs []float64) (*InMemorySpeciation, error) {
	if len(probs) != h.Len() {
		return nil, fmt.Errorf("turnover: probs has %d cells but habitat has %d", len(probs), h.Len())
	}
	for i, p := range probs {
		if p <= 0 || p > 1 {
			return nil, fmt.Errorf("turnover: %w: speciation probability %v at cell %d out of (0,1]", ErrInvalidProbability, p, i)
		}
	}
	cp := make([]float64, len(probs))
	copy(cp, probs)
	return &InMemorySpeciation{habitat: h, probs: cp}, nil
}

// At implements SpeciationProbability.
func (m *InMemorySpeciation) At(loc landscape.Location) bond.ClosedUnitF64 {
	idx := m.habitat.Extent().Index(loc)
	return bond.NewClosedUnitF64(m.probs[idx])
}

// ErrInvalidProbability is returned when a value outside (0,1] is given
// where a probability is required (spec.md §7).
var ErrInvalidProbability = fmt.Errorf("invalid probability")
