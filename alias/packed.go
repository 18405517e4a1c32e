package alias

import (
	"math"

	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/rng"
)

// Atom is a single bucket of a packed alias table: its acceptance
// threshold U, its primary event E and its alias event K.
type Atom[E any] struct {
	U bond.ClosedUnitF64
	E E
	K E
}

// Packed is a contiguous buffer of alias atoms shared by many
// distributions, each addressed by a Range into the shared buffer
// (spec.md §4.1 "Packed variant" — cache/GPU-friendly: one alias table per
// origin cell, without per-origin heap allocations).
type Packed[E any] struct {
	atoms []Atom[E]
}

// Range is a half-open span [Start,End) into a Packed buffer.
type Range struct {
	Start, End int
}

// Len returns the number of events covered by r.
func (r Range) Len() int { return r.End - r.Start }

// NewPacked builds the atoms for one distribution and returns them; the
// caller is responsible for concatenating atom slices from multiple
// distributions and recording the Range each one occupies (see
// dispersal.PackedAlias for the multi-origin assembly).
func NewPacked[E any](weighted []Weighted[E]) ([]Atom[E], error) {
	table, err := New(weighted)
	if err != nil {
		return nil, err
	}
	atoms := make([]Atom[E], table.Len())
	for i := range atoms {
		atoms[i] = Atom[E]{U: table.u[i], E: table.e[i], K: table.k[i]}
	}
	return atoms, nil
}

// SampleRange consumes one uniform draw from s and returns an event drawn
// from the distribution occupying r within atoms.
func SampleRange[E any](atoms []Atom[E], r Range, s rng.Sampler) E {
	x := s.SampleUniform().Get()
	n := float64(r.Len())

	i := int(math.Floor(x * n))
	if i >= r.Len() {
		i = r.Len() - 1
	}
	y := x*n - float64(i)

	a := atoms[r.Start+i]
	if y < a.U.Get() {
		return a.E
	}
	return a.K
}
