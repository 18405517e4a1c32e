// Package dispersal implements the samplers that, given an origin cell,
// choose a target cell a lineage disperses to (spec.md §4.2): dense-matrix
// alias samplers (plain, packed, separable), the almost-infinite normal
// kernel, and the non-spatial kernel, plus the dispersal-contract
// validation every matrix-backed sampler is built from.
package dispersal

import (
	"fmt"

	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

// Sampler samples a target Location given an origin Location.
type Sampler interface {
	SampleDispersalFromLocation(origin landscape.Location, s rng.Sampler) landscape.Location
}

// Separable is a Sampler that can additionally sample conditioned on
// dispersal away from the origin, and report the probability of
// self-dispersal — the two capabilities the skipping Gillespie algorithm
// needs (spec.md §4.2, §4.5).
type Separable interface {
	Sampler
	SampleNonSelfDispersalFromLocation(origin landscape.Location, s rng.Sampler) landscape.Location
	SelfDispersalProbabilityAt(origin landscape.Location) bond.ClosedUnitF64
}

// Matrix is a dense, row-major dispersal matrix: D[o*E+t] is the
// (unnormalized) weight of dispersing from origin index o to target index
// t, where E = habitat.Len().
type Matrix struct {
	E    int
	Data []float64
}

// At returns D[o,t].
func (m Matrix) At(o, t int) float64 { return m.Data[o*m.E+t] }

// ValidateContract checks the dispersal contract (spec.md §4.2) between a
// habitat and a dispersal matrix:
//
//   - every origin with positive habitat has a positive row sum
//   - every origin with zero habitat has a zero row sum
//   - every target with a positive entry has positive habitat
func ValidateContract(h *landscape.Habitat, m Matrix) error {
	e := h.Len()
	if m.E != e {
		return fmt.Errorf("dispersal: %w: habitat has %d cells, matrix is %dx%d", ErrInconsistentSize, e, m.E, m.E)
	}

	for o := 0; o < e; o++ {
		var rowSum float64
		for t := 0; t < e; t++ {
			w := m.At(o, t)
			if w < 0 {
				return fmt.Errorf("dispersal: %w: negative weight at origin %d target %d", ErrInconsistentProbabilities, o, t)
			}
			rowSum += w
			if w > 0 && h.CapacityAtIndex(uint64(t)) == 0 {
				return fmt.Errorf("dispersal: %w: positive weight to uninhabitable target %d from origin %d", ErrInconsistentProbabilities, t, o)
			}
		}

		originHabitat := h.CapacityAtIndex(uint64(o)) > 0
		switch {
		case originHabitat && rowSum <= 0:
			return fmt.Errorf("dispersal: %w: origin %d has habitat but no positive dispersal weight", ErrInconsistentProbabilities, o)
		case !originHabitat && rowSum > 0:
			return fmt.Errorf("dispersal: %w: origin %d has no habitat but positive dispersal weight", ErrInconsistentProbabilities, o)
		}
	}

	return nil
}

// ErrInconsistentSize is returned when the dispersal matrix's dimensions
// do not match the habitat's cell count.
var ErrInconsistentSize = fmt.Errorf("inconsistent dispersal map size")

// ErrInconsistentProbabilities is returned when the dispersal matrix
// violates the dispersal contract against a given habitat.
var ErrInconsistentProbabilities = fmt.Errorf("inconsistent dispersal probabilities")
