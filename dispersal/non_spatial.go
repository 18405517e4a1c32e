package dispersal

import (
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

// NonSpatial disperses uniformly across every slot of the habitat,
// ignoring the origin entirely (spec.md §4.2 "Non-spatial"): P_self =
// 1/E.
type NonSpatial struct {
	habitat *landscape.Habitat
}

// NewNonSpatial builds a NonSpatial dispersal sampler over habitat.
func NewNonSpatial(h *landscape.Habitat) *NonSpatial {
	return &NonSpatial{habitat: h}
}

// SampleDispersalFromLocation implements Sampler: ignores origin, samples
// uniformly over the E = w*h cells of the habitat's extent.
func (n *NonSpatial) SampleDispersalFromLocation(_ landscape.Location, s rng.Sampler) landscape.Location {
	idx := s.SampleIndex(uint64(n.habitat.Len()))
	return n.habitat.Extent().Locate(idx)
}

// SampleNonSelfDispersalFromLocation implements Separable via rejection
// sampling.
func (n *NonSpatial) SampleNonSelfDispersalFromLocation(origin landscape.Location, s rng.Sampler) landscape.Location {
	for {
		target := n.SampleDispersalFromLocation(origin, s)
		if target != origin {
			return target
		}
	}
}

// SelfDispersalProbabilityAt implements Separable: 1/E, the same for
// every origin.
func (n *NonSpatial) SelfDispersalProbabilityAt(_ landscape.Location) bond.ClosedUnitF64 {
	return bond.NewClosedUnitF64(1.0 / float64(n.habitat.Len()))
}
