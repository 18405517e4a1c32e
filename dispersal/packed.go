package dispersal

import (
	"github.com/js-arias/coalesce/alias"
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

// PackedAlias is a dispersal sampler backed by a single contiguous atom
// buffer with one Range per origin (spec.md §4.2 "Packed alias"):
// cache/GPU-friendly, since every origin's table lives in the same
// backing array instead of behind its own allocation.
type PackedAlias struct {
	habitat *landscape.Habitat
	atoms   []alias.Atom[uint64]
	ranges  []alias.Range // indexed by origin index; zero-length if non-dispersing
}

// NewPackedAlias validates matrix against the dispersal contract for
// habitat and builds the packed atom buffer.
func NewPackedAlias(h *landscape.Habitat, m Matrix) (*PackedAlias, error) {
	if err := ValidateContract(h, m); err != nil {
		return nil, err
	}

	e := h.Len()
	var atoms []alias.Atom[uint64]
	ranges := make([]alias.Range, e)

	for o := 0; o < e; o++ {
		if h.CapacityAtIndex(uint64(o)) == 0 {
			continue
		}

		var weights []alias.Weighted[uint64]
		for t := 0; t < e; t++ {
			w := m.At(o, t) * float64(h.CapacityAtIndex(uint64(t)))
			if w <= 0 {
				continue
			}
			weights = append(weights, alias.Weighted[uint64]{
				Event:  uint64(t),
				Weight: bond.NewNonNegativeF64(w),
			})
		}
		if len(weights) == 0 {
			continue
		}

		start := len(atoms)
		originAtoms, err := alias.NewPacked(weights)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, originAtoms...)
		ranges[o] = alias.Range{Start: start, End: len(atoms)}
	}

	return &PackedAlias{habitat: h, atoms: atoms, ranges: ranges}, nil
}

// SampleDispersalFromLocation implements Sampler.
func (p *PackedAlias) SampleDispersalFromLocation(origin landscape.Location, s rng.Sampler) landscape.Location {
	o := p.habitat.Extent().Index(origin)
	r := p.ranges[o]
	if r.Len() == 0 {
		return origin
	}
	t := alias.SampleRange(p.atoms, r, s)
	return p.habitat.Extent().Locate(t)
}

// IsDispersing reports whether origin has a non-empty range in the packed
// buffer.
func (p *PackedAlias) IsDispersing(origin landscape.Location) bool {
	return p.ranges[p.habitat.Extent().Index(origin)].Len() > 0
}
