package dispersal

import (
	"github.com/js-arias/coalesce/alias"
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

// SeparableAlias is a dispersal sampler that additionally precomputes,
// per origin, the self-dispersal probability P_self = w_self / sum(w) and
// an alias table over the non-self targets, so that
// SampleNonSelfDispersalFromLocation never has to fall back to rejection
// sampling when the self weight share is large (spec.md §4.2
// "Separable alias" — the spec leaves the rejection-vs-conditional choice
// open; this implementation always has the conditional table on hand and
// picks it whenever P_self > 0.5, since a rejection loop against a
// >50%-probability self weight would on average reject more draws than it
// accepts).
type SeparableAlias struct {
	habitat *landscape.Habitat
	full    []*alias.Table[uint64] // full (including self) table per origin, nil if non-dispersing
	nonSelf []*alias.Table[uint64] // conditional non-self table per origin, nil if origin has no non-self weight
	pSelf   []bond.ClosedUnitF64
}

// NewSeparableAlias validates matrix against the dispersal contract for
// habitat and builds both the full and the non-self conditional alias
// tables per origin.
func NewSeparableAlias(h *landscape.Habitat, m Matrix) (*SeparableAlias, error) {
	if err := ValidateContract(h, m); err != nil {
		return nil, err
	}

	e := h.Len()
	full := make([]*alias.Table[uint64], e)
	nonSelf := make([]*alias.Table[uint64], e)
	pSelf := make([]bond.ClosedUnitF64, e)

	for o := 0; o < e; o++ {
		if h.CapacityAtIndex(uint64(o)) == 0 {
			continue
		}

		var weights []alias.Weighted[uint64]
		var nonSelfWeights []alias.Weighted[uint64]
		var total, selfWeight float64
		for t := 0; t < e; t++ {
			w := m.At(o, t) * float64(h.CapacityAtIndex(uint64(t)))
			if w <= 0 {
				continue
			}
			weights = append(weights, alias.Weighted[uint64]{Event: uint64(t), Weight: bond.NewNonNegativeF64(w)})
			total += w
			if uint64(t) == uint64(o) {
				selfWeight = w
			} else {
				nonSelfWeights = append(nonSelfWeights, alias.Weighted[uint64]{Event: uint64(t), Weight: bond.NewNonNegativeF64(w)})
			}
		}
		if len(weights) == 0 {
			continue
		}

		table, err := alias.New(weights)
		if err != nil {
			return nil, err
		}
		full[o] = table
		pSelf[o] = bond.NewClosedUnitF64(selfWeight / total)

		if len(nonSelfWeights) > 0 {
			nonSelfTable, err := alias.New(nonSelfWeights)
			if err != nil {
				return nil, err
			}
			nonSelf[o] = nonSelfTable
		}
	}

	return &SeparableAlias{habitat: h, full: full, nonSelf: nonSelf, pSelf: pSelf}, nil
}

// SampleDispersalFromLocation implements Sampler.
func (a *SeparableAlias) SampleDispersalFromLocation(origin landscape.Location, s rng.Sampler) landscape.Location {
	o := a.habitat.Extent().Index(origin)
	table := a.full[o]
	if table == nil {
		return origin
	}
	return a.habitat.Extent().Locate(table.Sample(s))
}

// SampleNonSelfDispersalFromLocation implements Separable: it returns a
// target location different from origin.
//
// When a non-self conditional table exists and P_self>0.5, it samples
// directly from that conditional distribution. Otherwise it falls back to
// rejection sampling against the full table (spec.md §4.2 allows either
// strategy).
func (a *SeparableAlias) SampleNonSelfDispersalFromLocation(origin landscape.Location, s rng.Sampler) landscape.Location {
	o := a.habitat.Extent().Index(origin)
	if a.nonSelf[o] != nil && a.pSelf[o].Get() > 0.5 {
		return a.habitat.Extent().Locate(a.nonSelf[o].Sample(s))
	}

	table := a.full[o]
	if table == nil {
		return origin
	}
	for {
		t := table.Sample(s)
		target := a.habitat.Extent().Locate(t)
		if target != origin {
			return target
		}
		if a.nonSelf[o] == nil {
			// No non-self weight at all: origin is a dispersal sink,
			// there is nothing else to return.
			return origin
		}
	}
}

// SelfDispersalProbabilityAt implements Separable.
func (a *SeparableAlias) SelfDispersalProbabilityAt(origin landscape.Location) bond.ClosedUnitF64 {
	return a.pSelf[a.habitat.Extent().Index(origin)]
}
