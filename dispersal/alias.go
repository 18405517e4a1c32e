package dispersal

import (
	"github.com/js-arias/coalesce/alias"
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

// Alias is a dispersal sampler backed by one alias table per origin cell
// (spec.md §4.2 "Alias"): a slice of optional tables indexed by origin
// index, nil for origins
// with no positive habitat-weighted dispersal (non-dispersing origins).
type Alias struct {
	habitat *landscape.Habitat
	tables  []*alias.Table[uint64] // indexed by origin index; nil if non-dispersing
}

// NewAlias validates matrix against the dispersal contract for habitat
// and builds one alias table per dispersing origin.
func NewAlias(h *landscape.Habitat, m Matrix) (*Alias, error) {
	if err := ValidateContract(h, m); err != nil {
		return nil, err
	}

	e := h.Len()
	tables := make([]*alias.Table[uint64], e)
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
			continue // non-dispersing origin
		}

		table, err := alias.New(weights)
		if err != nil {
			return nil, err
		}
		tables[o] = table
	}

	return &Alias{habitat: h, tables: tables}, nil
}

// SampleDispersalFromLocation implements Sampler.
func (a *Alias) SampleDispersalFromLocation(origin landscape.Location, s rng.Sampler) landscape.Location {
	o := a.habitat.Extent().Index(origin)
	table := a.tables[o]
	if table == nil {
		// Non-dispersing origin: by the dispersal contract this cannot
		// be reached by a legitimate caller, since an origin with
		// positive habitat always has a dispersing table. Self-loop as
		// the least surprising fallback.
		return origin
	}
	t := table.Sample(s)
	return a.habitat.Extent().Locate(t)
}

// IsDispersing reports whether origin has a non-empty dispersal table.
func (a *Alias) IsDispersing(origin landscape.Location) bool {
	return a.tables[a.habitat.Extent().Index(origin)] != nil
}
