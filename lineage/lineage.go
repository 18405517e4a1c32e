// Package lineage implements the lineage data model (spec.md §4.3): the
// global lineage reference, the lineage record itself, an origin sampler
// that seeds initial lineage positions from a habitat (with optional
// percentage subsampling), and the two lineage-store shapes the active-
// lineage samplers build on — LocallyCoherent (package-local "classical"
// arena, grounded on necsim's ClassicalLineageStore) and GloballyCoherent
// (per-location index supporting O(1) coalescence candidate sampling,
// grounded on necsim's CoherentInMemoryLineageStore / SimulationLineages).
package lineage

import (
	"fmt"

	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

// GlobalLineageReference is a lineage identifier, allocated in increasing
// order by the lineage store that creates it. Each store owns its own
// counter, so references from different stores can be equal. The
// underlying value starts at 2 (bond.NonZeroOneU64,
// spec.md §4.3, §9) so that value-2 is always a valid, collision-free
// zero-based index for any caller that wants a compact slice index instead
// of the opaque reference itself.
type GlobalLineageReference struct {
	id bond.NonZeroOneU64
}

// globalLineageCounter hands out increasing GlobalLineageReference values
// for a single simulation run. It is not safe for concurrent use across
// independent partitions: each partition owns its own counter, as a
// reference is only ever compared within the partition that produced it
// (spec.md §5 "independent" algorithm keeps no cross-partition identity).
type globalLineageCounter struct {
	next uint64
}

// newGlobalLineageCounter starts a counter at the base value 2.
func newGlobalLineageCounter() *globalLineageCounter {
	return &globalLineageCounter{next: 2}
}

func (c *globalLineageCounter) allocate() GlobalLineageReference {
	r := GlobalLineageReference{id: bond.NewNonZeroOneU64(c.next)}
	c.next++
	return r
}

// Index returns a compact, zero-based index for this reference, suitable
// for indexing a parallel slice.
func (r GlobalLineageReference) Index() uint64 { return r.id.Get() - 2 }

// String implements fmt.Stringer.
func (r GlobalLineageReference) String() string { return fmt.Sprintf("L%d", r.id.Get()) }

// Lineage is a single simulated individual: its current (possibly dispersed
// or coalesced-into) position, and the time of the last event that moved
// it.
type Lineage struct {
	Global        GlobalLineageReference
	Location      landscape.IndexedLocation
	LastEventTime bond.NonNegativeF64
}

// OriginSampler enumerates the initial lineages to simulate from a habitat,
// one per occupied individual slot, optionally thinned by a sampling
// percentage (spec.md §4.3 "subsampling"). It mirrors necsim's
// OriginSampler trait/DecompositionOriginSampler pairing but only the
// uniform-percentage case is implemented here; spatial decomposition is out
// of core scope (see package partition).
type OriginSampler struct {
	habitat    *landscape.Habitat
	percentage bond.ClosedUnitF64
	rng        rng.Sampler

	locations []landscape.Location
	locIdx    int
	slotIdx   uint32
}

// NewOriginSampler builds an OriginSampler over habitat, including each
// individual slot independently with probability percentage.
func NewOriginSampler(h *landscape.Habitat, percentage bond.ClosedUnitF64, s rng.Sampler) *OriginSampler {
	return &OriginSampler{
		habitat:    h,
		percentage: percentage,
		rng:        s,
		locations:  h.InhabitedLocations(),
	}
}

// Habitat returns the underlying habitat.
func (o *OriginSampler) Habitat() *landscape.Habitat { return o.habitat }

// FullUpperBoundSizeHint returns the maximum number of lineages this
// sampler could produce, ignoring subsampling (spec.md §4.3).
func (o *OriginSampler) FullUpperBoundSizeHint() uint64 { return o.habitat.TotalCapacity() }

// Next returns the next sampled IndexedLocation, or ok=false once
// exhausted.
func (o *OriginSampler) Next() (landscape.IndexedLocation, bool) {
	for o.locIdx < len(o.locations) {
		loc := o.locations[o.locIdx]
		cap := o.habitat.CapacityAt(loc)
		for o.slotIdx < cap {
			idx := o.slotIdx
			o.slotIdx++
			if o.percentage.Get() >= 1 || o.rng.SampleEvent(o.percentage) {
				return landscape.IndexedLocation{Location: loc, Index: idx}, true
			}
		}
		o.locIdx++
		o.slotIdx = 0
	}
	return landscape.IndexedLocation{}, false
}

// All drains the sampler into a slice, for callers that build a lineage
// store eagerly.
func (o *OriginSampler) All() []landscape.IndexedLocation {
	var out []landscape.IndexedLocation
	for {
		loc, ok := o.Next()
		if !ok {
			return out
		}
		out = append(out, loc)
	}
}
