package lineage

import (
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

// Classical is a LocallyCoherent lineage store (spec.md §4.3): an arena of
// Lineage records plus, per location, the set of active lineage references
// currently sitting there, supporting the uniform random-pop operation the
// Classical active-lineage sampler needs each step. Grounded on necsim's
// SimulationLineages (necsim/src/simulation/lineage/lineages.rs), adapted
// from its Array2D-of-Vec layout to a map keyed by Location.
type Classical struct {
	habitat *landscape.Habitat
	counter *globalLineageCounter

	store []Lineage // index == GlobalLineageReference.Index()

	locationToRefs map[landscape.Location][]GlobalLineageReference
	indexAtLoc     map[GlobalLineageReference]int // position within locationToRefs[loc]

	active []GlobalLineageReference
}

// NewClassical builds a Classical store from every IndexedLocation the
// origin sampler produces.
func NewClassical(h *landscape.Habitat, origins []landscape.IndexedLocation) *Classical {
	c := &Classical{
		habitat:        h,
		counter:        newGlobalLineageCounter(),
		store:          make([]Lineage, 0, len(origins)),
		locationToRefs: make(map[landscape.Location][]GlobalLineageReference, len(origins)),
		indexAtLoc:     make(map[GlobalLineageReference]int, len(origins)),
		active:         make([]GlobalLineageReference, 0, len(origins)),
	}

	for _, il := range origins {
		ref := c.counter.allocate()
		c.store = append(c.store, Lineage{Global: ref, Location: il})
		c.pushActiveAtLocation(ref, il.Location)
	}

	return c
}

func (c *Classical) pushActiveAtLocation(ref GlobalLineageReference, loc landscape.Location) {
	refs := c.locationToRefs[loc]
	c.indexAtLoc[ref] = len(refs)
	c.locationToRefs[loc] = append(refs, ref)
	c.active = append(c.active, ref)
}

func (c *Classical) removeFromItsLocation(ref GlobalLineageReference) {
	loc := c.store[ref.Index()].Location.Location
	refs := c.locationToRefs[loc]

	last := len(refs) - 1
	i := c.indexAtLoc[ref]
	lastRef := refs[last]
	refs[i] = lastRef
	c.indexAtLoc[lastRef] = i
	c.locationToRefs[loc] = refs[:last]
	delete(c.indexAtLoc, ref)
}

// Get returns the Lineage record for ref.
func (c *Classical) Get(ref GlobalLineageReference) Lineage { return c.store[ref.Index()] }

// SetLocation updates ref's recorded location, e.g. after dispersal.
func (c *Classical) SetLocation(ref GlobalLineageReference, loc landscape.IndexedLocation) {
	c.store[ref.Index()].Location = loc
}

// Len returns the total number of lineages ever created by this store.
func (c *Classical) Len() int { return len(c.store) }

// Refs returns every GlobalLineageReference this store has ever allocated,
// in allocation order.
func (c *Classical) Refs() []GlobalLineageReference {
	refs := make([]GlobalLineageReference, len(c.store))
	for i, l := range c.store {
		refs[i] = l.Global
	}
	return refs
}

// NumberActive returns the number of lineages still awaiting an event.
func (c *Classical) NumberActive() int { return len(c.active) }

// NumberActiveAtLocation returns how many active lineages currently sit at
// loc.
func (c *Classical) NumberActiveAtLocation(loc landscape.Location) int {
	return len(c.locationToRefs[loc])
}

// ActiveRefsAtLocation returns the (unordered) active lineage references
// currently at loc, or ok=false if none are active there.
func (c *Classical) ActiveRefsAtLocation(loc landscape.Location) (refs []GlobalLineageReference, ok bool) {
	refs, ok = c.locationToRefs[loc]
	return refs, ok && len(refs) > 0
}

// PopRandomActive removes and returns a uniformly random active lineage
// (grounded on SimulationLineages.pop_random_active_lineage_reference):
// swap the last element into a uniformly chosen slot, then pop, giving O(1)
// amortized removal without preserving order.
func (c *Classical) PopRandomActive(s rng.Sampler) (GlobalLineageReference, bool) {
	n := len(c.active)
	if n == 0 {
		return GlobalLineageReference{}, false
	}

	last := c.active[n-1]
	c.active = c.active[:n-1]

	chosen := s.SampleIndex(uint64(n))
	var ref GlobalLineageReference
	if chosen == uint64(n-1) {
		ref = last
	} else {
		ref = c.active[chosen]
		c.active[chosen] = last
	}

	c.removeFromItsLocation(ref)
	return ref, true
}

// PushActive reinserts ref as active at loc, updating its recorded location
// and re-joining the active set (spec.md §4.6
// push_active_lineage_to_indexed_location).
func (c *Classical) PushActive(ref GlobalLineageReference, loc landscape.IndexedLocation) {
	c.store[ref.Index()].Location = loc
	c.pushActiveAtLocation(ref, loc.Location)
}

// ExtractLineage returns the location ref held plus its previous last-event
// time, then updates its last-event time to eventTime (spec.md §4.3
// extract_lineage_from_its_location). It does not touch the active set or
// the per-location index: ref must already have been removed from both,
// e.g. via PopRandomActive.
func (c *Classical) ExtractLineage(ref GlobalLineageReference, eventTime bond.NonNegativeF64) (landscape.IndexedLocation, bond.NonNegativeF64) {
	l := &c.store[ref.Index()]
	priorLoc := l.Location
	priorTime := l.LastEventTime
	l.LastEventTime = eventTime
	return priorLoc, priorTime
}
