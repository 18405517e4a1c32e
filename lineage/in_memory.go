package lineage

import (
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

// InMemory is a GloballyCoherent lineage store (spec.md §4.3): unlike
// Classical, it keeps no global list of active lineages (choosing which
// location fires next belongs to the Gillespie active-lineage sampler's own
// priority queue, see package activelineage). Instead InMemory indexes
// active lineages by location, popped and pushed per location via
// PopAnyAtLocation and PushActive, to answer "who else is here" in O(1),
// which is what the coalescence sampler needs. Grounded on
// necsim's CoherentInMemoryLineageStore
// (necsim/impls/no-std/src/cogs/lineage_store/coherent/in_memory/mod.rs).
type InMemory struct {
	habitat *landscape.Habitat
	counter *globalLineageCounter

	store []Lineage

	locationToRefs map[landscape.Location][]GlobalLineageReference
	indexAtLoc     map[GlobalLineageReference]int
}

// NewInMemory builds an InMemory store from every IndexedLocation the
// origin sampler produces.
func NewInMemory(h *landscape.Habitat, origins []landscape.IndexedLocation) *InMemory {
	m := &InMemory{
		habitat:        h,
		counter:        newGlobalLineageCounter(),
		store:          make([]Lineage, 0, len(origins)),
		locationToRefs: make(map[landscape.Location][]GlobalLineageReference, len(origins)),
		indexAtLoc:     make(map[GlobalLineageReference]int, len(origins)),
	}

	for _, il := range origins {
		ref := m.counter.allocate()
		m.store = append(m.store, Lineage{Global: ref, Location: il})
		m.addToLocation(ref, il.Location)
	}

	return m
}

func (m *InMemory) addToLocation(ref GlobalLineageReference, loc landscape.Location) {
	refs := m.locationToRefs[loc]
	m.indexAtLoc[ref] = len(refs)
	m.locationToRefs[loc] = append(refs, ref)
}

func (m *InMemory) removeFromItsLocation(ref GlobalLineageReference) {
	loc := m.store[ref.Index()].Location.Location
	refs := m.locationToRefs[loc]

	last := len(refs) - 1
	i := m.indexAtLoc[ref]
	lastRef := refs[last]
	refs[i] = lastRef
	m.indexAtLoc[lastRef] = i
	m.locationToRefs[loc] = refs[:last]
	delete(m.indexAtLoc, ref)
}

// Get returns the Lineage record for ref.
func (m *InMemory) Get(ref GlobalLineageReference) Lineage { return m.store[ref.Index()] }

// Len returns the total number of lineages in the store.
func (m *InMemory) Len() int { return len(m.store) }

// Refs returns every GlobalLineageReference this store has ever allocated,
// in allocation order.
func (m *InMemory) Refs() []GlobalLineageReference {
	refs := make([]GlobalLineageReference, len(m.store))
	for i, l := range m.store {
		refs[i] = l.Global
	}
	return refs
}

// NumberActiveAtLocation returns how many lineages currently sit at loc.
func (m *InMemory) NumberActiveAtLocation(loc landscape.Location) int {
	return len(m.locationToRefs[loc])
}

// ActiveLocations returns every Location that currently has at least one
// active lineage, in arbitrary order.
func (m *InMemory) ActiveLocations() []landscape.Location {
	var locs []landscape.Location
	for loc, refs := range m.locationToRefs {
		if len(refs) > 0 {
			locs = append(locs, loc)
		}
	}
	return locs
}

// MoveToLocation relocates ref to loc, updating both the arena record and
// the per-location index.
func (m *InMemory) MoveToLocation(ref GlobalLineageReference, loc landscape.IndexedLocation) {
	m.removeFromItsLocation(ref)
	m.store[ref.Index()].Location = loc
	m.addToLocation(ref, loc.Location)
}

// PopAnyAtLocation removes and returns a uniformly random lineage currently
// active at loc (spec.md §4.6 Gillespie step 2: "choose a lineage at loc
// uniformly; extract it").
func (m *InMemory) PopAnyAtLocation(loc landscape.Location, s rng.Sampler) (GlobalLineageReference, bool) {
	refs := m.locationToRefs[loc]
	n := len(refs)
	if n == 0 {
		return GlobalLineageReference{}, false
	}

	chosen := s.SampleIndex(uint64(n))
	ref := refs[chosen]

	last := n - 1
	lastRef := refs[last]
	refs[chosen] = lastRef
	m.indexAtLoc[lastRef] = int(chosen)
	m.locationToRefs[loc] = refs[:last]
	delete(m.indexAtLoc, ref)

	return ref, true
}

// PushActive reinserts ref's location binding at loc, e.g. after it
// disperses without coalescing (spec.md §4.6
// push_active_lineage_to_indexed_location).
func (m *InMemory) PushActive(ref GlobalLineageReference, loc landscape.IndexedLocation) {
	m.store[ref.Index()].Location = loc
	m.addToLocation(ref, loc.Location)
}

// ExtractLineage records eventTime as ref's new last-event time and returns
// the location it held plus its previous last-event time (spec.md §4.3
// extract_lineage_from_its_location). The caller is responsible for
// removing ref from the active index first (PopAnyAtLocation /
// MoveToLocation's removal half).
func (m *InMemory) ExtractLineage(ref GlobalLineageReference, eventTime bond.NonNegativeF64) (landscape.IndexedLocation, bond.NonNegativeF64) {
	l := &m.store[ref.Index()]
	priorLoc := l.Location
	priorTime := l.LastEventTime
	l.LastEventTime = eventTime
	return priorLoc, priorTime
}

// SampleOptionalCoalescenceAtLocation samples a uniformly random slot among
// the habitat's capacity at loc; if that slot is already occupied by an
// active lineage it is returned, otherwise ok is false (spec.md §4.4,
// grounded on SimulationLineages.sample_optional_coalescence_at_location).
func (m *InMemory) SampleOptionalCoalescenceAtLocation(loc landscape.Location, capacity uint32, s rng.Sampler) (GlobalLineageReference, bool) {
	chosen := s.SampleIndex(uint64(capacity))
	return m.OptionalCoalescenceAtIndex(loc, chosen)
}

// OptionalCoalescenceAtIndex resolves occupancy at loc for an
// already-drawn slot index, without drawing one of its own: if chosen is
// already occupied by an active lineage it is returned, otherwise ok is
// false. Callers that must reuse the same draw for both the reported
// IndexedLocation and the occupancy check (spec.md §4.4's single-draw
// contract) call this directly instead of
// SampleOptionalCoalescenceAtLocation.
func (m *InMemory) OptionalCoalescenceAtIndex(loc landscape.Location, chosen uint64) (GlobalLineageReference, bool) {
	population := m.NumberActiveAtLocation(loc)
	if chosen >= uint64(population) {
		return GlobalLineageReference{}, false
	}
	return m.locationToRefs[loc][chosen], true
}
