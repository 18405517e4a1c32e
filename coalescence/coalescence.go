// Package coalescence implements the coalescence samplers from spec.md
// §4.4: given a target location, resolve whether a dispersing lineage's
// chosen slot is already occupied. Grounded on necsim's
// CoalescenceSampler trait and its Independent implementation
// (necsim/impls/no-std/src/cogs/coalescence_sampler/independent.rs).
package coalescence

import (
	"github.com/js-arias/coalesce/event"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/lineage"
	"github.com/js-arias/coalesce/rng"
)

// Sampler resolves the interaction of a dispersing lineage arriving at
// target, given the habitat capacity there.
type Sampler interface {
	SampleInteractionAtLocation(target landscape.Location, capacity uint32, s rng.Sampler) (landscape.IndexedLocation, event.Interaction)
}

// Unconditional is a Sampler backed by a GloballyCoherent lineage store
// (package lineage's InMemory): it resolves occupancy exactly, returning
// InteractionNone or InteractionCoalescence, never InteractionMaybe.
type Unconditional struct {
	store *lineage.InMemory
}

// NewUnconditional builds an Unconditional coalescence sampler over store.
func NewUnconditional(store *lineage.InMemory) *Unconditional {
	return &Unconditional{store: store}
}

// SampleInteractionAtLocation implements Sampler.
func (u *Unconditional) SampleInteractionAtLocation(target landscape.Location, capacity uint32, s rng.Sampler) (landscape.IndexedLocation, event.Interaction) {
	idx := s.SampleCoalescenceIndex(capacity)
	indexed := landscape.IndexedLocation{Location: target, Index: idx}

	other, ok := u.store.OptionalCoalescenceAtIndex(target, uint64(idx))
	return indexed, event.FromOptionalCoalescence(other, ok)
}

// Conditional is a Sampler backed by a LocallyCoherent lineage store
// (package lineage's Classical): it only resolves occupancy among the
// lineages the store currently tracks as active at target, matching the
// conditional coalescence semantics of the classical algorithm.
type Conditional struct {
	store *lineage.Classical
}

// NewConditional builds a Conditional coalescence sampler over store.
func NewConditional(store *lineage.Classical) *Conditional {
	return &Conditional{store: store}
}

// SampleInteractionAtLocation implements Sampler.
func (c *Conditional) SampleInteractionAtLocation(target landscape.Location, capacity uint32, s rng.Sampler) (landscape.IndexedLocation, event.Interaction) {
	idx := s.SampleCoalescenceIndex(capacity)
	indexed := landscape.IndexedLocation{Location: target, Index: idx}

	population := c.store.NumberActiveAtLocation(target)
	if uint32(idx) >= uint32(population) {
		return indexed, event.NoneInteraction()
	}

	// The Classical store's active set at a location is unordered
	// (PopRandomActive swaps freely), so treat any active occupant as a
	// coalescence partner rather than indexing by idx.
	refs, ok := c.store.ActiveRefsAtLocation(target)
	if !ok || len(refs) == 0 {
		return indexed, event.NoneInteraction()
	}
	return indexed, event.CoalescenceInteraction(refs[0])
}

// Independent is a Sampler that never resolves occupancy: it always
// reports InteractionMaybe, deferring coalescence detection to a later,
// independent pass (spec.md §5 "independent" algorithm; grounded on
// necsim's IndependentCoalescenceSampler, whose debug_ensures contract
// guarantees exactly this).
type Independent struct{}

// NewIndependent builds an Independent coalescence sampler.
func NewIndependent() Independent { return Independent{} }

// SampleInteractionAtLocation implements Sampler: always InteractionMaybe.
func (Independent) SampleInteractionAtLocation(target landscape.Location, capacity uint32, s rng.Sampler) (landscape.IndexedLocation, event.Interaction) {
	idx := s.SampleCoalescenceIndex(capacity)
	return landscape.IndexedLocation{Location: target, Index: idx}, event.MaybeInteraction()
}
