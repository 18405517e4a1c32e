// Package eventsampler implements the event samplers from spec.md §4.5:
// given a lineage, its origin and the event time, decide speciation versus
// dispersal and, for dispersal, resolve the target and its coalescence
// interaction. Grounded on necsim's UnconditionalEventSampler
// (necsim-impls-no-std/src/cogs/event_sampler/unconditional.rs and its
// emigration-aware sibling in necsim/impls/no-std), its EventSampler trait
// (necsim-corev2/src/cogs/event_sampler.rs), and spec.md §4.5's Gillespie
// rate formula.
package eventsampler

import (
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/coalescence"
	"github.com/js-arias/coalesce/dispersal"
	"github.com/js-arias/coalesce/event"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/lineage"
	"github.com/js-arias/coalesce/rng"
	"github.com/js-arias/coalesce/turnover"
)

// EmigrationExit is the C10 hook an event sampler consults before
// committing a dispersal: it may rewrite the event (e.g. redirect across a
// partition boundary, out of core scope) or veto it entirely by returning
// ok=false, in which case the event sampler reports no event for this step.
type EmigrationExit interface {
	OptionallyEmigrate(ref lineage.GlobalLineageReference, origin, target landscape.IndexedLocation, eventTime float64, s rng.Sampler) (newRef lineage.GlobalLineageReference, newOrigin, newTarget landscape.IndexedLocation, newTime float64, ok bool)
}

// noEmigration is the default EmigrationExit for a monolithic run: it never
// intercepts a dispersal.
type noEmigration struct{}

func (noEmigration) OptionallyEmigrate(ref lineage.GlobalLineageReference, origin, target landscape.IndexedLocation, eventTime float64, _ rng.Sampler) (lineage.GlobalLineageReference, landscape.IndexedLocation, landscape.IndexedLocation, float64, bool) {
	return ref, origin, target, eventTime, true
}

// NoEmigration returns the pass-through EmigrationExit used by monolithic
// (single-partition) runs.
func NoEmigration() EmigrationExit { return noEmigration{} }

// Unconditional is the C8 event sampler for the Classical algorithm
// (spec.md §4.5): speciate with probability ν(origin), else disperse and
// resolve coalescence via the supplied coalescence.Sampler.
type Unconditional struct {
	Habitat     *landscape.Habitat
	Speciation  turnover.SpeciationProbability
	Dispersal   dispersal.Sampler
	Coalescence coalescence.Sampler
	Emigration  EmigrationExit
}

// NewUnconditional builds an Unconditional event sampler. emigration may be
// nil, in which case NoEmigration() is used.
func NewUnconditional(h *landscape.Habitat, speciation turnover.SpeciationProbability, d dispersal.Sampler, c coalescence.Sampler, emigration EmigrationExit) *Unconditional {
	if emigration == nil {
		emigration = NoEmigration()
	}
	return &Unconditional{Habitat: h, Speciation: speciation, Dispersal: d, Coalescence: c, Emigration: emigration}
}

// SampleEventForLineage samples the next event for ref, currently at
// origin, scheduled for eventTime. ok is false iff the lineage emigrated
// (spec.md §4.5, §4.7): the driver should not report an event for this
// step.
func (u *Unconditional) SampleEventForLineage(ref lineage.GlobalLineageReference, origin landscape.IndexedLocation, eventTime float64, s rng.Sampler) (event.Event, bool) {
	if s.SampleEvent(u.Speciation.At(origin.Location)) {
		return event.NewSpeciation(origin, eventTime, ref), true
	}

	target := u.Dispersal.SampleDispersalFromLocation(origin.Location, s)
	targetIndexed := landscape.IndexedLocation{Location: target}

	newRef, newOrigin, newTarget, newTime, ok := u.Emigration.OptionallyEmigrate(ref, origin, targetIndexed, eventTime, s)
	if !ok {
		return event.Event{}, false
	}

	capacity := u.Habitat.CapacityAt(newTarget.Location)
	resolvedTarget, interact := u.Coalescence.SampleInteractionAtLocation(newTarget.Location, capacity, s)

	return event.NewDispersal(newOrigin, newTime, newRef, resolvedTarget, interact), true
}

// Occupancy reports how many active lineages currently sit at a location;
// satisfied structurally by both lineage.Classical and lineage.InMemory.
type Occupancy interface {
	NumberActiveAtLocation(loc landscape.Location) int
}

// GillespieRate implements the skipping-Gillespie per-cell event rate
// (spec.md §4.5): λ(loc) = τ(loc) · (1 − ν(loc) · (1 − k/C) · P_self(loc)).
// It satisfies turnover.Rate, so the active-lineage Gillespie scheduler
// (package activelineage) can use it exactly where a plain turnover rate
// would otherwise go.
type GillespieRate struct {
	Habitat    *landscape.Habitat
	Turnover   turnover.Rate
	Speciation turnover.SpeciationProbability
	Dispersal  dispersal.Separable
	Occupied   Occupancy
}

// NewGillespieRate builds a GillespieRate.
func NewGillespieRate(h *landscape.Habitat, t turnover.Rate, sp turnover.SpeciationProbability, d dispersal.Separable, occ Occupancy) *GillespieRate {
	return &GillespieRate{Habitat: h, Turnover: t, Speciation: sp, Dispersal: d, Occupied: occ}
}

// At implements turnover.Rate.
func (g *GillespieRate) At(loc landscape.Location) bond.NonNegativeF64 {
	capacity := g.Habitat.CapacityAt(loc)
	if capacity == 0 {
		return bond.NewNonNegativeF64(0)
	}

	k := g.Occupied.NumberActiveAtLocation(loc)
	fractionOccupied := float64(k) / float64(capacity)

	nu := g.Speciation.At(loc).Get()
	pSelf := g.Dispersal.SelfDispersalProbabilityAt(loc).Get()
	tau := g.Turnover.At(loc).Get()

	lambda := tau * (1 - nu*(1-fractionOccupied)*pSelf)
	if lambda < 0 {
		lambda = 0
	}
	return bond.NewNonNegativeF64(lambda)
}

// SpeciationSample is the lexicographically ordered key the independent
// algorithm uses to deduplicate speciation events produced by overlapping
// parallel workers (spec.md §4.5 MinSpeciationTracking, §5).
type SpeciationSample struct {
	Sample float64
	Time   float64
	Loc    landscape.Location
}

// Less orders SpeciationSamples by (Sample, Time, Loc).
func (s SpeciationSample) Less(o SpeciationSample) bool {
	if s.Sample != o.Sample {
		return s.Sample < o.Sample
	}
	if s.Time != o.Time {
		return s.Time < o.Time
	}
	return s.Loc.Less(o.Loc)
}

// MinSpeciationTracker remembers the lexicographically smallest
// SpeciationSample seen so far (spec.md §4.5).
type MinSpeciationTracker struct {
	min    SpeciationSample
	hasMin bool
}

// NewMinSpeciationTracker builds an empty tracker.
func NewMinSpeciationTracker() *MinSpeciationTracker {
	return &MinSpeciationTracker{}
}

// ReplaceMinSpeciation compares candidate against the tracked minimum,
// keeping whichever is smaller, and returns the minimum that was tracked
// before this call (hadPrevious is false on the first call).
func (t *MinSpeciationTracker) ReplaceMinSpeciation(candidate SpeciationSample) (old SpeciationSample, hadPrevious bool) {
	old, hadPrevious = t.min, t.hasMin

	if !t.hasMin || candidate.Less(t.min) {
		t.min = candidate
		t.hasMin = true
	}

	return old, hadPrevious
}

// Min returns the current minimum, if any.
func (t *MinSpeciationTracker) Min() (SpeciationSample, bool) {
	return t.min, t.hasMin
}
