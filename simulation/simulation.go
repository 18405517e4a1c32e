// Package simulation implements the C10 driver from spec.md §4.7: each
// step asks the active-lineage sampler (package activelineage) for the
// next lineage to advance, asks the event sampler (package eventsampler)
// to classify what happens to it, and reports the outcome. Grounded on
// spec.md §4.7/§9 and necsim's top-level simulation loop
// (necsim/core/src/simulation/mod.rs), whose "ask C9, then ask C8, then
// report" shape this mirrors; this package owns none of the sampler
// state itself (spec.md §9's PartialSimulation view is satisfied here by
// each sampler already depending only on the narrow interface it needs,
// never on a back-pointer to Simulation).
package simulation

import (
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/event"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/lineage"
	"github.com/js-arias/coalesce/rng"
)

// ActiveLineageSampler is the C9 shim the driver polls every step.
// lineage.Classical-backed activelineage.Classical and
// lineage.InMemory-backed activelineage.Gillespie both satisfy it.
type ActiveLineageSampler interface {
	NumberActiveLineages() int
	PopActiveLineageIndexedLocationPriorEventTime(s rng.Sampler) (ref lineage.GlobalLineageReference, priorLoc landscape.IndexedLocation, priorTime bond.NonNegativeF64, eventTime bond.PositiveF64, ok bool)
	PushActiveLineageToIndexedLocation(ref lineage.GlobalLineageReference, loc landscape.IndexedLocation, t bond.PositiveF64, s rng.Sampler)
}

// EventSampler is the C8 shim the driver consults to classify a lineage's
// next event. eventsampler.Unconditional satisfies it.
type EventSampler interface {
	SampleEventForLineage(ref lineage.GlobalLineageReference, origin landscape.IndexedLocation, eventTime float64, s rng.Sampler) (event.Event, bool)
}

// Reporter is the event sink (spec.md §6): a reporter capability with
// three operations. A reporter that doesn't care about a kind simply
// gives that method an empty body; the driver never special-cases which
// methods are implemented.
type Reporter interface {
	ReportSpeciation(e event.Event)
	ReportDispersal(e event.Event)
	ReportProgress(remaining uint64)
}

// NopReporter implements Reporter by discarding every event.
type NopReporter struct{}

func (NopReporter) ReportSpeciation(event.Event) {}
func (NopReporter) ReportDispersal(event.Event)  {}
func (NopReporter) ReportProgress(uint64)        {}

// StopPredicate decides whether SimulateIncrementalEarlyStop should yield
// control back to its caller after the step that just completed.
type StopPredicate func(sim *Simulation, steps uint64) bool

// Stats accumulates the event-count-conservation tally spec.md §8
// requires: speciation_count + out_dispersal + self_dispersal +
// out_coalescence + self_coalescence == steps.
type Stats struct {
	Steps              uint64
	MaxEventTime       float64
	SpeciationCount    uint64
	SelfDispersalCount uint64
	OutDispersalCount  uint64
	SelfCoalescence    uint64
	OutCoalescence     uint64
}

// Simulation wires together an active-lineage sampler, an event sampler
// and an RNG into the incremental driver loop of spec.md §4.7.
type Simulation struct {
	Active   ActiveLineageSampler
	Events   EventSampler
	RNG      rng.Sampler
	Reporter Reporter

	stats Stats
}

// New builds a Simulation driver. reporter may be nil, in which case
// NopReporter{} is used.
func New(active ActiveLineageSampler, events EventSampler, s rng.Sampler, reporter Reporter) *Simulation {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Simulation{Active: active, Events: events, RNG: s, Reporter: reporter}
}

// Stats returns the accumulated counters after any number of steps.
func (sim *Simulation) Stats() Stats { return sim.stats }

// NumberActiveLineages reports how many lineages remain to be resolved.
func (sim *Simulation) NumberActiveLineages() int { return sim.Active.NumberActiveLineages() }

// Step performs a single iteration of the spec.md §4.7 algorithm: pop a
// lineage, classify its event, report it, and re-push it unless it
// speciated, coalesced, or emigrated. ok is false once no active lineage
// remains.
func (sim *Simulation) Step() (e event.Event, reported bool, ok bool) {
	ref, origin, _, eventTime, has := sim.Active.PopActiveLineageIndexedLocationPriorEventTime(sim.RNG)
	if !has {
		return event.Event{}, false, false
	}

	sim.stats.Steps++
	if eventTime.Get() > sim.stats.MaxEventTime {
		sim.stats.MaxEventTime = eventTime.Get()
	}

	ev, sampled := sim.Events.SampleEventForLineage(ref, origin, eventTime.Get(), sim.RNG)
	if !sampled {
		// Emigrated across a partition boundary: the step ends without
		// re-insertion into this worker's active set (spec.md §4.7 step 2).
		return event.Event{}, false, true
	}

	switch ev.Type {
	case event.Speciation:
		sim.stats.SpeciationCount++
		sim.Reporter.ReportSpeciation(ev)
		return ev, true, true
	default:
		isSelf := ev.Target.Location == ev.Origin.Location
		isCoalescence := ev.Interact.Kind == event.InteractionCoalescence

		switch {
		case isCoalescence && isSelf:
			sim.stats.SelfCoalescence++
		case isCoalescence:
			sim.stats.OutCoalescence++
		case isSelf:
			sim.stats.SelfDispersalCount++
		default:
			sim.stats.OutDispersalCount++
		}

		sim.Reporter.ReportDispersal(ev)
		if !isCoalescence {
			sim.Active.PushActiveLineageToIndexedLocation(ev.Lineage, ev.Target, bond.NewPositiveF64(ev.Time), sim.RNG)
		}
		return ev, true, true
	}
}

// SimulateIncrementalEarlyStop drives the simulation step by step until
// either no active lineage remains or stopPred reports true after a
// step, per spec.md §4.7 step 5.
func (sim *Simulation) SimulateIncrementalEarlyStop(stopPred StopPredicate) {
	for {
		_, _, ok := sim.Step()
		if !ok {
			sim.Reporter.ReportProgress(0)
			return
		}

		remaining := uint64(sim.Active.NumberActiveLineages())
		sim.Reporter.ReportProgress(remaining)

		if stopPred != nil && stopPred(sim, sim.stats.Steps) {
			return
		}
	}
}
