package activelineage

import (
	"cmp"
	"container/heap"
	"fmt"
	"slices"

	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/lineage"
	"github.com/js-arias/coalesce/rng"
	"github.com/js-arias/coalesce/turnover"
)

// locationSchedule is one entry of the Gillespie priority queue: a
// Location with at least one active lineage, and the time of its next
// scheduled event.
type locationSchedule struct {
	loc   landscape.Location
	time  float64
	index int // maintained by container/heap
}

// scheduleQueue is a min-heap of locationSchedule ordered by time, with an
// index back to each location's heap position so an existing entry can be
// decreased in place rather than duplicated (spec.md §4.6: "collapsing with
// any existing schedule entry — the smaller wins").
type scheduleQueue struct {
	items   []*locationSchedule
	indexOf map[landscape.Location]int
}

func newScheduleQueue() *scheduleQueue {
	return &scheduleQueue{indexOf: make(map[landscape.Location]int)}
}

func (q *scheduleQueue) Len() int { return len(q.items) }

func (q *scheduleQueue) Less(i, j int) bool { return q.items[i].time < q.items[j].time }

func (q *scheduleQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
	q.indexOf[q.items[i].loc] = i
	q.indexOf[q.items[j].loc] = j
}

func (q *scheduleQueue) Push(x any) {
	it := x.(*locationSchedule)
	it.index = len(q.items)
	q.indexOf[it.loc] = it.index
	q.items = append(q.items, it)
}

func (q *scheduleQueue) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	delete(q.indexOf, it.loc)
	return it
}

// scheduleOrInsert inserts a (loc, time) schedule, or, if loc already has an
// entry, keeps whichever time is smaller (spec.md §4.6).
func (q *scheduleQueue) scheduleOrInsert(loc landscape.Location, time float64) {
	if i, ok := q.indexOf[loc]; ok {
		if time < q.items[i].time {
			q.items[i].time = time
			heap.Fix(q, i)
		}
		return
	}
	heap.Push(q, &locationSchedule{loc: loc, time: time})
}

// Gillespie drives the continuous-time SSA algorithm (spec.md §4.6): a
// priority queue of locations keyed by next event time, each popped
// location advancing a uniformly chosen lineage and (if others remain)
// rescheduling itself. Locations are scheduled with whatever turnover.Rate
// it is given (e.g. eventsampler.GillespieRate); it does not itself skip
// self-dispersal events. Grounded on necsim's
// GillespieActiveLineageSampler
// (necsim/impls/std/src/cogs/active_lineage_sampler/gillespie/sampler.rs).
type Gillespie struct {
	store         *lineage.InMemory
	rate          turnover.Rate
	queue         *scheduleQueue
	lastEventTime bond.NonNegativeF64
	numberActive  int
}

// NewGillespie builds a Gillespie active-lineage sampler over store, whose
// active locations are used to seed the initial schedule.
func NewGillespie(store *lineage.InMemory, rate turnover.Rate, s rng.Sampler) *Gillespie {
	g := &Gillespie{store: store, rate: rate, queue: newScheduleQueue()}
	heap.Init(g.queue)

	// ActiveLocations comes from map iteration; sort it so the initial
	// draws are made in the same order for a given seed.
	locs := store.ActiveLocations()
	slices.SortFunc(locs, func(a, b landscape.Location) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	for _, loc := range locs {
		g.numberActive += store.NumberActiveAtLocation(loc)
		g.scheduleLocation(loc, 0, s)
	}

	return g
}

// scheduleLocation draws Exp(rate(loc)) and schedules loc at from+that
// draw, unless rate(loc) is zero (no event can ever fire there).
func (g *Gillespie) scheduleLocation(loc landscape.Location, from float64, s rng.Sampler) {
	rate := g.rate.At(loc)
	if rate.Get() <= 0 {
		return
	}
	dt := s.SampleExponential(bond.NewPositiveF64(rate.Get()))
	g.queue.scheduleOrInsert(loc, from+dt.Get())
}

// NumberActiveLineages returns how many lineages are still awaiting an
// event.
func (g *Gillespie) NumberActiveLineages() int { return g.numberActive }

// LastEventTime returns the time of the most recently popped event.
func (g *Gillespie) LastEventTime() bond.NonNegativeF64 { return g.lastEventTime }

// ErrQueueEmpty is returned by PeekTimeOfNextEvent when no location has a
// scheduled event.
var ErrQueueEmpty = fmt.Errorf("activelineage: schedule queue is empty")

// PeekTimeOfNextEvent returns max_after(last_event_time, top().time) without
// popping (spec.md §4.6 "Peek contract").
func (g *Gillespie) PeekTimeOfNextEvent() (bond.PositiveF64, error) {
	if g.queue.Len() == 0 {
		return 0, ErrQueueEmpty
	}
	top := g.queue.items[0]
	return bond.MaxAfterF64(g.lastEventTime.Get(), top.time), nil
}

// PopActiveLineageIndexedLocationPriorEventTime implements the Gillespie
// step (spec.md §4.6):
//  1. pop (loc, t_event); t := max_after(last_event_time, t_event)
//  2. choose a lineage at loc uniformly; extract it
//  3. if more lineages remain at loc, re-push loc with t + Exp(λ(loc))
//  4. last_event_time := t
func (g *Gillespie) PopActiveLineageIndexedLocationPriorEventTime(s rng.Sampler) (ref lineage.GlobalLineageReference, priorLoc landscape.IndexedLocation, priorTime bond.NonNegativeF64, eventTime bond.PositiveF64, ok bool) {
	if g.queue.Len() == 0 {
		return lineage.GlobalLineageReference{}, landscape.IndexedLocation{}, 0, 0, false
	}

	top := heap.Pop(g.queue).(*locationSchedule)
	t := bond.MaxAfterF64(g.lastEventTime.Get(), top.time)

	ref, _ = g.store.PopAnyAtLocation(top.loc, s)
	priorLoc, priorTime = g.store.ExtractLineage(ref, bond.NewNonNegativeF64(t.Get()))
	g.numberActive--

	if g.store.NumberActiveAtLocation(top.loc) > 0 {
		g.scheduleLocation(top.loc, t.Get(), s)
	}

	g.lastEventTime = bond.NewNonNegativeF64(t.Get())
	return ref, priorLoc, priorTime, t, true
}

// PushActiveLineageToIndexedLocation reinserts ref at loc and schedules
// loc's next event at t + Exp(λ(loc)), collapsing with any existing
// schedule entry for loc (spec.md §4.6).
func (g *Gillespie) PushActiveLineageToIndexedLocation(ref lineage.GlobalLineageReference, loc landscape.IndexedLocation, t bond.PositiveF64, s rng.Sampler) {
	g.store.PushActive(ref, loc)
	g.numberActive++
	g.scheduleLocation(loc.Location, t.Get(), s)

	if t.Get() > g.lastEventTime.Get() {
		g.lastEventTime = bond.NewNonNegativeF64(t.Get())
	}
}
