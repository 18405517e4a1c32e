package activelineage_test

import (
	"testing"

	"github.com/js-arias/coalesce/activelineage"
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/lineage"
	"github.com/js-arias/coalesce/rng"
	"github.com/js-arias/coalesce/turnover"
)

func square2x2(caps []uint32) *landscape.Habitat {
	h, err := landscape.New(landscape.Extent{W: 2, H: 2}, caps)
	if err != nil {
		panic(err)
	}
	return h
}

func TestClassicalDrainsAllLineagesInIncreasingTime(t *testing.T) {
	h := square2x2([]uint32{2, 2, 2, 2})
	s := rng.NewSampler(rng.NewPCGCore(1))
	o := lineage.NewOriginSampler(h, bond.ClosedUnitOne(), s)
	store := lineage.NewClassical(h, o.All())

	rate := turnover.NewUniformRate(bond.NewPositiveF64(0.5))
	c := activelineage.NewClassical(store, rate)

	if n := c.NumberActiveLineages(); n != 8 {
		t.Fatalf("expecting 8 active lineages, got %d", n)
	}

	var lastTime float64
	count := 0
	for {
		_, _, _, eventTime, ok := c.PopActiveLineageIndexedLocationPriorEventTime(s)
		if !ok {
			break
		}
		if eventTime.Get() <= lastTime && count > 0 {
			t.Fatalf("expecting strictly increasing event time, got %v after %v", eventTime.Get(), lastTime)
		}
		lastTime = eventTime.Get()
		count++
	}
	if count != 8 {
		t.Fatalf("expecting to drain 8 lineages, got %d", count)
	}
}

func TestGillespieSchedulesAndDrainsAllLineages(t *testing.T) {
	h := square2x2([]uint32{1, 1, 1, 1})
	s := rng.NewSampler(rng.NewPCGCore(2))
	o := lineage.NewOriginSampler(h, bond.ClosedUnitOne(), s)
	store := lineage.NewInMemory(h, o.All())

	rate := turnover.NewUniformRate(bond.NewPositiveF64(0.5))
	g := activelineage.NewGillespie(store, rate, s)

	if n := g.NumberActiveLineages(); n != 4 {
		t.Fatalf("expecting 4 active lineages, got %d", n)
	}

	var lastTime float64
	count := 0
	for {
		_, _, _, eventTime, ok := g.PopActiveLineageIndexedLocationPriorEventTime(s)
		if !ok {
			break
		}
		if eventTime.Get() <= lastTime && count > 0 {
			t.Fatalf("expecting strictly increasing event time, got %v after %v", eventTime.Get(), lastTime)
		}
		lastTime = eventTime.Get()
		count++
	}
	if count != 4 {
		t.Fatalf("expecting to drain 4 lineages, got %d", count)
	}
	if n := g.NumberActiveLineages(); n != 0 {
		t.Fatalf("expecting 0 active lineages left, got %d", n)
	}
}

func TestGillespiePeekDoesNotRemove(t *testing.T) {
	h := square2x2([]uint32{1, 0, 0, 0})
	s := rng.NewSampler(rng.NewPCGCore(3))
	o := lineage.NewOriginSampler(h, bond.ClosedUnitOne(), s)
	store := lineage.NewInMemory(h, o.All())

	rate := turnover.NewUniformRate(bond.NewPositiveF64(0.5))
	g := activelineage.NewGillespie(store, rate, s)

	peeked, err := g.PeekTimeOfNextEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, _, popped, ok := g.PopActiveLineageIndexedLocationPriorEventTime(s)
	if !ok {
		t.Fatalf("expecting a lineage to pop")
	}
	if peeked.Get() != popped.Get() {
		t.Fatalf("expecting peek to match pop, got peek=%v pop=%v", peeked.Get(), popped.Get())
	}
}

func TestGillespiePeekEmptyQueueErrors(t *testing.T) {
	h := square2x2([]uint32{0, 0, 0, 0})
	s := rng.NewSampler(rng.NewPCGCore(4))
	store := lineage.NewInMemory(h, nil)
	rate := turnover.NewUniformRate(bond.NewPositiveF64(0.5))
	g := activelineage.NewGillespie(store, rate, s)

	if _, err := g.PeekTimeOfNextEvent(); err != activelineage.ErrQueueEmpty {
		t.Fatalf("expecting ErrQueueEmpty, got %v", err)
	}
}

func TestIndependentSampleNextEventTimeIsMonotone(t *testing.T) {
	s := rng.NewSampler(rng.NewPCGCore(5))
	rate := turnover.NewUniformRate(bond.NewPositiveF64(1.0))
	ind := activelineage.NewIndependent(rate)

	from := bond.NewNonNegativeF64(1.0)
	t1 := ind.SampleNextEventTime(landscape.Location{}, from, s)
	if t1.Get() <= from.Get() {
		t.Fatalf("expecting next event time strictly after %v, got %v", from.Get(), t1.Get())
	}
}
