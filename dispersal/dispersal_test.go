package dispersal_test

import (
	"math"
	"testing"

	"github.com/js-arias/coalesce/dispersal"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

func square2x2(caps []uint32) *landscape.Habitat {
	e := landscape.Extent{W: 2, H: 2}
	h, err := landscape.New(e, caps)
	if err != nil {
		panic(err)
	}
	return h
}

func TestValidateContractRejectsWrongSize(t *testing.T) {
	h := square2x2([]uint32{1, 1, 1, 1})
	m := dispersal.Matrix{E: 3, Data: make([]float64, 9)}
	if err := dispersal.ValidateContract(h, m); err == nil {
		t.Fatalf("expecting size mismatch error")
	}
}

func TestValidateContractRejectsUninhabitableTarget(t *testing.T) {
	h := square2x2([]uint32{1, 0, 1, 1})
	m := dispersal.Matrix{E: 4, Data: []float64{
		0.5, 0.5, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
	if err := dispersal.ValidateContract(h, m); err == nil {
		t.Fatalf("expecting error for positive weight to uninhabitable target")
	}
}

func TestValidateContractAcceptsIdentity(t *testing.T) {
	h := square2x2([]uint32{1, 1, 1, 1})
	m := dispersal.Matrix{E: 4, Data: []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
	if err := dispersal.ValidateContract(h, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAliasOnlySamplesHabitableTargets(t *testing.T) {
	h := square2x2([]uint32{1, 0, 1, 1})
	m := dispersal.Matrix{E: 4, Data: []float64{
		0.5, 0, 0.25, 0.25,
		0, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, 0.5, 0.5,
	}}
	a, err := dispersal.NewAlias(h, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := rng.NewSampler(rng.NewPCGCore(1))
	origin := h.Extent().Locate(0)
	for i := 0; i < 1000; i++ {
		target := a.SampleDispersalFromLocation(origin, s)
		if h.CapacityAt(target) == 0 {
			t.Fatalf("sampled target %v has zero habitat", target)
		}
	}
}

func TestPackedAliasSelfOnlyRow(t *testing.T) {
	h := square2x2([]uint32{1, 1, 1, 1})
	m := dispersal.Matrix{E: 4, Data: []float64{
		0.1, 0.2, 0.3, 0.4,
		0.25, 0.25, 0.25, 0.25,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
	packed, err := dispersal.NewPackedAlias(h, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := rng.NewSampler(rng.NewPCGCore(9))
	origin := h.Extent().Locate(2) // row [0,0,1,0]: always self
	for i := 0; i < 100; i++ {
		target := packed.SampleDispersalFromLocation(origin, s)
		if target != origin {
			t.Fatalf("expecting deterministic self dispersal, got %v", target)
		}
	}
}

func TestSeparableAliasSelfProbability(t *testing.T) {
	h := square2x2([]uint32{1, 1, 1, 1})
	// origin 0 always disperses to self.
	m := dispersal.Matrix{E: 4, Data: []float64{
		1, 0, 0, 0,
		0.5, 0.5, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
	sep, err := dispersal.NewSeparableAlias(h, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	origin := h.Extent().Locate(0)
	if p := sep.SelfDispersalProbabilityAt(origin); p.Get() != 1 {
		t.Fatalf("expecting self-dispersal probability 1, got %v", p.Get())
	}
}

func TestSeparableAliasNonSelfNeverReturnsOrigin(t *testing.T) {
	h := square2x2([]uint32{1, 1, 1, 1})
	m := dispersal.Matrix{E: 4, Data: []float64{
		0.9, 0.1, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
	sep, err := dispersal.NewSeparableAlias(h, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := rng.NewSampler(rng.NewPCGCore(4))
	origin := h.Extent().Locate(0)
	for i := 0; i < 1000; i++ {
		target := sep.SampleNonSelfDispersalFromLocation(origin, s)
		if target == origin {
			t.Fatalf("non-self dispersal returned the origin")
		}
	}
}

func TestAlmostInfiniteNormalSigmaZeroAlwaysSelf(t *testing.T) {
	extent := landscape.Extent{W: 1000, H: 1000}
	d := dispersal.NewAlmostInfiniteNormal(extent, 0)

	if p := d.SelfDispersalProbabilityAt(landscape.Location{}); p.Get() != 1 {
		t.Fatalf("expecting P_self=1 when sigma=0, got %v", p.Get())
	}

	s := rng.NewSampler(rng.NewPCGCore(2))
	origin := landscape.Location{X: 500, Y: 500}
	for i := 0; i < 100; i++ {
		target := d.SampleDispersalFromLocation(origin, s)
		if target != origin {
			t.Fatalf("expecting sigma=0 to always self-disperse, got %v", target)
		}
	}
}

// TestAlmostInfiniteNormalSelfProbability is the Monte-Carlo scenario from
// spec.md §8 #5: sigma=1.0 should give P_self ~= erf(0.5/sqrt(2))^2 ~=
// 0.136, matched within +/-0.005 over 10^5 draws.
func TestAlmostInfiniteNormalSelfProbability(t *testing.T) {
	extent := landscape.Extent{W: 100_000, H: 100_000}
	d := dispersal.NewAlmostInfiniteNormal(extent, 1.0)

	want := math.Erf(0.5/math.Sqrt2) * math.Erf(0.5/math.Sqrt2)
	if math.Abs(d.SelfDispersalProbabilityAt(landscape.Location{}).Get()-want) > 1e-9 {
		t.Fatalf("expecting analytic P_self %v, got %v", want, d.SelfDispersalProbabilityAt(landscape.Location{}).Get())
	}

	s := rng.NewSampler(rng.NewPCGCore(123))
	origin := landscape.Location{X: 50_000, Y: 50_000}
	const n = 100_000
	self := 0
	for i := 0; i < n; i++ {
		if d.SampleDispersalFromLocation(origin, s) == origin {
			self++
		}
	}
	freq := float64(self) / n
	if math.Abs(freq-want) > 0.005 {
		t.Fatalf("empirical self-dispersal frequency %v too far from %v", freq, want)
	}
}

func TestNonSpatialSelfProbability(t *testing.T) {
	h := square2x2([]uint32{1, 1, 1, 1})
	n := dispersal.NewNonSpatial(h)
	if p := n.SelfDispersalProbabilityAt(landscape.Location{}); p.Get() != 0.25 {
		t.Fatalf("expecting P_self=1/E=0.25, got %v", p.Get())
	}
}
