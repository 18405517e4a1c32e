package alias_test

import (
	"math"
	"testing"

	"github.com/js-arias/coalesce/alias"
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/rng"
	"gonum.org/v1/gonum/stat"
)

func weighted(ws ...float64) []alias.Weighted[int] {
	out := make([]alias.Weighted[int], len(ws))
	for i, w := range ws {
		out[i] = alias.Weighted[int]{Event: i, Weight: bond.NewNonNegativeF64(w)}
	}
	return out
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := alias.New[int](nil); err == nil {
		t.Fatalf("expecting error for empty event list")
	}
}

func TestNewRejectsAllZero(t *testing.T) {
	if _, err := alias.New(weighted(0, 0, 0)); err == nil {
		t.Fatalf("expecting error when every weight is zero")
	}
}

func TestSampleOnlyReturnsKnownEvents(t *testing.T) {
	table, err := alias.New(weighted(1, 2, 0, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := rng.NewSampler(rng.NewPCGCore(11))
	for i := 0; i < 10_000; i++ {
		e := table.Sample(s)
		if e < 0 || e > 3 {
			t.Fatalf("sample out of range: %d", e)
		}
	}
}

// TestAliasLawUniform is the alias-sampler law from spec.md §8: for equal
// weights, empirical frequencies converge to 1/n. With n=4 and 10^6
// samples each bucket's frequency should land in [0.247,0.253] with
// probability > 0.99 (i.e. virtually always, barring a true statistical
// fluke).
func TestAliasLawUniform(t *testing.T) {
	table, err := alias.New(weighted(1, 1, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := rng.NewSampler(rng.NewPCGCore(2024))
	const n = 1_000_000
	counts := make([]int, 4)
	for i := 0; i < n; i++ {
		counts[table.Sample(s)]++
	}

	for i, c := range counts {
		freq := float64(c) / n
		if freq < 0.247 || freq > 0.253 {
			t.Fatalf("bucket %d frequency %v out of expected range", i, freq)
		}
	}
}

// TestAliasLawChiSquare checks convergence to proportional weights for a
// skewed distribution using a chi-square goodness-of-fit statistic.
func TestAliasLawChiSquare(t *testing.T) {
	w := []float64{1, 2, 3, 4, 10}
	table, err := alias.New(weighted(w...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := rng.NewSampler(rng.NewPCGCore(77))
	const n = 1_000_000
	counts := make([]float64, len(w))
	for i := 0; i < n; i++ {
		counts[table.Sample(s)]++
	}

	total := 0.0
	for _, x := range w {
		total += x
	}
	expected := make([]float64, len(w))
	for i, x := range w {
		expected[i] = x / total * n
	}

	chi2 := stat.ChiSquare(counts, expected)
	// 4 degrees of freedom, alpha=0.01 critical value is ~13.28.
	if chi2 > 13.28 {
		t.Fatalf("chi-square statistic %v exceeds critical value at alpha=0.01", chi2)
	}
}

func TestFullBucketsSampleSameEvent(t *testing.T) {
	// A single event is trivially "full": U=1 and K must equal E.
	table, err := alias.New(weighted(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := rng.NewSampler(rng.NewPCGCore(1))
	for i := 0; i < 100; i++ {
		if e := table.Sample(s); e != 0 {
			t.Fatalf("expecting the only event to always be sampled, got %d", e)
		}
	}
}

func TestPackedMatchesTableDistribution(t *testing.T) {
	w := weighted(1, 2, 3, 4)
	atoms, err := alias.NewPacked(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := alias.Range{Start: 0, End: len(atoms)}

	s := rng.NewSampler(rng.NewPCGCore(5))
	const n = 200_000
	counts := make([]float64, 4)
	for i := 0; i < n; i++ {
		counts[alias.SampleRange(atoms, r, s)]++
	}

	total := 1.0 + 2 + 3 + 4
	for i, want := range []float64{1, 2, 3, 4} {
		freq := counts[i] / n
		wantFreq := want / total
		if math.Abs(freq-wantFreq) > 0.01 {
			t.Fatalf("bucket %d frequency %v too far from expected %v", i, freq, wantFreq)
		}
	}
}

func TestPackedMultipleRangesAreIndependent(t *testing.T) {
	first, err := alias.NewPacked(weighted(1, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := alias.NewPacked(weighted(0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	atoms := append(append([]alias.Atom[int]{}, first...), second...)
	rangeA := alias.Range{Start: 0, End: len(first)}
	rangeB := alias.Range{Start: len(first), End: len(first) + len(second)}

	s := rng.NewSampler(rng.NewPCGCore(3))
	for i := 0; i < 100; i++ {
		if got := alias.SampleRange(atoms, rangeA, s); got != 0 {
			t.Fatalf("expecting range A to always sample event 0, got %d", got)
		}
		if got := alias.SampleRange(atoms, rangeB, s); got != 1 {
			t.Fatalf("expecting range B to always sample event 1, got %d", got)
		}
	}
}
