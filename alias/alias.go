// Package alias implements Vose's alias method: O(1) weighted discrete
// sampling from a fixed, non-empty list of (event, weight) pairs, using
// exactly one uniform draw per sample (spec.md §4.1).
package alias

import (
	"fmt"
	"math"

	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/rng"
	"gonum.org/v1/gonum/floats"
)

// Table is an alias-method sampler over events of type E.
type Table[E any] struct {
	u []bond.ClosedUnitF64
	e []E
	k []E
}

// Weighted pairs an event with its (non-negative) weight.
type Weighted[E any] struct {
	Event  E
	Weight bond.NonNegativeF64
}

// New builds a Table from a non-empty list of (event, weight) pairs with
// at least one positive weight, following Vose's construction (spec.md
// §4.1):
//
//  1. normalize weights to U_i = w_i * n / sum(w)
//  2. partition into overfull (U_i>1), underfull (U_i<1), full buckets
//  3. repeatedly pair an overfull index with an underfull one, donating
//     the overfull event into the underfull bucket's alias slot
//  4. clamp any index surviving in either queue to U_i=1, with its alias
//     slot set to itself, so floating point residue never misroutes a
//     sample.
func New[E any](weighted []Weighted[E]) (*Table[E], error) {
	if len(weighted) == 0 {
		return nil, fmt.Errorf("alias: event list must not be empty")
	}

	n := len(weighted)
	weights := make([]float64, n)
	for i, w := range weighted {
		weights[i] = w.Weight.Get()
	}
	total := floats.Sum(weights)
	if total <= 0 {
		return nil, fmt.Errorf("alias: total weight must be positive")
	}

	u := make([]float64, n)
	e := make([]E, n)
	k := make([]E, n)
	for i, w := range weighted {
		u[i] = w.Weight.Get() * float64(n) / total
		e[i] = w.Event
		k[i] = w.Event
	}

	var overfull, underfull []int
	for i, ui := range u {
		switch {
		case ui > 1:
			overfull = append(overfull, i)
		case ui < 1:
			underfull = append(underfull, i)
		}
	}

	for len(overfull) > 0 && len(underfull) > 0 {
		o := overfull[len(overfull)-1]
		overfull = overfull[:len(overfull)-1]
		uf := underfull[len(underfull)-1]
		underfull = underfull[:len(underfull)-1]

		u[o] = u[o] + u[uf] - 1
		k[uf] = e[o]

		switch {
		case u[o] < 1:
			underfull = append(underfull, o)
		case u[o] > 1:
			overfull = append(overfull, o)
		}
	}

	// Numerical guard (spec.md §4.1, §9): whatever survives in either
	// queue is floating-point-close to 1; force it to exactly 1 and make
	// sure its alias slot samples the same event as its primary slot.
	for _, i := range overfull {
		u[i] = 1
		k[i] = e[i]
	}
	for _, i := range underfull {
		u[i] = 1
		k[i] = e[i]
	}

	cu := make([]bond.ClosedUnitF64, n)
	for i, ui := range u {
		cu[i] = bond.NewClosedUnitF64(clampUnit(ui))
	}

	return &Table[E]{u: cu, e: e, k: k}, nil
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Len returns the number of buckets (== number of events) in the table.
func (t *Table[E]) Len() int { return len(t.e) }

// Sample consumes one uniform draw from s and returns an event with
// probability proportional to its original weight.
func (t *Table[E]) Sample(s rng.Sampler) E {
	x := s.SampleUniform().Get()
	n := float64(len(t.e))

	i := int(math.Floor(x * n))
	if i >= len(t.e) {
		i = len(t.e) - 1
	}
	y := x*n - float64(i)

	if y < t.u[i].Get() {
		return t.e[i]
	}
	return t.k[i]
}
