// Package bond implements refinement types over float64 and uint64 that
// enforce a numeric domain at construction time.
//
// Every type in this package is a thin wrapper around a primitive: the
// invariant is checked once, at the boundary where a value enters the
// system (parsing a matrix, normalizing a probability, building an alias
// table), so that everywhere else in the simulation engine the Go type
// system itself rules out the out-of-domain case. A failed check is a
// programmer error (a malformed input landed somewhere it already should
// have been rejected), not a recoverable condition, so the constructors
// here panic; callers that parse untrusted input validate with plain
// comparisons first and only lift the result into a bond type once it is
// known to be in range.
package bond

import (
	"fmt"
	"math"
)

// ClosedUnitF64 is a float64 known to lie in [0,1].
type ClosedUnitF64 float64

// NewClosedUnitF64 builds a ClosedUnitF64, panicking if x is outside [0,1]
// or is NaN.
func NewClosedUnitF64(x float64) ClosedUnitF64 {
	if math.IsNaN(x) || x < 0 || x > 1 {
		panic(fmt.Sprintf("bond: %v is not in [0,1]", x))
	}
	return ClosedUnitF64(x)
}

// Get returns the underlying float64.
func (c ClosedUnitF64) Get() float64 { return float64(c) }

// ClosedUnitOne returns the closed-unit value 1.
func ClosedUnitOne() ClosedUnitF64 { return ClosedUnitF64(1) }

// ClosedUnitZero returns the closed-unit value 0.
func ClosedUnitZero() ClosedUnitF64 { return ClosedUnitF64(0) }

// PositiveUnitF64 is a float64 known to lie in (0,1].
type PositiveUnitF64 float64

// NewPositiveUnitF64 builds a PositiveUnitF64, panicking if x is outside
// (0,1] or is NaN.
func NewPositiveUnitF64(x float64) PositiveUnitF64 {
	if math.IsNaN(x) || x <= 0 || x > 1 {
		panic(fmt.Sprintf("bond: %v is not in (0,1]", x))
	}
	return PositiveUnitF64(x)
}

// Get returns the underlying float64.
func (p PositiveUnitF64) Get() float64 { return float64(p) }

// PositiveF64 is a float64 known to lie in (0,+Inf).
type PositiveF64 float64

// NewPositiveF64 builds a PositiveF64, panicking if x is not strictly
// positive or is NaN/+Inf is allowed, NaN is not.
func NewPositiveF64(x float64) PositiveF64 {
	if math.IsNaN(x) || x <= 0 {
		panic(fmt.Sprintf("bond: %v is not in (0,+Inf)", x))
	}
	return PositiveF64(x)
}

// Get returns the underlying float64.
func (p PositiveF64) Get() float64 { return float64(p) }

// Add returns p + NonNegativeF64(d) as a PositiveF64 (sum of a positive and
// a non-negative value is always positive).
func (p PositiveF64) Add(d NonNegativeF64) PositiveF64 {
	return PositiveF64(float64(p) + float64(d))
}

// MaxAfterF64 returns the smallest PositiveF64 that is strictly greater than
// prior and is at least candidate: if candidate already exceeds prior it is
// returned unchanged, otherwise the next float64 representable after prior
// (toward +Inf) is used. This is the "strict monotone event time" rule from
// spec.md §4.6/§9: ties are broken by bit-level next-representable-float,
// not by adding an epsilon.
func MaxAfterF64(prior, candidate float64) PositiveF64 {
	if candidate > prior {
		return PositiveF64(candidate)
	}
	return PositiveF64(math.Nextafter(prior, math.Inf(1)))
}

// NonNegativeF64 is a float64 known to lie in [0,+Inf).
type NonNegativeF64 float64

// NewNonNegativeF64 builds a NonNegativeF64, panicking if x is negative or
// NaN.
func NewNonNegativeF64(x float64) NonNegativeF64 {
	if math.IsNaN(x) || x < 0 {
		panic(fmt.Sprintf("bond: %v is not in [0,+Inf)", x))
	}
	return NonNegativeF64(x)
}

// Get returns the underlying float64.
func (n NonNegativeF64) Get() float64 { return float64(n) }

// NonNegativeOne is the value 1, which is always non-negative.
func NonNegativeOne() NonNegativeF64 { return NonNegativeF64(1) }

// NonZeroOneU64 is a uint64 known to be neither 0 nor 1.
//
// The global lineage reference counter (spec.md §4.3, §9) is represented
// this way: base value 2 so downstream plugins can always recover a
// compact zero-based index as value-2 without ever colliding with a
// sentinel 0 or 1.
type NonZeroOneU64 uint64

// NewNonZeroOneU64 builds a NonZeroOneU64, panicking if x is 0 or 1.
func NewNonZeroOneU64(x uint64) NonZeroOneU64 {
	if x == 0 || x == 1 {
		panic(fmt.Sprintf("bond: %d must not be 0 or 1", x))
	}
	return NonZeroOneU64(x)
}

// Get returns the underlying uint64.
func (n NonZeroOneU64) Get() uint64 { return uint64(n) }

// Partition identifies a worker's rank and the total number of workers in
// an independent-parallel run (spec.md §5, §9; necsim's `Partition` bond
// type). Out-of-core in this module — the core only carries the value
// through to the interfaces in package partition.
type Partition struct {
	rank  uint32
	count uint32
}

// NewPartition builds a Partition, panicking if count is zero or rank is
// not in [0,count).
func NewPartition(rank, count uint32) Partition {
	if count == 0 {
		panic("bond: partition count must be positive")
	}
	if rank >= count {
		panic(fmt.Sprintf("bond: partition rank %d out of range [0,%d)", rank, count))
	}
	return Partition{rank: rank, count: count}
}

// Rank returns this partition's rank.
func (p Partition) Rank() uint32 { return p.rank }

// Count returns the total number of partitions.
func (p Partition) Count() uint32 { return p.count }

// IsMonolithic reports whether this is the only partition in the run.
func (p Partition) IsMonolithic() bool { return p.count == 1 }
