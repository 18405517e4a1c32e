// Package rng implements the core random number generator abstraction used
// throughout the simulation (spec.md §4.8) and the derived samplers built
// on top of it: uniform, event (Bernoulli), index, exponential, 2-D normal,
// and the stable one-shot coalescence index sampler used to let a remote
// partition re-derive a migrating lineage's coalescence choice from the
// same draw.
package rng

import (
	"math"
	"math/rand/v2"

	"github.com/js-arias/coalesce/bond"
)

// Core produces uniformly-distributed uint64 values. It is the single
// primitive every other sampler in this package is built from, mirroring
// necsim's RngCore cog (spec.md §4.8).
type Core interface {
	// Uint64 returns the next pseudo-random 64-bit value.
	Uint64() uint64
}

// Sampler wraps a Core with the derived distributions spec.md §4.8
// requires.
type Sampler struct {
	Core Core
}

// NewSampler wraps core in a Sampler.
func NewSampler(core Core) Sampler {
	return Sampler{Core: core}
}

// SampleUniform draws a float64 in [0,1) using the top 53 bits of a
// Uint64 draw as the mantissa, the standard trick for turning a uniform
// integer source into a uniform double with full mantissa precision.
func (s Sampler) SampleUniform() bond.ClosedUnitF64 {
	const mantissaBits = 53
	v := s.Core.Uint64() >> (64 - mantissaBits)
	return bond.NewClosedUnitF64(float64(v) / float64(uint64(1)<<mantissaBits))
}

// SampleEvent reports true with probability p.
func (s Sampler) SampleEvent(p bond.ClosedUnitF64) bool {
	return s.SampleUniform().Get() < p.Get()
}

// SampleIndex draws an index uniformly from [0,n). Per spec.md §9, no
// rejection loop against modulo bias is required at this altitude: the
// 53-bit uniform float is scaled and floored, the same approach
// necsim-rust's own alias sampler uses for its internal index draw
// (alias/mod.rs's `sample_event`).
func (s Sampler) SampleIndex(n uint64) uint64 {
	if n == 0 {
		panic("rng: SampleIndex requires n > 0")
	}
	u := s.SampleUniform().Get()
	idx := uint64(u * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// SampleExponential draws from an exponential distribution with rate
// lambda > 0, via the inverse CDF -ln(U)/lambda (spec.md §4.8). U is drawn
// from (0,1] rather than [0,1) so that ln(U) never sees zero.
func (s Sampler) SampleExponential(lambda bond.PositiveF64) bond.NonNegativeF64 {
	u := 1.0 - s.SampleUniform().Get() // U in (0,1]
	return bond.NewNonNegativeF64(-math.Log(u) / lambda.Get())
}

// Sample2DNormal draws (dx,dy) independently from N(mu,sigma^2) via the
// Box-Muller transform.
func (s Sampler) Sample2DNormal(mu, sigma float64) (float64, float64) {
	u1 := 1.0 - s.SampleUniform().Get() // avoid log(0)
	u2 := s.SampleUniform().Get()

	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2

	dx := mu + sigma*r*math.Cos(theta)
	dy := mu + sigma*r*math.Sin(theta)
	return dx, dy
}

// SampleCoalescenceIndex draws a single index in [0,capacity) using one
// uniform sample. It exists as its own named entry point (rather than a
// caller just calling SampleIndex) so that a migrating lineage's
// coalescence choice can be re-derived deterministically on the receiving
// partition from an externally-carried copy of the same uniform draw
// (spec.md §4.4 "Independent" coalescence sampler, §4.8).
func (s Sampler) SampleCoalescenceIndex(capacity uint32) uint32 {
	if capacity == 0 {
		panic("rng: SampleCoalescenceIndex requires capacity > 0")
	}
	return uint32(s.SampleIndex(uint64(capacity)))
}

// PCGCore is the default Core, backed by math/rand/v2's PCG generator: a
// small, fast, statistically strong generator with an explicit two-word
// seed, which is what lets HabitatPrimeableCore below derive independent
// streams per (location, seed, generation) tuple.
type PCGCore struct {
	src *rand.PCG
}

// NewPCGCore builds a PCGCore seeded from a single uint64 seed. The two
// halves of the required 128-bit PCG seed are derived with a fixed
// odd-constant splitmix-style mix so that nearby seeds still produce very
// different generator states (no plugin needed, the standard library PCG
// constructor wants two independent-looking words).
func NewPCGCore(seed uint64) *PCGCore {
	hi, lo := splitSeed(seed)
	return &PCGCore{src: rand.NewPCG(hi, lo)}
}

// Uint64 implements Core.
func (c *PCGCore) Uint64() uint64 { return c.src.Uint64() }

// ChaCha8Core is an alternative Core backed by math/rand/v2's ChaCha8
// generator, for callers who want a cryptographically-strong stream
// instead of PCG's speed (spec.md does not mandate a specific generator,
// only the Core/Sampler contract).
type ChaCha8Core struct {
	src *rand.ChaCha8
}

// NewChaCha8Core builds a ChaCha8Core from a 64-bit seed, expanded into
// the 32-byte key ChaCha8 requires via the same splitmix64 mixing used by
// NewPCGCore.
func NewChaCha8Core(seed uint64) *ChaCha8Core {
	var key [32]byte
	s := seed
	for i := 0; i < 4; i++ {
		s = splitmix64Next(&s)
		for b := 0; b < 8; b++ {
			key[i*8+b] = byte(s >> (8 * b))
		}
	}
	return &ChaCha8Core{src: rand.NewChaCha8(key)}
}

// Uint64 implements Core.
func (c *ChaCha8Core) Uint64() uint64 { return c.src.Uint64() }

func splitSeed(seed uint64) (hi, lo uint64) {
	s := seed
	hi = splitmix64Next(&s)
	lo = splitmix64Next(&s)
	return hi, lo
}

// splitmix64Next advances s in place and returns the next splitmix64
// output; a minimal, dependency-free seed expander (the algorithm is
// public domain, by Sebastiano Vigna).
func splitmix64Next(s *uint64) uint64 {
	*s += 0x9E3779B97F4A7C15
	z := *s
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// HabitatPrimeableCore is a Core that can be deterministically re-seeded
// from a (locationIndex, seed, generation) tuple, so that the independent
// algorithm's embarrassingly-parallel re-execution makes the same random
// choices for the same lineage regardless of which worker or in which
// order it is simulated (spec.md §4.8 "Primeable / splittable RNGs").
type HabitatPrimeableCore struct {
	baseSeed uint64
	*PCGCore
}

// NewHabitatPrimeableCore builds a HabitatPrimeableCore from a base seed.
// Call Prime before using it for a given lineage's re-derivation.
func NewHabitatPrimeableCore(baseSeed uint64) *HabitatPrimeableCore {
	h := &HabitatPrimeableCore{baseSeed: baseSeed}
	h.Prime(0, 0)
	return h
}

// Prime re-seeds the generator deterministically from locationIndex and
// generation, combined with the core's base seed. Calling Prime with the
// same arguments always produces the same subsequent draws.
func (h *HabitatPrimeableCore) Prime(locationIndex uint64, generation uint64) {
	s := h.baseSeed
	a := splitmix64Next(&s)
	a ^= locationIndex*0x9E3779B97F4A7C15 + 1
	b := splitmix64Next(&s)
	b ^= generation*0xBF58476D1CE4E5B9 + 1
	h.PCGCore = &PCGCore{src: rand.NewPCG(a, b)}
}
