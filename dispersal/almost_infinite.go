package dispersal

import (
	"math"

	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
)

// AlmostInfiniteNormal disperses by sampling (dx,dy) from an independent
// 2-D N(0,sigma^2), rounding half-away-from-zero to the nearest cell
// offset, then taxicab-wrapping onto extent (spec.md §4.2
// "Almost-infinite normal").
//
// Lineage positions are taken to be centred within their cell, so an
// offset only changes cell once it reaches magnitude >= 0.5 in either
// axis, hence the round-half-away-from-zero step before wrapping.
type AlmostInfiniteNormal struct {
	extent landscape.Extent
	sigma  float64
	pSelf  bond.ClosedUnitF64
}

// NewAlmostInfiniteNormal builds an AlmostInfiniteNormal kernel over
// extent with standard deviation sigma >= 0. sigma == 0 means every
// lineage always self-disperses (spec.md §8 boundary behavior).
func NewAlmostInfiniteNormal(extent landscape.Extent, sigma float64) *AlmostInfiniteNormal {
	var pSelf1D float64
	if sigma > 0 {
		pSelf1D = almostInfiniteErf01suffix(sigma)
	} else {
		pSelf1D = 1
	}
	return &AlmostInfiniteNormal{
		extent: extent,
		sigma:  sigma,
		pSelf:  bond.NewClosedUnitF64(pSelf1D * pSelf1D),
	}
}

// almostInfiniteErf01suffix returns erf(0.5/(sigma*sqrt(2))), the
// one-dimensional self-dispersal probability (spec.md §4.2).
func almostInfiniteErf01suffix(sigma float64) float64 {
	return math.Erf(0.5 / (sigma * math.Sqrt2))
}

func roundHalfAwayFromZero(x float64) int64 {
	if x >= 0 {
		return int64(math.Floor(x + 0.5))
	}
	return int64(math.Ceil(x - 0.5))
}

func wrap(v int64, span uint32) uint32 {
	m := int64(span)
	v %= m
	if v < 0 {
		v += m
	}
	return uint32(v)
}

// SampleDispersalFromLocation implements Sampler.
func (d *AlmostInfiniteNormal) SampleDispersalFromLocation(origin landscape.Location, s rng.Sampler) landscape.Location {
	dx, dy := s.Sample2DNormal(0, d.sigma)

	ix := roundHalfAwayFromZero(dx)
	iy := roundHalfAwayFromZero(dy)

	newX := wrap(int64(origin.X-d.extent.X0)+ix, d.extent.W)
	newY := wrap(int64(origin.Y-d.extent.Y0)+iy, d.extent.H)

	return landscape.Location{X: d.extent.X0 + newX, Y: d.extent.Y0 + newY}
}

// SampleNonSelfDispersalFromLocation implements Separable via rejection
// sampling (spec.md §4.2).
func (d *AlmostInfiniteNormal) SampleNonSelfDispersalFromLocation(origin landscape.Location, s rng.Sampler) landscape.Location {
	for {
		target := d.SampleDispersalFromLocation(origin, s)
		if target != origin {
			return target
		}
	}
}

// SelfDispersalProbabilityAt implements Separable: erf(0.5/(sigma*sqrt2))^2,
// falling back to 1.0 when sigma==0 (spec.md §4.2, §8).
func (d *AlmostInfiniteNormal) SelfDispersalProbabilityAt(_ landscape.Location) bond.ClosedUnitF64 {
	return d.pSelf
}
