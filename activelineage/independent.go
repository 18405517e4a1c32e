package activelineage

import (
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/rng"
	"github.com/js-arias/coalesce/turnover"
)

// Independent drives the independent-parallel algorithm (spec.md §4.6,
// §5): there is no shared priority queue — each lineage carries its own
// event-time sampler, so ties across lineages are possible and must be
// reconciled by an eventsampler.MinSpeciationTracker (out of this type's
// scope, owned by the driver). Grounded on spec.md §4.6 ("Independent. No
// shared queue...") since no concrete file for this cog survived
// retrieval (see DESIGN.md).
type Independent struct {
	rate turnover.Rate
}

// NewIndependent builds an Independent active-lineage sampler using rate
// to draw each lineage's own exponential waiting time.
func NewIndependent(rate turnover.Rate) *Independent {
	return &Independent{rate: rate}
}

// SampleNextEventTime draws this lineage's next event time, strictly after
// from, at loc's turnover rate.
func (i *Independent) SampleNextEventTime(loc landscape.Location, from bond.NonNegativeF64, s rng.Sampler) bond.PositiveF64 {
	lambda := i.rate.At(loc)
	dt := s.SampleExponential(bond.NewPositiveF64(lambda.Get()))
	return bond.MaxAfterF64(from.Get(), from.Get()+dt.Get())
}
