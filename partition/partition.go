// Package partition describes the external collaborator the independent
// (parallel) algorithm delegates to (spec.md §5/§6): migrating lineages
// between workers and the global reductions a monolithic, single-worker
// run never needs. The only implementation here is Monolithic, for
// single-worker runs; no multi-worker transport (networked,
// shared-memory, or otherwise) is provided, per spec.md §1's Non-goals. Grounded on necsim's partitioning core
// (necsim/partitioning/core/src/lib.rs) and its decomposition strategies
// (necsim/impls/no-std/src/decomposition/{mod,equal}.rs), which this
// Service interface and the Force|Default|Hold flush modes mirror.
package partition

import (
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/lineage"
)

// FlushMode controls how eagerly a migration is handed off to its
// destination worker (spec.md §5).
type FlushMode uint8

const (
	// Hold batches the migration for a later flush.
	Hold FlushMode = iota
	// Default lets the implementation decide when to flush.
	Default
	// Force flushes immediately.
	Force
)

// Migration is a lineage crossing from this worker's partition into
// another's, addressed by the destination's Location (the partitioning
// decomposition maps Locations to partition ranks; how is the service's
// business, not the core's).
type Migration struct {
	Lineage lineage.GlobalLineageReference
	Target  landscape.IndexedLocation
	Time    float64
}

// Service is the black-box collaborator the core treats every one of
// its operations as potentially blocking, and invokes none of them from
// within an event-sampling step (spec.md §5).
type Service interface {
	// Rank and Count describe this worker's position in the partition
	// (bond.Partition carries the same pair for construction-time
	// validation elsewhere in the core).
	Rank() uint32
	Count() uint32

	// MigrateLineage hands off m to whichever partition rank owns
	// m.Target, per mode's flush eagerness.
	MigrateLineage(m Migration, mode FlushMode) error

	// ReduceVoteContinue polls every worker for "should the run
	// continue", returning false the instant any worker votes to stop.
	ReduceVoteContinue(localVote bool) (bool, error)

	// ReduceVoteMinTime returns the minimum localTime reported by any
	// worker, used to advance the water-level scheme in independent
	// mode (spec.md §5).
	ReduceVoteMinTime(localTime float64) (float64, error)

	// ReduceGlobalTimeSteps sums localSteps across every worker.
	ReduceGlobalTimeSteps(localSteps uint64) (uint64, error)

	// ReportProgressSync reports this worker's remaining lineage count
	// to a process-wide progress aggregator.
	ReportProgressSync(remaining uint64) error
}

// Partition builds a bond.Partition for rank/count, panicking on an
// invalid pair (bond.NewPartition's own construction-time contract).
func Partition(rank, count uint32) bond.Partition {
	return bond.NewPartition(rank, count)
}

// Monolithic is the Service used when a run has a single worker: every
// reduction is a no-op that returns its local input unchanged, and
// migration never happens because no lineage is ever routed off-worker.
type Monolithic struct{}

// Rank implements Service.
func (Monolithic) Rank() uint32 { return 0 }

// Count implements Service.
func (Monolithic) Count() uint32 { return 1 }

// MigrateLineage implements Service: unreachable in a single-worker run,
// since every Location belongs to this worker's own partition.
func (Monolithic) MigrateLineage(Migration, FlushMode) error { return nil }

// ReduceVoteContinue implements Service: the lone vote decides.
func (Monolithic) ReduceVoteContinue(localVote bool) (bool, error) { return localVote, nil }

// ReduceVoteMinTime implements Service: the lone time is already the
// minimum.
func (Monolithic) ReduceVoteMinTime(localTime float64) (float64, error) { return localTime, nil }

// ReduceGlobalTimeSteps implements Service: the lone count is already
// the total.
func (Monolithic) ReduceGlobalTimeSteps(localSteps uint64) (uint64, error) { return localSteps, nil }

// ReportProgressSync implements Service as a no-op: a monolithic run
// reports progress directly through its simulation.Reporter instead.
func (Monolithic) ReportProgressSync(uint64) error { return nil }

var _ Service = Monolithic{}
