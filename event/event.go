// Package event implements the simulation event data model (spec.md §3,
// §6): the origin/target/interaction of a single dispersal or speciation
// event and the ordering used to keep an event stream in strictly
// increasing time order. Event is the only record type; the package
// defines no separate packed wire type, and an Event carries no prior
// event time. Grounded on necsim's
// necsim/core/src/event.rs, kept close to its type-for-type structure
// since the original is a plain data model with no behaviour to port.
package event

import (
	"fmt"

	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/lineage"
)

// InteractionKind distinguishes the three possible outcomes of a dispersal
// event's arrival at a target cell.
type InteractionKind uint8

const (
	// InteractionNone means the target cell was confirmed unoccupied: no
	// coalescence happened.
	InteractionNone InteractionKind = iota
	// InteractionMaybe means occupancy at the target was not resolved
	// (the independent algorithm always reports this, see package
	// coalescence).
	InteractionMaybe
	// InteractionCoalescence means the dispersing lineage coalesced into
	// an existing lineage at the target.
	InteractionCoalescence
)

// Interaction records the outcome of a dispersal event's arrival at a
// target cell, and which lineage it coalesced into when applicable.
type Interaction struct {
	Kind  InteractionKind
	Other lineage.GlobalLineageReference
}

// NoneInteraction reports that a dispersal confirmed no occupancy.
func NoneInteraction() Interaction { return Interaction{Kind: InteractionNone} }

// MaybeInteraction reports that occupancy was not resolved.
func MaybeInteraction() Interaction { return Interaction{Kind: InteractionMaybe} }

// CoalescenceInteraction reports a coalescence into other.
func CoalescenceInteraction(other lineage.GlobalLineageReference) Interaction {
	return Interaction{Kind: InteractionCoalescence, Other: other}
}

// FromOptionalCoalescence mirrors necsim's
// `impl From<Option<GlobalLineageReference>> for LineageInteraction`.
func FromOptionalCoalescence(other lineage.GlobalLineageReference, ok bool) Interaction {
	if !ok {
		return NoneInteraction()
	}
	return CoalescenceInteraction(other)
}

// Kind distinguishes a speciation event from a dispersal event.
type Kind uint8

const (
	// Speciation marks a lineage as having speciated in place.
	Speciation Kind = iota
	// Dispersal marks a lineage as having moved to a new location,
	// possibly coalescing with a lineage already there.
	Dispersal
)

// Event is a single simulation event: a lineage either speciates at its
// current Origin, or disperses to Target with the recorded Interaction.
// For a Speciation event, Target and Interaction are zero.
type Event struct {
	Origin   landscape.IndexedLocation
	Time     float64
	Lineage  lineage.GlobalLineageReference
	Type     Kind
	Target   landscape.IndexedLocation
	Interact Interaction
}

// NewSpeciation builds a Speciation event.
func NewSpeciation(origin landscape.IndexedLocation, t float64, ref lineage.GlobalLineageReference) Event {
	return Event{Origin: origin, Time: t, Lineage: ref, Type: Speciation}
}

// NewDispersal builds a Dispersal event.
func NewDispersal(origin landscape.IndexedLocation, t float64, ref lineage.GlobalLineageReference, target landscape.IndexedLocation, interact Interaction) Event {
	return Event{Origin: origin, Time: t, Lineage: ref, Type: Dispersal, Target: target, Interact: interact}
}

// Equal reports whether two events have the same Origin, Time and Type (and
// Target/Interaction for dispersals); the lineage reference is ignored,
// matching necsim's PackedEvent equality.
func (e Event) Equal(o Event) bool {
	if e.Origin != o.Origin || e.Time != o.Time || e.Type != o.Type {
		return false
	}
	if e.Type == Dispersal {
		return e.Target == o.Target && e.Interact == o.Interact
	}
	return true
}

// Less orders events lexicographically by (time, origin, type, target),
// the strict total order spec.md §9 requires to keep an event stream
// monotone.
func (e Event) Less(o Event) bool {
	if e.Time != o.Time {
		return e.Time < o.Time
	}
	if e.Origin != o.Origin {
		return e.Origin.Less(o.Origin)
	}
	if e.Type != o.Type {
		return e.Type < o.Type
	}
	return e.Target.Less(o.Target)
}

// String implements fmt.Stringer.
func (e Event) String() string {
	switch e.Type {
	case Speciation:
		return fmt.Sprintf("speciation(%s@%v t=%v)", e.Lineage, e.Origin, e.Time)
	default:
		return fmt.Sprintf("dispersal(%s@%v -> %v t=%v)", e.Lineage, e.Origin, e.Target, e.Time)
	}
}
