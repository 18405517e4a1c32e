// Package landscape implements the spatial grid the coalescence simulation
// runs over: an axis-aligned extent of integer cells, each with an
// immutable carrying capacity, and the Location/IndexedLocation values
// used to address lineages within it.
package landscape

import "fmt"

// Location is an integer (x,y) coordinate on an Extent.
type Location struct {
	X, Y uint32
}

// String renders a Location as "(x,y)".
func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.X, l.Y)
}

// Less orders Locations in row-major order: first by Y, then by X.
// Used wherever spec.md requires a deterministic tie-break on Location
// (event ordering, min-speciation tracking).
func (l Location) Less(o Location) bool {
	if l.Y != o.Y {
		return l.Y < o.Y
	}
	return l.X < o.X
}

// IndexedLocation is a Location together with a slot index in
// [0, capacity(Location)), identifying a single occupiable slot within a
// cell.
type IndexedLocation struct {
	Location Location
	Index    uint32
}

// Less orders IndexedLocations by Location, then by Index.
func (l IndexedLocation) Less(o IndexedLocation) bool {
	if l.Location != o.Location {
		return l.Location.Less(o.Location)
	}
	return l.Index < o.Index
}

// Extent is an axis-aligned rectangle of cells: origin (X0,Y0), width W and
// height H.
type Extent struct {
	X0, Y0 uint32
	W, H   uint32
}

// Contains reports whether loc falls inside the extent's rectangle.
func (e Extent) Contains(loc Location) bool {
	if loc.X < e.X0 || loc.Y < e.Y0 {
		return false
	}
	if loc.X >= e.X0+e.W || loc.Y >= e.Y0+e.H {
		return false
	}
	return true
}

// Area returns the number of cells in the extent (W*H).
func (e Extent) Area() uint64 {
	return uint64(e.W) * uint64(e.H)
}

// Index returns the row-major index of loc within the extent, with
// (X0,Y0) at index 0. The caller must ensure loc is inside the extent.
func (e Extent) Index(loc Location) uint64 {
	return uint64(loc.Y-e.Y0)*uint64(e.W) + uint64(loc.X-e.X0)
}

// Locate returns the Location at row-major index idx within the extent.
func (e Extent) Locate(idx uint64) Location {
	w := uint64(e.W)
	return Location{
		X: e.X0 + uint32(idx%w),
		Y: e.Y0 + uint32(idx/w),
	}
}

// Habitat is an immutable map from Location to carrying capacity.
//
// A Location is "inside the habitat" iff it is inside the extent and has
// a positive capacity (spec.md §3).
type Habitat struct {
	extent     Extent
	capacities []uint32 // row-major, length extent.Area()
}

// New builds a Habitat over extent from a dense row-major slice of
// carrying capacities. len(capacities) must equal extent.Area().
func New(extent Extent, capacities []uint32) (*Habitat, error) {
	if uint64(len(capacities)) != extent.Area() {
		return nil, fmt.Errorf("landscape: habitat has %d cells but extent area is %d", len(capacities), extent.Area())
	}
	cp := make([]uint32, len(capacities))
	copy(cp, capacities)
	return &Habitat{extent: extent, capacities: cp}, nil
}

// Extent returns the habitat's extent.
func (h *Habitat) Extent() Extent { return h.extent }

// CapacityAt returns the carrying capacity at loc, or 0 if loc is outside
// the extent.
func (h *Habitat) CapacityAt(loc Location) uint32 {
	if !h.extent.Contains(loc) {
		return 0
	}
	return h.capacities[h.extent.Index(loc)]
}

// CapacityAtIndex returns the carrying capacity at the given row-major
// index.
func (h *Habitat) CapacityAtIndex(idx uint64) uint32 {
	return h.capacities[idx]
}

// Contains reports whether loc is inside the habitat: inside the extent
// and with positive capacity.
func (h *Habitat) Contains(loc Location) bool {
	return h.CapacityAt(loc) > 0
}

// Len returns the number of cells in the habitat's extent (E = w*h in
// spec.md §4.2).
func (h *Habitat) Len() int {
	return len(h.capacities)
}

// TotalCapacity returns the sum of carrying capacities over the whole
// habitat.
func (h *Habitat) TotalCapacity() uint64 {
	var total uint64
	for _, c := range h.capacities {
		total += uint64(c)
	}
	return total
}

// InhabitedLocations returns, in row-major order, every Location with
// positive capacity.
func (h *Habitat) InhabitedLocations() []Location {
	var locs []Location
	for idx, c := range h.capacities {
		if c > 0 {
			locs = append(locs, h.extent.Locate(uint64(idx)))
		}
	}
	return locs
}
