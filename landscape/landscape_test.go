package landscape_test

import (
	"testing"

	"github.com/js-arias/coalesce/landscape"
)

func TestExtentIndexRoundTrip(t *testing.T) {
	e := landscape.Extent{X0: 1, Y0: 2, W: 3, H: 4}
	for y := e.Y0; y < e.Y0+e.H; y++ {
		for x := e.X0; x < e.X0+e.W; x++ {
			loc := landscape.Location{X: x, Y: y}
			if !e.Contains(loc) {
				t.Fatalf("expecting %v to be inside %v", loc, e)
			}
			idx := e.Index(loc)
			got := e.Locate(idx)
			if got != loc {
				t.Fatalf("round trip failed: %v -> %d -> %v", loc, idx, got)
			}
		}
	}
}

func TestExtentContainsOutside(t *testing.T) {
	e := landscape.Extent{X0: 0, Y0: 0, W: 2, H: 2}
	if e.Contains(landscape.Location{X: 2, Y: 0}) {
		t.Fatalf("expecting (2,0) to be outside a 2x2 extent")
	}
	if e.Contains(landscape.Location{X: 0, Y: 2}) {
		t.Fatalf("expecting (0,2) to be outside a 2x2 extent")
	}
}

func TestHabitatContains(t *testing.T) {
	e := landscape.Extent{W: 2, H: 1}
	h, err := landscape.New(e, []uint32{0, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.Contains(landscape.Location{X: 0, Y: 0}) {
		t.Fatalf("expecting zero-capacity cell to not be contained")
	}
	if !h.Contains(landscape.Location{X: 1, Y: 0}) {
		t.Fatalf("expecting positive-capacity cell to be contained")
	}
	if h.CapacityAt(landscape.Location{X: 1, Y: 0}) != 3 {
		t.Fatalf("unexpected capacity")
	}
	if h.CapacityAt(landscape.Location{X: 5, Y: 5}) != 0 {
		t.Fatalf("expecting out of extent location to report zero capacity")
	}
}

func TestHabitatSizeMismatch(t *testing.T) {
	e := landscape.Extent{W: 2, H: 2}
	if _, err := landscape.New(e, []uint32{1, 2}); err == nil {
		t.Fatalf("expecting error for mismatched capacities length")
	}
}

func TestInhabitedLocations(t *testing.T) {
	e := landscape.Extent{W: 2, H: 2}
	h, err := landscape.New(e, []uint32{1, 0, 0, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locs := h.InhabitedLocations()
	if len(locs) != 2 {
		t.Fatalf("expecting 2 inhabited locations, got %d", len(locs))
	}
}
