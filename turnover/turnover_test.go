package turnover_test

import (
	"errors"
	"testing"

	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/turnover"
)

func TestUniformSpeciation(t *testing.T) {
	u := turnover.NewUniform(bond.NewPositiveUnitF64(0.1))
	if got := u.At(landscape.Location{X: 7, Y: 3}).Get(); got != 0.1 {
		t.Fatalf("expecting 0.1 everywhere, got %v", got)
	}
}

func TestUniformRate(t *testing.T) {
	r := turnover.NewUniformRate(bond.NewPositiveF64(0.5))
	if got := r.At(landscape.Location{}).Get(); got != 0.5 {
		t.Fatalf("expecting 0.5 everywhere, got %v", got)
	}
}

func habitat2x2(caps []uint32) *landscape.Habitat {
	h, err := landscape.New(landscape.Extent{W: 2, H: 2}, caps)
	if err != nil {
		panic(err)
	}
	return h
}

func TestInMemoryRejectsSizeMismatch(t *testing.T) {
	h := habitat2x2([]uint32{1, 1, 1, 1})
	_, err := turnover.NewInMemory(h, []float64{1, 1, 1})
	if err == nil {
		t.Fatalf("expecting size mismatch error")
	}
}

func TestInMemoryRejectsZeroAtInhabitedCell(t *testing.T) {
	h := habitat2x2([]uint32{1, 0, 1, 1})
	_, err := turnover.NewInMemory(h, []float64{0.5, 0, 0, 0.5})
	if err == nil {
		t.Fatalf("expecting ZeroTurnoverWithNonZeroHabitat error")
	}
	if !errors.Is(err, turnover.ErrZeroTurnoverWithNonZeroHabitat) {
		t.Fatalf("expecting ErrZeroTurnoverWithNonZeroHabitat, got %v", err)
	}
}

func TestInMemoryAcceptsZeroAtUninhabitedCell(t *testing.T) {
	h := habitat2x2([]uint32{1, 0, 1, 1})
	m, err := turnover.NewInMemory(h, []float64{0.5, 0, 0.3, 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.At(h.Extent().Locate(2)).Get(); got != 0.3 {
		t.Fatalf("expecting 0.3, got %v", got)
	}
}

func TestInMemorySpeciationRejectsOutOfRange(t *testing.T) {
	h := habitat2x2([]uint32{1, 1, 1, 1})
	_, err := turnover.NewInMemorySpeciation(h, []float64{0.1, 0, 0.2, 0.3})
	if err == nil {
		t.Fatalf("expecting InvalidProbability error")
	}
	if !errors.Is(err, turnover.ErrInvalidProbability) {
		t.Fatalf("expecting ErrInvalidProbability, got %v", err)
	}
}

func TestInMemorySpeciationAt(t *testing.T) {
	h := habitat2x2([]uint32{1, 1, 1, 1})
	m, err := turnover.NewInMemorySpeciation(h, []float64{0.1, 0.2, 0.3, 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.At(h.Extent().Locate(3)).Get(); got != 1.0 {
		t.Fatalf("expecting 1.0, got %v", got)
	}
}
