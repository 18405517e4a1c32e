// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package config implements file-backed construction of a coalescence
// run: a TSV project file pointing at a habitat matrix, a dispersal
// matrix and the scalar run parameters, plus the sparse TSV
// readers/writers those matrix files are made of. Grounded on
// `project/project.go` (TSV project file with dataset→path rows) and
// `trait/matrix.go`'s ReadTSV/TSV pair (dense matrix serialization).
package config

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/dispersal"
	"github.com/js-arias/coalesce/landscape"
)

// Dataset is a keyword identifying the kind of a dataset file referenced
// by a project file.
type Dataset string

// Valid dataset kinds.
const (
	// Habitat is the file for the habitat capacity matrix.
	Habitat Dataset = "habitat"
	// Dispersal is the file for the dispersal weight matrix.
	Dispersal Dataset = "dispersal"
	// Turnover is the file for the optional per-cell turnover map.
	Turnover Dataset = "turnover"
	// Speciation is the file for the optional per-cell speciation map.
	Speciation Dataset = "speciation"
)

// Project is a collection of dataset paths plus the scalar run
// parameters spec.md §6 lists as inputs to the core: speciation
// probability, sampling percentage, seed, and an algorithm selector.
type Project struct {
	name  string
	paths map[Dataset]string

	Speciation bond.PositiveUnitF64
	Sampling   bond.ClosedUnitF64
	Seed       uint64
	Algorithm  string // "classical", "gillespie" or "independent"
}

// New creates an empty Project with the defaults spec.md §6 assumes when
// a parameter is left unset: full sampling, algorithm "gillespie".
func New() *Project {
	return &Project{
		paths:      make(map[Dataset]string),
		Speciation: bond.NewPositiveUnitF64(1),
		Sampling:   bond.ClosedUnitOne(),
		Algorithm:  "gillespie",
	}
}

// Path returns the file path registered for a dataset, or "" if none was
// set.
func (p *Project) Path(d Dataset) string { return p.paths[d] }

var projectHeader = []string{
	"field",
	"value",
}

// Read reads a project file from a TSV file.
//
// The TSV must contain the following fields:
//
//   - field, the name of a dataset path or scalar parameter
//   - value, its value
//
// Here is an example file:
//
//	# coalesce project file
//	field	value
//	habitat	habitat.tab
//	dispersal	dispersal.tab
//	speciationprobability	0.001
//	sampling	1.0
//	seed	42
//	algorithm	gillespie
func Read(name string) (*Project, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(bufio.NewReader(f))
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		fields[strings.ToLower(h)] = i
	}
	for _, h := range projectHeader {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	p := New()
	p.name = name
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		field := strings.ToLower(row[fields["field"]])
		value := row[fields["value"]]

		if err := p.set(field, value); err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}
	}

	return p, nil
}

// set assigns a single project-file row. "speciationmap" names the
// optional per-cell speciation-probability file (Dataset Speciation);
// "speciationprobability" names the scalar run parameter — kept as two
// distinct keys so a path and a float can't collide in the same field.
func (p *Project) set(field, value string) error {
	switch field {
	case "habitat", "dispersal", "turnover":
		p.paths[Dataset(field)] = value
	case "speciationmap":
		p.paths[Speciation] = value
	case "speciationprobability":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("field %q: %q: %v", field, value, err)
		}
		if !(v > 0 && v <= 1) {
			return fmt.Errorf("field %q: %v is not in (0,1]", field, v)
		}
		p.Speciation = bond.NewPositiveUnitF64(v)
	case "sampling":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("field %q: %q: %v", field, value, err)
		}
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("field %q: %v is not in [0,1]", field, v)
		}
		p.Sampling = bond.NewClosedUnitF64(v)
	case "seed":
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("field %q: %q: %v", field, value, err)
		}
		p.Seed = v
	case "algorithm":
		p.Algorithm = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// habitatHeader is the fields a habitat TSV must carry.
var habitatHeader = []string{"x", "y", "capacity"}

// ReadHabitatTSV reads a habitat as a sparse (x, y, capacity) TSV: every
// cell with positive capacity is one row; the extent starts at (0,0) and
// reaches the largest x and y of any row. Grounded on trait/matrix.go's ReadTSV.
func ReadHabitatTSV(r io.Reader) (*landscape.Habitat, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		fields[strings.ToLower(h)] = i
	}
	for _, h := range habitatHeader {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	type cell struct {
		x, y uint32
		cap  uint32
	}
	var cells []cell
	var maxX, maxY uint32

	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		x, err := strconv.ParseUint(row[fields["x"]], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, "x", err)
		}
		y, err := strconv.ParseUint(row[fields["y"]], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, "y", err)
		}
		c, err := strconv.ParseUint(row[fields["capacity"]], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, "capacity", err)
		}

		cells = append(cells, cell{x: uint32(x), y: uint32(y), cap: uint32(c)})
		if uint32(x) > maxX {
			maxX = uint32(x)
		}
		if uint32(y) > maxY {
			maxY = uint32(y)
		}
	}

	extent := landscape.Extent{W: maxX + 1, H: maxY + 1}
	capacities := make([]uint32, extent.Area())
	for _, c := range cells {
		capacities[extent.Index(landscape.Location{X: c.x, Y: c.y})] = c.cap
	}

	return landscape.New(extent, capacities)
}

// WriteHabitatTSV writes h as a sparse (x, y, capacity) TSV, one row per
// inhabited cell.
func WriteHabitatTSV(w io.Writer, h *landscape.Habitat) error {
	bw := bufio.NewWriter(w)
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'

	if err := tab.Write(habitatHeader); err != nil {
		return err
	}
	for _, loc := range h.InhabitedLocations() {
		row := []string{
			strconv.FormatUint(uint64(loc.X), 10),
			strconv.FormatUint(uint64(loc.Y), 10),
			strconv.FormatUint(uint64(h.CapacityAt(loc)), 10),
		}
		if err := tab.Write(row); err != nil {
			return err
		}
	}
	tab.Flush()
	if err := tab.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// dispersalHeader is the fields a dispersal TSV must carry.
var dispersalHeader = []string{"originx", "originy", "targetx", "targety", "weight"}

// ReadDispersalTSV reads a dispersal matrix as a sparse (origin, target,
// weight) TSV against h's extent, validating the dispersal contract
// (spec.md §4.2) before returning. Grounded on trait/matrix.go's ReadTSV.
func ReadDispersalTSV(r io.Reader, h *landscape.Habitat) (dispersal.Matrix, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return dispersal.Matrix{}, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, hd := range head {
		fields[strings.ToLower(hd)] = i
	}
	for _, hd := range dispersalHeader {
		if _, ok := fields[hd]; !ok {
			return dispersal.Matrix{}, fmt.Errorf("expecting field %q", hd)
		}
	}

	e := h.Extent()
	m := dispersal.Matrix{E: h.Len(), Data: make([]float64, h.Len()*h.Len())}

	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return dispersal.Matrix{}, fmt.Errorf("on row %d: %v", ln, err)
		}

		ox, err := strconv.ParseUint(row[fields["originx"]], 10, 32)
		if err != nil {
			return dispersal.Matrix{}, fmt.Errorf("on row %d: field %q: %v", ln, "originx", err)
		}
		oy, err := strconv.ParseUint(row[fields["originy"]], 10, 32)
		if err != nil {
			return dispersal.Matrix{}, fmt.Errorf("on row %d: field %q: %v", ln, "originy", err)
		}
		tx, err := strconv.ParseUint(row[fields["targetx"]], 10, 32)
		if err != nil {
			return dispersal.Matrix{}, fmt.Errorf("on row %d: field %q: %v", ln, "targetx", err)
		}
		ty, err := strconv.ParseUint(row[fields["targety"]], 10, 32)
		if err != nil {
			return dispersal.Matrix{}, fmt.Errorf("on row %d: field %q: %v", ln, "targety", err)
		}
		weight, err := strconv.ParseFloat(row[fields["weight"]], 64)
		if err != nil {
			return dispersal.Matrix{}, fmt.Errorf("on row %d: field %q: %v", ln, "weight", err)
		}

		o := e.Index(landscape.Location{X: uint32(ox), Y: uint32(oy)})
		t := e.Index(landscape.Location{X: uint32(tx), Y: uint32(ty)})
		m.Data[int(o)*m.E+int(t)] = weight
	}

	if err := dispersal.ValidateContract(h, m); err != nil {
		return dispersal.Matrix{}, err
	}
	return m, nil
}

// WriteDispersalTSV writes m as a sparse (origin, target, weight) TSV
// against h's extent, one row per positive weight.
func WriteDispersalTSV(w io.Writer, h *landscape.Habitat, m dispersal.Matrix) error {
	bw := bufio.NewWriter(w)
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'

	if err := tab.Write(dispersalHeader); err != nil {
		return err
	}

	e := h.Extent()
	for o := 0; o < m.E; o++ {
		origin := e.Locate(uint64(o))
		for t := 0; t < m.E; t++ {
			weight := m.At(o, t)
			if weight <= 0 {
				continue
			}
			target := e.Locate(uint64(t))
			row := []string{
				strconv.FormatUint(uint64(origin.X), 10),
				strconv.FormatUint(uint64(origin.Y), 10),
				strconv.FormatUint(uint64(target.X), 10),
				strconv.FormatUint(uint64(target.Y), 10),
				strconv.FormatFloat(weight, 'g', -1, 64),
			}
			if err := tab.Write(row); err != nil {
				return err
			}
		}
	}
	tab.Flush()
	if err := tab.Error(); err != nil {
		return err
	}
	return bw.Flush()
}
