// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/js-arias/command"

	"github.com/js-arias/coalesce/activelineage"
	"github.com/js-arias/coalesce/bond"
	"github.com/js-arias/coalesce/coalescence"
	"github.com/js-arias/coalesce/config"
	"github.com/js-arias/coalesce/dispersal"
	"github.com/js-arias/coalesce/event"
	"github.com/js-arias/coalesce/eventsampler"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/lineage"
	"github.com/js-arias/coalesce/rng"
	"github.com/js-arias/coalesce/simulation"
	"github.com/js-arias/coalesce/turnover"
)

var output string
var stopSteps uint64

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "coalescesim-events.tab", "")
	c.Flags().StringVar(&output, "o", "coalescesim-events.tab", "")
	c.Flags().Uint64Var(&stopSteps, "stop", 0, "")
}

// csvReporter writes every reported event as a TSV row with the columns of
// writeHeader: event type, origin x/y, event time, lineage reference and,
// for dispersals, target x/y, interaction and the coalescence partner. Slot
// indices and prior event times are not written.
type csvReporter struct {
	w *csv.Writer
}

func newCSVReporter(w *csv.Writer) *csvReporter {
	return &csvReporter{w: w}
}

func (r *csvReporter) writeHeader() error {
	return r.w.Write([]string{
		"type", "originx", "originy", "time", "lineage",
		"targetx", "targety", "interaction", "other",
	})
}

func (r *csvReporter) ReportSpeciation(e event.Event) {
	r.w.Write([]string{
		"speciation",
		strconv.FormatUint(uint64(e.Origin.Location.X), 10),
		strconv.FormatUint(uint64(e.Origin.Location.Y), 10),
		strconv.FormatFloat(e.Time, 'g', -1, 64),
		e.Lineage.String(),
		"", "", "", "",
	})
}

func (r *csvReporter) ReportDispersal(e event.Event) {
	interaction := "none"
	other := ""
	switch e.Interact.Kind {
	case event.InteractionMaybe:
		interaction = "maybe"
	case event.InteractionCoalescence:
		interaction = "coalescence"
		other = e.Interact.Other.String()
	}

	r.w.Write([]string{
		"dispersal",
		strconv.FormatUint(uint64(e.Origin.Location.X), 10),
		strconv.FormatUint(uint64(e.Origin.Location.Y), 10),
		strconv.FormatFloat(e.Time, 'g', -1, 64),
		e.Lineage.String(),
		strconv.FormatUint(uint64(e.Target.Location.X), 10),
		strconv.FormatUint(uint64(e.Target.Location.Y), 10),
		interaction,
		other,
	})
}

func (r *csvReporter) ReportProgress(uint64) {}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := config.Read(args[0])
	if err != nil {
		return err
	}

	dir := filepath.Dir(args[0])
	habitatFile := p.Path(config.Habitat)
	if habitatFile == "" {
		return c.UsageError(fmt.Sprintf("habitat not defined in project %q", args[0]))
	}
	dispersalFile := p.Path(config.Dispersal)
	if dispersalFile == "" {
		return c.UsageError(fmt.Sprintf("dispersal not defined in project %q", args[0]))
	}

	hf, err := os.Open(filepath.Join(dir, habitatFile))
	if err != nil {
		return err
	}
	habitat, err := config.ReadHabitatTSV(hf)
	hf.Close()
	if err != nil {
		return err
	}

	df, err := os.Open(filepath.Join(dir, dispersalFile))
	if err != nil {
		return err
	}
	matrix, err := config.ReadDispersalTSV(df, habitat)
	df.Close()
	if err != nil {
		return err
	}

	s := rng.NewSampler(rng.NewPCGCore(p.Seed))
	origins := lineage.NewOriginSampler(habitat, p.Sampling, s).All()
	speciation := turnover.NewUniform(p.Speciation)
	rate := turnover.NewUniformRate(bond.NewPositiveF64(1.0))

	sim, err := buildSimulation(p.Algorithm, habitat, matrix, origins, speciation, rate, s)
	if err != nil {
		return c.UsageError(err.Error())
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = e
		}
	}()

	tsv := csv.NewWriter(f)
	tsv.Comma = '\t'
	reporter := newCSVReporter(tsv)
	if err := reporter.writeHeader(); err != nil {
		return err
	}
	sim.Reporter = reporter

	sim.SimulateIncrementalEarlyStop(func(sim *simulation.Simulation, steps uint64) bool {
		if stopSteps == 0 {
			return false
		}
		return steps >= stopSteps
	})

	tsv.Flush()
	return tsv.Error()
}

// buildSimulation wires the algorithm-specific lineage store, dispersal
// sampler, coalescence sampler and active-lineage sampler together
// (spec.md §4 composition), defaulting the reporter to
// simulation.NopReporter{} until the caller assigns its own.
func buildSimulation(algorithm string, habitat *landscape.Habitat, matrix dispersal.Matrix, origins []landscape.IndexedLocation, speciation turnover.SpeciationProbability, rate turnover.Rate, s rng.Sampler) (*simulation.Simulation, error) {
	switch algorithm {
	case "classical":
		alias, err := dispersal.NewAlias(habitat, matrix)
		if err != nil {
			return nil, err
		}
		store := lineage.NewClassical(habitat, origins)
		active := activelineage.NewClassical(store, rate)
		cs := coalescence.NewConditional(store)
		events := eventsampler.NewUnconditional(habitat, speciation, alias, cs, nil)
		return simulation.New(active, events, s, nil), nil

	case "gillespie":
		separable, err := dispersal.NewSeparableAlias(habitat, matrix)
		if err != nil {
			return nil, err
		}
		store := lineage.NewInMemory(habitat, origins)
		gillespieRate := eventsampler.NewGillespieRate(habitat, rate, speciation, separable, store)
		active := activelineage.NewGillespie(store, gillespieRate, s)
		cs := coalescence.NewUnconditional(store)
		events := eventsampler.NewUnconditional(habitat, speciation, separable, cs, nil)
		return simulation.New(active, events, s, nil), nil

	case "independent":
		return nil, fmt.Errorf("algorithm %q requires a partition.Service and is not wired into this single-process command", algorithm)

	default:
		return nil, fmt.Errorf("unknown algorithm %q", algorithm)
	}
}
