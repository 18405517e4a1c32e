// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package biostats implements run summary statistics and a
// biodiversity-over-time plot layered on top of a simulation.Reporter
// (spec.md §3's "derived statistics", a feature the distillation left
// implicit). Grounded on cmd/phygeo/diff/speed/plot.go for the
// gonum/plot call pattern and gonum.org/v1/gonum/stat for the summary
// numbers.
package biostats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/js-arias/coalesce/event"
	"github.com/js-arias/coalesce/simulation"
)

// Sample is one point of the biodiversity-over-time curve: the number of
// still-active lineages immediately after the event at Time.
type Sample struct {
	Time   float64
	Active int
}

// Recorder decorates a simulation.Reporter, keeping a biodiversity
// history and the sequence of speciation times alongside whatever the
// wrapped reporter does with each event.
type Recorder struct {
	Inner  simulation.Reporter
	Active func() int

	History         []Sample
	SpeciationTimes []float64
}

// NewRecorder builds a Recorder wrapping inner (use simulation.NopReporter{}
// to only collect statistics) and sampling active-lineage count via
// active, typically sim.NumberActiveLineages.
func NewRecorder(inner simulation.Reporter, active func() int) *Recorder {
	if inner == nil {
		inner = simulation.NopReporter{}
	}
	return &Recorder{Inner: inner, Active: active}
}

func (r *Recorder) record(t float64) {
	n := 0
	if r.Active != nil {
		n = r.Active()
	}
	r.History = append(r.History, Sample{Time: t, Active: n})
}

// ReportSpeciation implements simulation.Reporter.
func (r *Recorder) ReportSpeciation(e event.Event) {
	r.record(e.Time)
	r.SpeciationTimes = append(r.SpeciationTimes, e.Time)
	r.Inner.ReportSpeciation(e)
}

// ReportDispersal implements simulation.Reporter.
func (r *Recorder) ReportDispersal(e event.Event) {
	r.record(e.Time)
	r.Inner.ReportDispersal(e)
}

// ReportProgress implements simulation.Reporter.
func (r *Recorder) ReportProgress(remaining uint64) {
	r.Inner.ReportProgress(remaining)
}

// Summary is a run's headline numbers.
type Summary struct {
	Events                    int
	Speciations               int
	MaxEventTime              float64
	MeanInterspeciationTime   float64
	StdDevInterspeciationTime float64
}

// Summarize computes a Summary from a Recorder's history.
func Summarize(r *Recorder) Summary {
	s := Summary{
		Events:      len(r.History),
		Speciations: len(r.SpeciationTimes),
	}
	if len(r.History) > 0 {
		s.MaxEventTime = r.History[len(r.History)-1].Time
	}

	if len(r.SpeciationTimes) > 1 {
		gaps := make([]float64, len(r.SpeciationTimes)-1)
		for i := 1; i < len(r.SpeciationTimes); i++ {
			gaps[i-1] = r.SpeciationTimes[i] - r.SpeciationTimes[i-1]
		}
		s.MeanInterspeciationTime = stat.Mean(gaps, nil)
		s.StdDevInterspeciationTime = stat.StdDev(gaps, nil)
	}

	return s
}

// PlotDiversity renders the biodiversity-over-time curve (active-lineage
// count against event time) to a PNG file at path.
func PlotDiversity(history []Sample, width, height vg.Length, path string) error {
	p := plot.New()
	p.X.Label.Text = "event time"
	p.Y.Label.Text = "active lineages"

	pts := make(plotter.XYs, len(history))
	for i, s := range history {
		pts[i].X = s.Time
		pts[i].Y = float64(s.Active)
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("biostats: building diversity line: %v", err)
	}
	p.Add(line)

	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("biostats: saving plot %q: %v", path, err)
	}
	return nil
}
