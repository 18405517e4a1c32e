package biostats_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/js-arias/coalesce/biostats"
	"github.com/js-arias/coalesce/event"
	"github.com/js-arias/coalesce/landscape"
	"github.com/js-arias/coalesce/lineage"
	"gonum.org/v1/plot/vg"
)

func TestRecorderTracksSpeciationGaps(t *testing.T) {
	active := 5
	r := biostats.NewRecorder(nil, func() int { return active })

	ref := lineage.GlobalLineageReference{}
	origin := landscape.IndexedLocation{}

	r.ReportSpeciation(event.NewSpeciation(origin, 1.0, ref))
	active--
	r.ReportSpeciation(event.NewSpeciation(origin, 3.0, ref))
	active--
	r.ReportSpeciation(event.NewSpeciation(origin, 4.0, ref))

	sum := biostats.Summarize(r)
	if sum.Speciations != 3 {
		t.Fatalf("expecting 3 speciations, got %d", sum.Speciations)
	}
	if sum.MaxEventTime != 4.0 {
		t.Fatalf("expecting max event time 4.0, got %v", sum.MaxEventTime)
	}
	// gaps are [2.0, 1.0], mean 1.5
	if sum.MeanInterspeciationTime != 1.5 {
		t.Fatalf("expecting mean interspeciation time 1.5, got %v", sum.MeanInterspeciationTime)
	}
	if len(r.History) != 3 {
		t.Fatalf("expecting 3 history samples, got %d", len(r.History))
	}
}

func TestPlotDiversityWritesFile(t *testing.T) {
	history := []biostats.Sample{
		{Time: 0, Active: 10},
		{Time: 1, Active: 8},
		{Time: 2, Active: 5},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "diversity.png")
	if err := biostats.PlotDiversity(history, 4*vg.Inch, 3*vg.Inch, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expecting plot file to exist: %v", err)
	}
}
