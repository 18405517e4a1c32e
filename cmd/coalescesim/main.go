// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Coalescesim is a command line tool to run a spatial coalescence
// simulation from a project file and report its events to a tab-separated
// file.
// Grounded on cmd/pgs/main.go (the command.Command wiring) and
// cmd/pgs/sim/sim.go (a simulation command reading a project file and
// writing a TSV of results).
package main

import (
	"github.com/js-arias/command"
)

var app = &command.Command{
	Usage: `coalescesim [-o|--output <file>] [--stop <steps>]
	<project-file>`,
	Short: "run a spatial coalescence simulation",
	Long: `
Command coalescesim runs a spatial coalescence simulation.

The argument of the command is a project file pointing to a habitat matrix
and a dispersal matrix, plus the scalar run parameters (speciation
probability, sampling percentage, seed, algorithm). See package config for
the project file format.

By default, events are written to a file named "coalescesim-events.tab". Use
the flag --output, or -o, to define a different name.

By default, the run continues until no active lineage remains. Use the flag
--stop to bound the number of steps instead.
	`,
	SetFlags: setFlags,
	Run:      run,
}

func main() {
	app.Main()
}
